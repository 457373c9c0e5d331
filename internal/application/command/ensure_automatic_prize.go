// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENSURE AUTOMATIC PRIZE COMMAND
// Идемпотентный поиск автоматического приза: возвращает существующий приз
// с совпадающими (дисциплина, название, стоимость) либо создаёт новый с
// видом AUTOMATIC. Без этого повторные вычисления движка наград плодили бы
// дубликаты определений приза.
// ══════════════════════════════════════════════════════════════════════════════

// EnsureAutomaticPrizeCommand содержит ключ идемпотентного поиска.
type EnsureAutomaticPrizeCommand struct {
	// SubjectID - дисциплина приза.
	SubjectID string

	// Name - название приза.
	Name string

	// Value - стоимость в очках.
	Value int

	// Description - описание для вновь создаваемого приза.
	Description string
}

// Validate проверяет корректность команды.
func (c EnsureAutomaticPrizeCommand) Validate() error {
	if c.SubjectID == "" {
		return shared.NewDomainError("prize", "Ensure", shared.ErrInvalidInput, "subject_id is required")
	}
	if c.Name == "" {
		return shared.NewDomainError("prize", "Ensure", shared.ErrEmptyValue, "name is required")
	}
	if c.Value < 0 {
		return shared.ErrPrizeValueNegative
	}
	return nil
}

// EnsureAutomaticPrizeResult содержит найденный или созданный приз.
type EnsureAutomaticPrizeResult struct {
	// Prize - приз с запрошенным ключом.
	Prize *prize.Prize

	// Created - true, если приз был создан этим вызовом.
	Created bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// EnsureAutomaticPrizeHandler обрабатывает EnsureAutomaticPrizeCommand.
type EnsureAutomaticPrizeHandler struct {
	prizeRepo prize.Repository
}

// NewEnsureAutomaticPrizeHandler создаёт новый EnsureAutomaticPrizeHandler.
func NewEnsureAutomaticPrizeHandler(prizeRepo prize.Repository) *EnsureAutomaticPrizeHandler {
	return &EnsureAutomaticPrizeHandler{prizeRepo: prizeRepo}
}

// Handle выполняет идемпотентный поиск. Повторный вызов с тем же ключом
// возвращает тот же приз и не создаёт новых записей.
func (h *EnsureAutomaticPrizeHandler) Handle(ctx context.Context, cmd EnsureAutomaticPrizeCommand) (*EnsureAutomaticPrizeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	existing, err := h.prizeRepo.FindBySubjectNameValue(ctx, cmd.SubjectID, cmd.Name, shared.Points(cmd.Value))
	if err == nil {
		return &EnsureAutomaticPrizeResult{Prize: existing, Created: false}, nil
	}
	if !shared.IsNotFound(err) {
		return nil, fmt.Errorf("ensure_automatic_prize: lookup failed: %w", err)
	}

	p, err := prize.NewPrize(prize.NewPrizeParams{
		ID:          uuid.NewString(),
		SubjectID:   cmd.SubjectID,
		Name:        cmd.Name,
		Description: cmd.Description,
		Value:       shared.Points(cmd.Value),
		Kind:        prize.KindAutomatic,
	})
	if err != nil {
		return nil, shared.WrapError("prize", "Ensure", shared.ErrInvalidInput, "invalid prize", err)
	}

	if err := h.prizeRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("ensure_automatic_prize: failed to save prize: %w", err)
	}

	return &EnsureAutomaticPrizeResult{Prize: p, Created: true}, nil
}

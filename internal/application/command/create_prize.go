// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE PRIZE COMMAND
// Определяет новый приз в каталоге дисциплины. Приз создаётся преподавателем
// (MANUAL) либо заводится заранее для движка наград (AUTOMATIC).
// ══════════════════════════════════════════════════════════════════════════════

// CreatePrizeCommand содержит данные для создания приза.
type CreatePrizeCommand struct {
	// SubjectID - дисциплина, в каталог которой добавляется приз.
	SubjectID string

	// Name - название приза.
	Name string

	// Description - описание.
	Description string

	// Value - стоимость в очках (неотрицательная).
	Value int

	// Kind - вид приза: MANUAL или AUTOMATIC.
	Kind string

	// CorrelationID - для трассировки.
	CorrelationID string
}

// Validate проверяет корректность команды.
func (c CreatePrizeCommand) Validate() error {
	if c.SubjectID == "" {
		return shared.NewDomainError("prize", "Create", shared.ErrInvalidInput, "subject_id is required")
	}
	if c.Name == "" {
		return shared.NewDomainError("prize", "Create", shared.ErrEmptyValue, "name is required")
	}
	if c.Value < 0 {
		return shared.ErrPrizeValueNegative
	}
	if !prize.Kind(c.Kind).IsValid() {
		return shared.ErrInvalidPrizeKind
	}
	return nil
}

// CreatePrizeResult содержит результат создания приза.
type CreatePrizeResult struct {
	// Prize - созданный приз.
	Prize *prize.Prize
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreatePrizeHandler обрабатывает CreatePrizeCommand.
type CreatePrizeHandler struct {
	prizeRepo  prize.Repository
	courseRepo course.Repository
	publisher  shared.EventPublisher
}

// NewCreatePrizeHandler создаёт новый CreatePrizeHandler.
func NewCreatePrizeHandler(prizeRepo prize.Repository, courseRepo course.Repository, publisher shared.EventPublisher) *CreatePrizeHandler {
	return &CreatePrizeHandler{
		prizeRepo:  prizeRepo,
		courseRepo: courseRepo,
		publisher:  publisher,
	}
}

// Handle выполняет команду создания приза.
// Несуществующая дисциплина - ошибка NotFound.
func (h *CreatePrizeHandler) Handle(ctx context.Context, cmd CreatePrizeCommand) (*CreatePrizeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Дисциплина должна существовать
	if _, err := h.courseRepo.GetSubject(ctx, cmd.SubjectID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("create_prize: failed to get subject: %w", err)
	}

	p, err := prize.NewPrize(prize.NewPrizeParams{
		ID:          uuid.NewString(),
		SubjectID:   cmd.SubjectID,
		Name:        cmd.Name,
		Description: cmd.Description,
		Value:       shared.Points(cmd.Value),
		Kind:        prize.Kind(cmd.Kind),
	})
	if err != nil {
		return nil, shared.WrapError("prize", "Create", shared.ErrInvalidInput, "invalid prize", err)
	}

	if err := h.prizeRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create_prize: failed to save prize: %w", err)
	}

	if h.publisher != nil {
		event := shared.NewPrizeCreatedEvent(p.ID, p.SubjectID, p.Name, p.Value.Int(), string(p.Kind))
		event.CorrelationID = cmd.CorrelationID
		_ = h.publisher.Publish(event)
	}

	return &CreatePrizeResult{Prize: p}, nil
}

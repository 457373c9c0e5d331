// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMPLETE SPRINT COMMAND
// Переводит спринт в состояние COMPLETED и публикует событие завершения.
// Именно переход (а не само состояние) - триггер движка наград: повторное
// завершение уже завершённого спринта отклоняется как ошибка перехода.
// ══════════════════════════════════════════════════════════════════════════════

// CompleteSprintCommand содержит данные для завершения спринта.
type CompleteSprintCommand struct {
	// SprintID - завершаемый спринт.
	SprintID string

	// CorrelationID - для трассировки.
	CorrelationID string
}

// Validate проверяет корректность команды.
func (c CompleteSprintCommand) Validate() error {
	if c.SprintID == "" {
		return shared.NewDomainError("project", "CompleteSprint", shared.ErrInvalidInput, "sprint_id is required")
	}
	return nil
}

// CompleteSprintResult содержит результат завершения.
type CompleteSprintResult struct {
	// Sprint - обновлённый спринт.
	Sprint *project.Sprint
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CompleteSprintHandler обрабатывает CompleteSprintCommand.
type CompleteSprintHandler struct {
	projectRepo project.Repository
	publisher   shared.EventPublisher
}

// NewCompleteSprintHandler создаёт новый CompleteSprintHandler.
func NewCompleteSprintHandler(projectRepo project.Repository, publisher shared.EventPublisher) *CompleteSprintHandler {
	return &CompleteSprintHandler{projectRepo: projectRepo, publisher: publisher}
}

// Handle выполняет переход спринта в COMPLETED.
func (h *CompleteSprintHandler) Handle(ctx context.Context, cmd CompleteSprintCommand) (*CompleteSprintResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	sprint, err := h.projectRepo.GetSprint(ctx, cmd.SprintID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSprintNotFound
		}
		return nil, fmt.Errorf("complete_sprint: failed to get sprint: %w", err)
	}

	if err := sprint.Complete(); err != nil {
		return nil, shared.ErrSprintAlreadyCompleted
	}

	if err := h.projectRepo.UpdateSprint(ctx, sprint); err != nil {
		return nil, fmt.Errorf("complete_sprint: failed to update sprint: %w", err)
	}

	if h.publisher != nil {
		event := shared.NewSprintCompletedEvent(sprint.ID, sprint.ProjectID, sprint.EndDate)
		event.CorrelationID = cmd.CorrelationID
		_ = h.publisher.Publish(event)
	}

	return &CompleteSprintResult{Sprint: sprint}, nil
}

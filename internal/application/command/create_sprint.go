// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/google/uuid"
)

// ══════════════════════════════════════════════════════════════════════════════
// CREATE SPRINT COMMAND
// Создаёт спринт проекта. Спринт может быть создан сразу в состоянии
// COMPLETED - тогда событие завершения публикуется прямо при создании
// и движок наград оценивает его немедленно.
// ══════════════════════════════════════════════════════════════════════════════

// CreateSprintCommand содержит данные для создания спринта.
type CreateSprintCommand struct {
	// ProjectID - проект, которому принадлежит спринт.
	ProjectID string

	// Name - название спринта.
	Name string

	// Goals - цели спринта.
	Goals string

	// StartDate - плановая дата начала.
	StartDate time.Time

	// EndDate - плановая дата окончания (не раньше StartDate).
	EndDate time.Time

	// State - начальное состояние (пустое = IN_PROGRESS).
	State string

	// CorrelationID - для трассировки.
	CorrelationID string
}

// Validate проверяет корректность команды.
func (c CreateSprintCommand) Validate() error {
	if c.ProjectID == "" {
		return shared.NewDomainError("project", "CreateSprint", shared.ErrInvalidInput, "project_id is required")
	}
	if c.Name == "" {
		return shared.NewDomainError("project", "CreateSprint", shared.ErrEmptyValue, "name is required")
	}
	if c.EndDate.Before(c.StartDate) {
		return shared.ErrSprintDatesInverted
	}
	if c.State != "" && !project.SprintState(c.State).IsValid() {
		return shared.ErrInvalidSprintState
	}
	return nil
}

// CreateSprintResult содержит результат создания спринта.
type CreateSprintResult struct {
	// Sprint - созданный спринт.
	Sprint *project.Sprint
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// CreateSprintHandler обрабатывает CreateSprintCommand.
type CreateSprintHandler struct {
	projectRepo project.Repository
	publisher   shared.EventPublisher
}

// NewCreateSprintHandler создаёт новый CreateSprintHandler.
func NewCreateSprintHandler(projectRepo project.Repository, publisher shared.EventPublisher) *CreateSprintHandler {
	return &CreateSprintHandler{projectRepo: projectRepo, publisher: publisher}
}

// Handle выполняет команду создания спринта.
func (h *CreateSprintHandler) Handle(ctx context.Context, cmd CreateSprintCommand) (*CreateSprintResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// Проект должен существовать
	proj, err := h.projectRepo.GetProject(ctx, cmd.ProjectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrProjectNotFound
		}
		return nil, fmt.Errorf("create_sprint: failed to get project: %w", err)
	}

	sprint, err := project.NewSprint(project.NewSprintParams{
		ID:        uuid.NewString(),
		ProjectID: proj.ID,
		Name:      cmd.Name,
		Goals:     cmd.Goals,
		StartDate: cmd.StartDate,
		EndDate:   cmd.EndDate,
		State:     project.SprintState(cmd.State),
	})
	if err != nil {
		return nil, shared.WrapError("project", "CreateSprint", shared.ErrInvalidInput, "invalid sprint", err)
	}

	if err := h.projectRepo.CreateSprint(ctx, sprint); err != nil {
		return nil, fmt.Errorf("create_sprint: failed to save sprint: %w", err)
	}

	// Спринт, созданный уже завершённым, триггерит движок наград
	if sprint.IsCompleted() && h.publisher != nil {
		event := shared.NewSprintCompletedEvent(sprint.ID, sprint.ProjectID, sprint.EndDate)
		event.CorrelationID = cmd.CorrelationID
		_ = h.publisher.Publish(event)
	}

	return &CreateSprintResult{Sprint: sprint}, nil
}

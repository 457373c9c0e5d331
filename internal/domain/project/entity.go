// Package project содержит доменную модель проекта и спринта.
// Переход спринта в состояние COMPLETED - триггерное событие для движка
// автоматических наград: команда, уложившаяся в срок, получает призы.
package project

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// SprintState определяет состояние спринта.
type SprintState string

const (
	// SprintInProgress - спринт идёт.
	SprintInProgress SprintState = "IN_PROGRESS"
	// SprintCompleted - спринт завершён.
	SprintCompleted SprintState = "COMPLETED"
)

// IsValid проверяет, что состояние корректно.
func (s SprintState) IsValid() bool {
	switch s {
	case SprintInProgress, SprintCompleted:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Project - проект дисциплины. Владеет командами и спринтами.
type Project struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// SubjectID - дисциплина, которой принадлежит проект.
	SubjectID string

	// Name - название проекта.
	Name string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Sprint - спринт проекта. Даты начала и конца имеют точность до
// календарного дня; сравнение с "сегодня" выполняется в опорном часовом
// поясе приложения.
type Sprint struct {
	// ID - внутренний уникальный идентификатор.
	ID string

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

	// State - текущее состояние.
	State SprintState

	// CreatedAt - время создания записи.
	CreatedAt time.Time

	// UpdatedAt - время последнего обновления.
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное название.
	ErrInvalidName = errors.New("invalid name: must be 1-150 chars")

	// ErrDatesInverted - дата окончания раньше даты начала.
	ErrDatesInverted = errors.New("sprint end date cannot be before start date")

	// ErrInvalidState - невалидное состояние спринта.
	ErrInvalidState = errors.New("invalid sprint state")

	// ErrAlreadyCompleted - спринт уже завершён.
	ErrAlreadyCompleted = errors.New("sprint is already completed")
)

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewProject создаёт новый проект с валидацией.
func NewProject(id, subjectID, name string) (*Project, error) {
	if id == "" {
		return nil, errors.New("project id is required")
	}
	if subjectID == "" {
		return nil, errors.New("subject id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 150 {
		return nil, ErrInvalidName
	}

	return &Project{ID: id, SubjectID: subjectID, Name: name, CreatedAt: time.Now().UTC()}, nil
}

// NewSprintParams содержит параметры для создания нового спринта.
type NewSprintParams struct {
	ID        string
	ProjectID string
	Name      string
	Goals     string
	StartDate time.Time
	EndDate   time.Time

	// State - начальное состояние; пустое значение трактуется как
	// SprintInProgress. Спринт может быть создан сразу завершённым.
	State SprintState
}

// NewSprint создаёт новый спринт с валидацией дат и состояния.
func NewSprint(params NewSprintParams) (*Sprint, error) {
	if params.ID == "" {
		return nil, errors.New("sprint id is required")
	}
	if params.ProjectID == "" {
		return nil, errors.New("project id is required")
	}

	name := strings.TrimSpace(params.Name)
	if len(name) == 0 || len(name) > 150 {
		return nil, ErrInvalidName
	}

	if params.EndDate.Before(params.StartDate) {
		return nil, ErrDatesInverted
	}

	state := params.State
	if state == "" {
		state = SprintInProgress
	}
	if !state.IsValid() {
		return nil, ErrInvalidState
	}

	now := time.Now().UTC()

	return &Sprint{
		ID:        params.ID,
		ProjectID: params.ProjectID,
		Name:      name,
		Goals:     params.Goals,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
		State:     state,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN METHODS (Business Logic)
// ══════════════════════════════════════════════════════════════════════════════

// IsCompleted возвращает true для завершённого спринта.
func (s *Sprint) IsCompleted() bool {
	return s.State == SprintCompleted
}

// Complete переводит спринт в состояние COMPLETED.
// Повторное завершение - ошибка перехода состояния.
func (s *Sprint) Complete() error {
	if s.IsCompleted() {
		return ErrAlreadyCompleted
	}

	s.State = SprintCompleted
	s.UpdatedAt = time.Now().UTC()
	return nil
}

// String возвращает строковое представление спринта для логирования.
func (s *Sprint) String() string {
	return fmt.Sprintf("Sprint{ID: %s, Name: %q, State: %s, End: %s}",
		s.ID, s.Name, s.State, s.EndDate.Format("2006-01-02"))
}

// Package team содержит доменную модель команды проекта и членства в ней.
// В рамках ядра геймификации команды используются движком наград (обход
// участников завершённого спринта) и рейтинговым движком (агрегация очков).
package team

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// ENUMS
// ══════════════════════════════════════════════════════════════════════════════

// ScrumRole определяет роль участника в Scrum-команде.
type ScrumRole string

const (
	// RoleDev - разработчик.
	RoleDev ScrumRole = "DEV"
	// RolePO - Product Owner.
	RolePO ScrumRole = "PO"
	// RoleSM - Scrum Master.
	RoleSM ScrumRole = "SM"
)

// IsValid проверяет, что роль корректна.
func (r ScrumRole) IsValid() bool {
	switch r {
	case RoleDev, RolePO, RoleSM:
		return true
	default:
		return false
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITIES
// ══════════════════════════════════════════════════════════════════════════════

// Team - команда, принадлежащая проекту.
type Team struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// ProjectID - проект, которому принадлежит команда.
	ProjectID string

	// Name - название команды (уникальное в рамках проекта).
	Name string

	// CreatedAt - время создания записи.
	CreatedAt time.Time
}

// Membership связывает команду и пользователя. Членом команды может быть
// и не-студент (например, преподаватель в роли PO) - такие участники
// игнорируются движком наград и не учитываются рейтингом команд.
type Membership struct {
	// ID - внутренний уникальный идентификатор.
	ID string

	// TeamID - команда.
	TeamID string

	// UserID - пользователь.
	UserID string

	// Role - Scrum-роль участника.
	Role ScrumRole

	// JoinedAt - время вступления.
	JoinedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidName - невалидное название команды.
	ErrInvalidName = errors.New("invalid team name: must be 1-100 chars")

	// ErrInvalidRole - невалидная Scrum-роль.
	ErrInvalidRole = errors.New("invalid scrum role")
)

// NewTeam создаёт новую команду с валидацией.
func NewTeam(id, projectID, name string) (*Team, error) {
	if id == "" {
		return nil, errors.New("team id is required")
	}
	if projectID == "" {
		return nil, errors.New("project id is required")
	}

	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return nil, ErrInvalidName
	}

	return &Team{
		ID:        id,
		ProjectID: projectID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewMembership создаёт новое членство с валидацией.
func NewMembership(id, teamID, userID string, role ScrumRole) (*Membership, error) {
	if id == "" {
		return nil, errors.New("membership id is required")
	}
	if teamID == "" {
		return nil, errors.New("team id is required")
	}
	if userID == "" {
		return nil, errors.New("user id is required")
	}
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}

	return &Membership{
		ID:       id,
		TeamID:   teamID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().UTC(),
	}, nil
}

// String возвращает строковое представление команды для логирования.
func (t *Team) String() string {
	return fmt.Sprintf("Team{ID: %s, Name: %q, Project: %s}", t.ID, t.Name, t.ProjectID)
}

// Package team содержит доменную модель команды.
package team

import (
	"context"
)

// Repository определяет контракт для работы с командами и членствами.
type Repository interface {
	// CreateTeam сохраняет новую команду.
	CreateTeam(ctx context.Context, t *Team) error

	// GetTeam возвращает команду по ID.
	GetTeam(ctx context.Context, id string) (*Team, error)

	// ListByProject возвращает все команды проекта в порядке создания.
	ListByProject(ctx context.Context, projectID string) ([]*Team, error)

	// AddMember добавляет участника в команду. Пара (команда, пользователь)
	// уникальна.
	AddMember(ctx context.Context, m *Membership) error

	// ListMembers возвращает всех участников команды в порядке вступления.
	ListMembers(ctx context.Context, teamID string) ([]*Membership, error)
}

// Package project содержит доменную модель проекта и спринта.
package project

import (
	"context"
)

// Repository определяет контракт для работы с проектами и спринтами.
type Repository interface {
	// CreateProject сохраняет новый проект.
	CreateProject(ctx context.Context, p *Project) error

	// GetProject возвращает проект по ID.
	GetProject(ctx context.Context, id string) (*Project, error)

	// CreateSprint сохраняет новый спринт.
	CreateSprint(ctx context.Context, s *Sprint) error

	// GetSprint возвращает спринт по ID.
	GetSprint(ctx context.Context, id string) (*Sprint, error)

	// UpdateSprint сохраняет изменения спринта.
	UpdateSprint(ctx context.Context, s *Sprint) error

	// ListSprintsByProject возвращает спринты проекта в порядке создания.
	ListSprintsByProject(ctx context.Context, projectID string) ([]*Sprint, error)
}

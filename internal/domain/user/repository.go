// Package user содержит доменную модель пользователя системы EduScrum Awards.
package user

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/shared"
)

// Repository определяет контракт для работы с пользователями.
// Реализация находится в infrastructure слое (PostgreSQL, in-memory).
type Repository interface {
	// Create сохраняет нового пользователя.
	Create(ctx context.Context, u *User) error

	// GetByID возвращает пользователя по внутреннему ID.
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail возвращает пользователя по email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update сохраняет изменения пользователя.
	Update(ctx context.Context, u *User) error

	// ──────────────────────────────────────────────────────────────────────────
	// RANKING QUERIES (Read Model)
	// ──────────────────────────────────────────────────────────────────────────

	// ListStudentsByPoints возвращает всех студентов, отсортированных по
	// убыванию TotalPoints; равные суммы упорядочены по ID по возрастанию,
	// чтобы рейтинг был детерминированным.
	ListStudentsByPoints(ctx context.Context) ([]*User, error)

	// ListStudentsByCourse возвращает студентов, записанных на курс,
	// в том же порядке, что и ListStudentsByPoints.
	ListStudentsByCourse(ctx context.Context, courseID string) ([]*User, error)

	// ──────────────────────────────────────────────────────────────────────────
	// ACCUMULATOR SUPPORT
	// ──────────────────────────────────────────────────────────────────────────

	// SetTotalPoints записывает пересчитанную сумму очков студента.
	// Используется инструментом восстановления кеша по леджеру.
	SetTotalPoints(ctx context.Context, studentID string, total shared.Points) error
}

// Package course содержит доменную модель курса и дисциплины.
package course

import (
	"context"
)

// Repository определяет контракт для работы с курсами, дисциплинами
// и записями студентов.
type Repository interface {
	// CreateCourse сохраняет новый курс.
	CreateCourse(ctx context.Context, c *Course) error

	// GetCourse возвращает курс по ID.
	GetCourse(ctx context.Context, id string) (*Course, error)

	// CreateSubject сохраняет новую дисциплину.
	CreateSubject(ctx context.Context, s *Subject) error

	// GetSubject возвращает дисциплину по ID.
	GetSubject(ctx context.Context, id string) (*Subject, error)

	// Enroll записывает студента на курс. Пара (курс, студент) уникальна.
	Enroll(ctx context.Context, e *Enrollment) error

	// ListEnrollments возвращает записи курса в порядке создания.
	ListEnrollments(ctx context.Context, courseID string) ([]*Enrollment, error)
}

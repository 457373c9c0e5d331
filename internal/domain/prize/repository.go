// Package prize содержит доменную модель приза.
package prize

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/shared"
)

// Repository определяет контракт для работы с каталогом призов.
type Repository interface {
	// Create сохраняет новый приз.
	Create(ctx context.Context, p *Prize) error

	// GetByID возвращает приз по ID.
	GetByID(ctx context.Context, id string) (*Prize, error)

	// ListBySubject возвращает все призы дисциплины в порядке создания.
	// Пустая дисциплина даёт пустой срез, а не ошибку.
	ListBySubject(ctx context.Context, subjectID string) ([]*Prize, error)

	// FindBySubjectNameValue ищет приз по ключу идемпотентного поиска
	// (дисциплина, название, стоимость). Возвращает shared.ErrNotFound,
	// если совпадения нет.
	FindBySubjectNameValue(ctx context.Context, subjectID, name string, value shared.Points) (*Prize, error)
}

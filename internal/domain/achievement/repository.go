// Package achievement содержит доменную модель достижения.
package achievement

import (
	"context"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"
)

// Repository определяет контракт леджера достижений.
type Repository interface {
	// Append записывает достижение и атомарно прибавляет стоимость приза
	// к сумме очков студента. Запись леджера без обновления суммы (или
	// наоборот) не должна быть наблюдаема ни одним читателем - реализация
	// обязана выполнять обе записи в одной транзакции.
	Append(ctx context.Context, a *Achievement, value shared.Points) error

	// ListByStudent возвращает все достижения студента в порядке вручения
	// (порядок вставки; он же хронологический при монотонных часах).
	ListByStudent(ctx context.Context, studentID string) ([]*Achievement, error)

	// ReceivedOn возвращает true, если у студента есть достижение с призом
	// указанного названия, вручённое в тот же календарный день, что и day,
	// в часовом поясе loc. Используется движком наград для подавления
	// повторных автоматических вручений.
	ReceivedOn(ctx context.Context, studentID, prizeName string, day time.Time, loc *time.Location) (bool, error)

	// SumPointsByStudent возвращает сумму стоимостей призов по всем
	// достижениям студента - эталон для пересчёта кеша очков.
	SumPointsByStudent(ctx context.Context, studentID string) (shared.Points, error)
}

package query

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST PRIZES QUERY
// Каталог призов дисциплины в порядке создания.
// ══════════════════════════════════════════════════════════════════════════════

// PrizeDTO - приз каталога (Data Transfer Object).
type PrizeDTO struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Value       int       `json:"value"`
	Kind        string    `json:"kind"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListPrizesQuery содержит параметры запроса.
type ListPrizesQuery struct {
	// SubjectID - ID дисциплины (обязательно).
	SubjectID string

	// Kind - фильтр по виду приза (пусто = все).
	Kind prize.Kind
}

// Validate проверяет корректность параметров.
func (q *ListPrizesQuery) Validate() error {
	if q.SubjectID == "" {
		return fmt.Errorf("list_prizes: subject_id is required")
	}
	if q.Kind != "" && !q.Kind.IsValid() {
		return fmt.Errorf("list_prizes: invalid prize kind %q", q.Kind)
	}
	return nil
}

// ListPrizesResult содержит результат запроса.
type ListPrizesResult struct {
	Prizes     []PrizeDTO `json:"prizes"`
	TotalCount int        `json:"total_count"`
}

// ListPrizesHandler обрабатывает ListPrizesQuery.
type ListPrizesHandler struct {
	prizeRepo  prize.Repository
	courseRepo course.Repository
}

// NewListPrizesHandler создаёт новый ListPrizesHandler.
func NewListPrizesHandler(prizeRepo prize.Repository, courseRepo course.Repository) *ListPrizesHandler {
	return &ListPrizesHandler{prizeRepo: prizeRepo, courseRepo: courseRepo}
}

// Handle выполняет запрос каталога призов.
func (h *ListPrizesHandler) Handle(ctx context.Context, q ListPrizesQuery) (*ListPrizesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if _, err := h.courseRepo.GetSubject(ctx, q.SubjectID); err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("list_prizes: failed to load subject: %w", err)
	}

	prizes, err := h.prizeRepo.ListBySubject(ctx, q.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("list_prizes: failed to list prizes: %w", err)
	}

	dtos := make([]PrizeDTO, 0, len(prizes))
	for _, p := range prizes {
		if q.Kind != "" && p.Kind != q.Kind {
			continue
		}
		dtos = append(dtos, PrizeDTO{
			ID:          p.ID,
			SubjectID:   p.SubjectID,
			Name:        p.Name,
			Description: p.Description,
			Value:       p.Value.Int(),
			Kind:        string(p.Kind),
			CreatedAt:   p.CreatedAt,
		})
	}

	return &ListPrizesResult{Prizes: dtos, TotalCount: len(dtos)}, nil
}

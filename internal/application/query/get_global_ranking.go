// Package query contains read operations following CQRS pattern.
// Queries never modify state - they only read and return data.
// Each query is a self-contained use case with its own request/response types.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET GLOBAL RANKING QUERY
// Глобальный рейтинг: все студенты по убыванию суммы очков. Равные суммы
// упорядочиваются по ID студента по возрастанию - рейтинг детерминирован
// и воспроизводим.
// ══════════════════════════════════════════════════════════════════════════════

// RankingEntryDTO - запись рейтинга студентов (Data Transfer Object).
type RankingEntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// StudentID - внутренний ID студента.
	StudentID string `json:"student_id"`

	// Name - отображаемое имя.
	Name string `json:"name"`

	// TotalPoints - сумма очков.
	TotalPoints int `json:"total_points"`
}

// GetGlobalRankingQuery содержит параметры запроса.
type GetGlobalRankingQuery struct {
	// Limit - максимум записей (0 = без ограничения).
	Limit int
}

// Validate проверяет корректность параметров.
func (q *GetGlobalRankingQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("get_global_ranking: limit cannot be negative")
	}
	return nil
}

// GetGlobalRankingResult содержит результат запроса.
type GetGlobalRankingResult struct {
	// Entries - записи рейтинга.
	Entries []RankingEntryDTO `json:"entries"`

	// TotalCount - общее количество студентов в рейтинге.
	TotalCount int `json:"total_count"`

	// FromCache - true, если результат отдан из кеша.
	FromCache bool `json:"from_cache"`

	// GeneratedAt - время генерации результата.
	GeneratedAt time.Time `json:"generated_at"`
}

// RankingCache - опциональный кеш глобального рейтинга (Redis).
// Устаревшие, но внутренне согласованные данные допустимы.
type RankingCache interface {
	// GetGlobalRanking возвращает закешированный рейтинг или shared.ErrNotFound.
	GetGlobalRanking(ctx context.Context) ([]RankingEntryDTO, error)

	// SetGlobalRanking сохраняет рейтинг в кеш.
	SetGlobalRanking(ctx context.Context, entries []RankingEntryDTO) error
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetGlobalRankingHandler обрабатывает GetGlobalRankingQuery.
type GetGlobalRankingHandler struct {
	userRepo user.Repository
	cache    RankingCache // nil = кеш отключён
}

// NewGetGlobalRankingHandler создаёт новый GetGlobalRankingHandler.
func NewGetGlobalRankingHandler(userRepo user.Repository, cache RankingCache) *GetGlobalRankingHandler {
	return &GetGlobalRankingHandler{userRepo: userRepo, cache: cache}
}

// Handle выполняет запрос глобального рейтинга.
func (h *GetGlobalRankingHandler) Handle(ctx context.Context, q GetGlobalRankingQuery) (*GetGlobalRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	if h.cache != nil {
		if entries, err := h.cache.GetGlobalRanking(ctx); err == nil {
			return &GetGlobalRankingResult{
				Entries:     limitEntries(entries, q.Limit),
				TotalCount:  len(entries),
				FromCache:   true,
				GeneratedAt: time.Now().UTC(),
			}, nil
		}
		// Промах или сбой кеша - идём в хранилище
	}

	students, err := h.userRepo.ListStudentsByPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_global_ranking: failed to list students: %w", err)
	}

	entries := buildRankingEntries(students)

	if h.cache != nil {
		_ = h.cache.SetGlobalRanking(ctx, entries)
	}

	return &GetGlobalRankingResult{
		Entries:     limitEntries(entries, q.Limit),
		TotalCount:  len(entries),
		FromCache:   false,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// buildRankingEntries присваивает позиции; вход уже отсортирован репозиторием.
func buildRankingEntries(students []*user.User) []RankingEntryDTO {
	entries := make([]RankingEntryDTO, 0, len(students))
	for i, s := range students {
		entries = append(entries, RankingEntryDTO{
			Rank:        i + 1,
			StudentID:   s.ID,
			Name:        s.Name,
			TotalPoints: s.TotalPoints.Int(),
		})
	}
	return entries
}

func limitEntries(entries []RankingEntryDTO, limit int) []RankingEntryDTO {
	if limit > 0 && limit < len(entries) {
		return entries[:limit]
	}
	return entries
}

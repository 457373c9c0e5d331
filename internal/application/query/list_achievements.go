package query

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST ACHIEVEMENTS QUERY
// История наград студента: записи журнала в порядке вручения, обогащённые
// данными приза.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementDTO - запись о вручённой награде.
type AchievementDTO struct {
	ID         string    `json:"id"`
	PrizeID    string    `json:"prize_id"`
	PrizeName  string    `json:"prize_name"`
	PrizeValue int       `json:"prize_value"`
	GrantedAt  time.Time `json:"granted_at"`
}

// ListAchievementsQuery содержит параметры запроса.
type ListAchievementsQuery struct {
	// StudentID - ID студента (обязательно).
	StudentID string
}

// Validate проверяет корректность параметров.
func (q *ListAchievementsQuery) Validate() error {
	if q.StudentID == "" {
		return fmt.Errorf("list_achievements: student_id is required")
	}
	return nil
}

// ListAchievementsResult содержит результат запроса.
type ListAchievementsResult struct {
	StudentID    string           `json:"student_id"`
	StudentName  string           `json:"student_name"`
	TotalPoints  int              `json:"total_points"`
	Achievements []AchievementDTO `json:"achievements"`
}

// ListAchievementsHandler обрабатывает ListAchievementsQuery.
type ListAchievementsHandler struct {
	userRepo  user.Repository
	prizeRepo prize.Repository
	ledger    achievement.Repository
}

// NewListAchievementsHandler создаёт новый ListAchievementsHandler.
func NewListAchievementsHandler(
	userRepo user.Repository,
	prizeRepo prize.Repository,
	ledger achievement.Repository,
) *ListAchievementsHandler {
	return &ListAchievementsHandler{
		userRepo:  userRepo,
		prizeRepo: prizeRepo,
		ledger:    ledger,
	}
}

// Handle выполняет запрос истории наград студента.
func (h *ListAchievementsHandler) Handle(ctx context.Context, q ListAchievementsQuery) (*ListAchievementsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	student, err := h.userRepo.GetByID(ctx, q.StudentID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrStudentNotFound
		}
		return nil, fmt.Errorf("list_achievements: failed to load student: %w", err)
	}

	records, err := h.ledger.ListByStudent(ctx, q.StudentID)
	if err != nil {
		return nil, fmt.Errorf("list_achievements: failed to list achievements: %w", err)
	}

	dtos := make([]AchievementDTO, 0, len(records))
	for _, a := range records {
		dto := AchievementDTO{
			ID:        a.ID,
			PrizeID:   a.PrizeID,
			GrantedAt: a.GrantedAt,
		}
		// Приз мог быть удалён из каталога - запись журнала остаётся
		if p, err := h.prizeRepo.GetByID(ctx, a.PrizeID); err == nil {
			dto.PrizeName = p.Name
			dto.PrizeValue = p.Value.Int()
		}
		dtos = append(dtos, dto)
	}

	return &ListAchievementsResult{
		StudentID:    student.ID,
		StudentName:  student.Name,
		TotalPoints:  student.TotalPoints.Int(),
		Achievements: dtos,
	}, nil
}

// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE POINTS COMMAND
// Инструмент восстановления: сумма очков студента - кеш над леджером
// достижений, а не независимое поле. Команда пересчитывает кеш по леджеру
// для одного студента или для всех и сообщает о расхождениях.
// ══════════════════════════════════════════════════════════════════════════════

// RecomputePointsCommand содержит данные для пересчёта.
type RecomputePointsCommand struct {
	// StudentID - конкретный студент; пустая строка = все студенты.
	StudentID string

	// DryRun - только посчитать расхождения, ничего не записывая.
	DryRun bool
}

// PointsDrift описывает расхождение кеша с леджером у одного студента.
type PointsDrift struct {
	// StudentID - студент.
	StudentID string

	// Cached - сумма, хранившаяся в кеше.
	Cached shared.Points

	// Actual - сумма, вычисленная по леджеру.
	Actual shared.Points
}

// RecomputePointsResult содержит итог пересчёта.
type RecomputePointsResult struct {
	// Checked - количество проверенных студентов.
	Checked int

	// Drifts - найденные расхождения (пусто = кеш консистентен).
	Drifts []PointsDrift

	// Repaired - true, если расхождения были записаны обратно.
	Repaired bool
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecomputePointsHandler обрабатывает RecomputePointsCommand.
type RecomputePointsHandler struct {
	userRepo user.Repository
	ledger   achievement.Repository
}

// NewRecomputePointsHandler создаёт новый RecomputePointsHandler.
func NewRecomputePointsHandler(userRepo user.Repository, ledger achievement.Repository) *RecomputePointsHandler {
	return &RecomputePointsHandler{userRepo: userRepo, ledger: ledger}
}

// Handle выполняет пересчёт.
func (h *RecomputePointsHandler) Handle(ctx context.Context, cmd RecomputePointsCommand) (*RecomputePointsResult, error) {
	var students []*user.User

	if cmd.StudentID != "" {
		stud, err := h.userRepo.GetByID(ctx, cmd.StudentID)
		if err != nil {
			if shared.IsNotFound(err) {
				return nil, shared.ErrStudentNotFound
			}
			return nil, fmt.Errorf("recompute_points: failed to get student: %w", err)
		}
		if !stud.IsStudent() {
			return nil, shared.ErrNotAStudent
		}
		students = []*user.User{stud}
	} else {
		all, err := h.userRepo.ListStudentsByPoints(ctx)
		if err != nil {
			return nil, fmt.Errorf("recompute_points: failed to list students: %w", err)
		}
		students = all
	}

	result := &RecomputePointsResult{}

	for _, stud := range students {
		result.Checked++

		actual, err := h.ledger.SumPointsByStudent(ctx, stud.ID)
		if err != nil {
			return nil, fmt.Errorf("recompute_points: failed to sum ledger for %s: %w", stud.ID, err)
		}

		if actual == stud.TotalPoints {
			continue
		}

		result.Drifts = append(result.Drifts, PointsDrift{
			StudentID: stud.ID,
			Cached:    stud.TotalPoints,
			Actual:    actual,
		})

		if cmd.DryRun {
			continue
		}

		if err := h.userRepo.SetTotalPoints(ctx, stud.ID, actual); err != nil {
			return nil, fmt.Errorf("recompute_points: failed to repair %s: %w", stud.ID, err)
		}
		result.Repaired = true
	}

	return result, nil
}

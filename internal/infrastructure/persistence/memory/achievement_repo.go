package memory

import (
	"context"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// achievementRepo implements the achievement ledger on top of Store.
type achievementRepo struct {
	store *Store
}

// Append writes the ledger record and bumps the student's cached total
// under the same lock, so no reader can observe one without the other.
func (r *achievementRepo) Append(ctx context.Context, a *achievement.Achievement, value shared.Points) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.achievements[a.ID]; ok {
		return shared.ErrAlreadyExists
	}
	student, ok := r.store.users[a.StudentID]
	if !ok {
		return shared.ErrStudentNotFound
	}

	if err := student.AddPoints(value); err != nil {
		return err
	}

	cp := *a
	r.store.achievements[a.ID] = &cp
	r.store.achievementOrder = append(r.store.achievementOrder, a.ID)
	return nil
}

func (r *achievementRepo) ListByStudent(ctx context.Context, studentID string) ([]*achievement.Achievement, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*achievement.Achievement, 0)
	for _, id := range r.store.achievementOrder {
		a := r.store.achievements[id]
		if a.StudentID == studentID {
			cp := *a
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *achievementRepo) ReceivedOn(ctx context.Context, studentID, prizeName string, day time.Time, loc *time.Location) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, a := range r.store.achievements {
		if a.StudentID != studentID {
			continue
		}
		p, ok := r.store.prizes[a.PrizeID]
		if !ok || p.Name != prizeName {
			continue
		}
		if shared.SameCalendarDay(a.GrantedAt, day, loc) {
			return true, nil
		}
	}
	return false, nil
}

func (r *achievementRepo) SumPointsByStudent(ctx context.Context, studentID string) (shared.Points, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	total := shared.Points(0)
	for _, a := range r.store.achievements {
		if a.StudentID != studentID {
			continue
		}
		if p, ok := r.store.prizes[a.PrizeID]; ok {
			total += p.Value
		}
	}
	return total, nil
}

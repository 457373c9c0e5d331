package memory

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// prizeRepo implements prize.Repository on top of Store.
type prizeRepo struct {
	store *Store
}

func (r *prizeRepo) Create(ctx context.Context, p *prize.Prize) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.prizes[p.ID]; ok {
		return shared.ErrAlreadyExists
	}

	cp := *p
	r.store.prizes[p.ID] = &cp
	r.store.prizeOrder = append(r.store.prizeOrder, p.ID)
	return nil
}

func (r *prizeRepo) GetByID(ctx context.Context, id string) (*prize.Prize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.prizes[id]
	if !ok {
		return nil, shared.ErrPrizeNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *prizeRepo) ListBySubject(ctx context.Context, subjectID string) ([]*prize.Prize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*prize.Prize, 0)
	for _, id := range r.store.prizeOrder {
		p := r.store.prizes[id]
		if p.SubjectID == subjectID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *prizeRepo) FindBySubjectNameValue(ctx context.Context, subjectID, name string, value shared.Points) (*prize.Prize, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, id := range r.store.prizeOrder {
		p := r.store.prizes[id]
		if p.SubjectID == subjectID && p.Matches(name, value) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

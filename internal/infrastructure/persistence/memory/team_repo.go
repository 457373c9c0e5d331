package memory

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"
)

// teamRepo implements team.Repository on top of Store.
type teamRepo struct {
	store *Store
}

func (r *teamRepo) CreateTeam(ctx context.Context, t *team.Team) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.teams[t.ID]; ok {
		return shared.ErrAlreadyExists
	}

	cp := *t
	r.store.teams[t.ID] = &cp
	r.store.teamOrder = append(r.store.teamOrder, t.ID)
	return nil
}

func (r *teamRepo) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	t, ok := r.store.teams[id]
	if !ok {
		return nil, shared.ErrTeamNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *teamRepo) ListByProject(ctx context.Context, projectID string) ([]*team.Team, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*team.Team, 0)
	for _, id := range r.store.teamOrder {
		t := r.store.teams[id]
		if t.ProjectID == projectID {
			cp := *t
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *teamRepo) AddMember(ctx context.Context, m *team.Membership) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.teams[m.TeamID]; !ok {
		return shared.ErrTeamNotFound
	}
	for _, existing := range r.store.memberships {
		if existing.TeamID == m.TeamID && existing.UserID == m.UserID {
			return shared.ErrDuplicateMember
		}
	}

	cp := *m
	r.store.memberships[m.ID] = &cp
	r.store.membershipOrder = append(r.store.membershipOrder, m.ID)
	return nil
}

func (r *teamRepo) ListMembers(ctx context.Context, teamID string) ([]*team.Membership, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*team.Membership, 0)
	for _, id := range r.store.membershipOrder {
		m := r.store.memberships[id]
		if m.TeamID == teamID {
			cp := *m
			result = append(result, &cp)
		}
	}
	return result, nil
}

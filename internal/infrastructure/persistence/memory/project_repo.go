package memory

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// projectRepo implements project.Repository on top of Store.
type projectRepo struct {
	store *Store
}

func (r *projectRepo) CreateProject(ctx context.Context, p *project.Project) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.projects[p.ID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *p
	r.store.projects[p.ID] = &cp
	return nil
}

func (r *projectRepo) GetProject(ctx context.Context, id string) (*project.Project, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	p, ok := r.store.projects[id]
	if !ok {
		return nil, shared.ErrProjectNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *projectRepo) CreateSprint(ctx context.Context, s *project.Sprint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sprints[s.ID]; ok {
		return shared.ErrAlreadyExists
	}
	if _, ok := r.store.projects[s.ProjectID]; !ok {
		return shared.ErrProjectNotFound
	}

	cp := *s
	r.store.sprints[s.ID] = &cp
	r.store.sprintOrder = append(r.store.sprintOrder, s.ID)
	return nil
}

func (r *projectRepo) GetSprint(ctx context.Context, id string) (*project.Sprint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.sprints[id]
	if !ok {
		return nil, shared.ErrSprintNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *projectRepo) UpdateSprint(ctx context.Context, s *project.Sprint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.sprints[s.ID]; !ok {
		return shared.ErrSprintNotFound
	}
	cp := *s
	r.store.sprints[s.ID] = &cp
	return nil
}

func (r *projectRepo) ListSprintsByProject(ctx context.Context, projectID string) ([]*project.Sprint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*project.Sprint, 0)
	for _, id := range r.store.sprintOrder {
		s := r.store.sprints[id]
		if s.ProjectID == projectID {
			cp := *s
			result = append(result, &cp)
		}
	}
	return result, nil
}

package memory

import (
	"context"
	"sort"

	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
)

// userRepo implements user.Repository on top of Store.
type userRepo struct {
	store *Store
}

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[u.ID]; ok {
		return shared.ErrUserAlreadyExists
	}
	for _, existing := range r.store.users {
		if existing.Email == u.Email {
			return shared.ErrUserAlreadyExists
		}
	}

	r.store.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return u.Clone(), nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *userRepo) Update(ctx context.Context, u *user.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[u.ID]; !ok {
		return shared.ErrUserNotFound
	}
	r.store.users[u.ID] = u.Clone()
	return nil
}

func (r *userRepo) ListStudentsByPoints(ctx context.Context) ([]*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	students := make([]*user.User, 0)
	for _, u := range r.store.users {
		if u.IsStudent() {
			students = append(students, u.Clone())
		}
	}
	sortStudentsByPoints(students)
	return students, nil
}

func (r *userRepo) ListStudentsByCourse(ctx context.Context, courseID string) ([]*user.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	enrolled := make(map[string]bool)
	for _, e := range r.store.enrollments {
		if e.CourseID == courseID {
			enrolled[e.StudentID] = true
		}
	}

	students := make([]*user.User, 0)
	for _, u := range r.store.users {
		if u.IsStudent() && enrolled[u.ID] {
			students = append(students, u.Clone())
		}
	}
	sortStudentsByPoints(students)
	return students, nil
}

func (r *userRepo) SetTotalPoints(ctx context.Context, studentID string, total shared.Points) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[studentID]
	if !ok {
		return shared.ErrStudentNotFound
	}
	return u.SetTotalPoints(total)
}

// sortStudentsByPoints orders by total points descending, then by ID
// ascending so equal totals always list in the same order.
func sortStudentsByPoints(students []*user.User) {
	sort.SliceStable(students, func(i, j int) bool {
		if students[i].TotalPoints != students[j].TotalPoints {
			return students[i].TotalPoints > students[j].TotalPoints
		}
		return students[i].ID < students[j].ID
	})
}

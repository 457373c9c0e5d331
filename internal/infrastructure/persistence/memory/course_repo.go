package memory

import (
	"context"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// courseRepo implements course.Repository on top of Store.
type courseRepo struct {
	store *Store
}

func (r *courseRepo) CreateCourse(ctx context.Context, c *course.Course) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.courses[c.ID]; ok {
		return shared.ErrAlreadyExists
	}
	cp := *c
	r.store.courses[c.ID] = &cp
	return nil
}

func (r *courseRepo) GetCourse(ctx context.Context, id string) (*course.Course, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.courses[id]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *courseRepo) CreateSubject(ctx context.Context, s *course.Subject) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.subjects[s.ID]; ok {
		return shared.ErrAlreadyExists
	}
	if _, ok := r.store.courses[s.CourseID]; !ok {
		return shared.ErrCourseNotFound
	}
	cp := *s
	r.store.subjects[s.ID] = &cp
	return nil
}

func (r *courseRepo) GetSubject(ctx context.Context, id string) (*course.Subject, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	s, ok := r.store.subjects[id]
	if !ok {
		return nil, shared.ErrSubjectNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *courseRepo) Enroll(ctx context.Context, e *course.Enrollment) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.courses[e.CourseID]; !ok {
		return shared.ErrCourseNotFound
	}
	for _, existing := range r.store.enrollments {
		if existing.CourseID == e.CourseID && existing.StudentID == e.StudentID {
			return shared.ErrAlreadyEnrolled
		}
	}

	cp := *e
	r.store.enrollments[e.ID] = &cp
	r.store.enrollmentOrder = append(r.store.enrollmentOrder, e.ID)
	return nil
}

func (r *courseRepo) ListEnrollments(ctx context.Context, courseID string) ([]*course.Enrollment, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	result := make([]*course.Enrollment, 0)
	for _, id := range r.store.enrollmentOrder {
		e := r.store.enrollments[id]
		if e.CourseID == courseID {
			cp := *e
			result = append(result, &cp)
		}
	}
	return result, nil
}

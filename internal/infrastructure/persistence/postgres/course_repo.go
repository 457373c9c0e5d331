package postgres

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// COURSE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// CourseRepository implements course.Repository for PostgreSQL.
type CourseRepository struct {
	conn *Connection
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(conn *Connection) *CourseRepository {
	return &CourseRepository{conn: conn}
}

// CreateCourse creates a new course.
func (r *CourseRepository) CreateCourse(ctx context.Context, c *course.Course) error {
	query := `INSERT INTO courses (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := r.conn.Exec(ctx, query, c.ID, c.Name, c.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetCourse returns a course by ID.
func (r *CourseRepository) GetCourse(ctx context.Context, id string) (*course.Course, error) {
	query := `SELECT id, name, created_at FROM courses WHERE id = $1`

	var c course.Course
	err := r.conn.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrCourseNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	return &c, nil
}

// CreateSubject creates a new subject.
func (r *CourseRepository) CreateSubject(ctx context.Context, s *course.Subject) error {
	query := `INSERT INTO subjects (id, course_id, name, created_at) VALUES ($1, $2, $3, $4)`

	_, err := r.conn.Exec(ctx, query, s.ID, s.CourseID, s.Name, s.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("failed to create subject: %w", err)
	}

	return nil
}

// GetSubject returns a subject by ID.
func (r *CourseRepository) GetSubject(ctx context.Context, id string) (*course.Subject, error) {
	query := `SELECT id, course_id, name, created_at FROM subjects WHERE id = $1`

	var s course.Subject
	err := r.conn.QueryRow(ctx, query, id).Scan(&s.ID, &s.CourseID, &s.Name, &s.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	return &s, nil
}

// Enroll enrolls a student in a course.
func (r *CourseRepository) Enroll(ctx context.Context, e *course.Enrollment) error {
	query := `
		INSERT INTO enrollments (id, course_id, student_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, e.ID, e.CourseID, e.StudentID, e.EnrolledAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyEnrolled
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrCourseNotFound
		}
		return fmt.Errorf("failed to enroll student: %w", err)
	}

	return nil
}

// ListEnrollments returns the enrollments of a course in creation order.
func (r *CourseRepository) ListEnrollments(ctx context.Context, courseID string) ([]*course.Enrollment, error) {
	query := `
		SELECT id, course_id, student_id, enrolled_at
		FROM enrollments
		WHERE course_id = $1
		ORDER BY enrolled_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*course.Enrollment, 0)
	for rows.Next() {
		var e course.Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.EnrolledAt); err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, &e)
	}
	return enrollments, rows.Err()
}

// Package postgres implements the PostgreSQL persistence layer for
// EduScrum Awards.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository for PostgreSQL.
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

const userColumns = `id, name, email, password_hash, role, total_points, created_at, updated_at`

// ─────────────────────────────────────────────────────────────────────────────
// CRUD Operations
// ─────────────────────────────────────────────────────────────────────────────

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (id, name, email, password_hash, role, total_points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.conn.Exec(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.TotalPoints.Int(),
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns a user by internal ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanUser(row)
}

// GetByEmail returns a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	row := r.conn.QueryRow(ctx, query, email)
	return r.scanUser(row)
}

// Update updates a user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users SET
			name = $1,
			email = $2,
			password_hash = $3,
			role = $4,
			total_points = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		u.Name,
		u.Email,
		u.PasswordHash,
		string(u.Role),
		u.TotalPoints.Int(),
		time.Now().UTC(),
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrUserNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Ranking Queries
// ─────────────────────────────────────────────────────────────────────────────

// ListStudentsByPoints returns all students ordered by total points
// descending, ties broken by id ascending.
func (r *UserRepository) ListStudentsByPoints(ctx context.Context) ([]*user.User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE role = 'STUDENT'
		ORDER BY total_points DESC, id ASC
	`

	rows, err := r.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// ListStudentsByCourse returns students enrolled in a course, ordered
// the same way as ListStudentsByPoints.
func (r *UserRepository) ListStudentsByCourse(ctx context.Context, courseID string) ([]*user.User, error) {
	query := `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.total_points, u.created_at, u.updated_at
		FROM users u
		JOIN enrollments e ON e.student_id = u.id
		WHERE e.course_id = $1 AND u.role = 'STUDENT'
		ORDER BY u.total_points DESC, u.id ASC
	`

	rows, err := r.conn.Query(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list students by course: %w", err)
	}
	defer rows.Close()

	return r.scanUsers(rows)
}

// SetTotalPoints writes a recomputed points total for a student.
func (r *UserRepository) SetTotalPoints(ctx context.Context, studentID string, total shared.Points) error {
	query := `
		UPDATE users SET total_points = $1, updated_at = $2
		WHERE id = $3 AND role = 'STUDENT'
	`

	result, err := r.conn.Exec(ctx, query, total.Int(), time.Now().UTC(), studentID)
	if err != nil {
		return fmt.Errorf("failed to set total points: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrStudentNotFound
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Scan Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	var role string
	var totalPoints int

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&role,
		&totalPoints,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	u.Role = user.Role(role)
	u.TotalPoints = shared.Points(totalPoints)
	return &u, nil
}

func (r *UserRepository) scanUsers(rows pgx.Rows) ([]*user.User, error) {
	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/pkg/timeutil"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT LEDGER IMPLEMENTATION
// The ledger is append-only. Append writes the ledger row and bumps the
// student's cached total in one transaction, so readers never observe
// one side of the grant without the other.
// ══════════════════════════════════════════════════════════════════════════════

// AchievementRepository implements achievement.Repository for PostgreSQL.
type AchievementRepository struct {
	conn *Connection

	// loc is the reference timezone used to derive the granted_on
	// calendar day column. Nil means UTC.
	loc *time.Location
}

// NewAchievementRepository creates a new AchievementRepository.
func NewAchievementRepository(conn *Connection, loc *time.Location) *AchievementRepository {
	if loc == nil {
		loc = time.UTC
	}
	return &AchievementRepository{conn: conn, loc: loc}
}

// Append writes the achievement and atomically adds the prize value to
// the student's total points.
func (r *AchievementRepository) Append(ctx context.Context, a *achievement.Achievement, value shared.Points) error {
	grantedOn := timeutil.DayKey(a.GrantedAt, r.loc)

	return r.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		insertQuery := `
			INSERT INTO achievements (id, student_id, prize_id, granted_at, granted_on)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, insertQuery, a.ID, a.StudentID, a.PrizeID, a.GrantedAt, grantedOn); err != nil {
			if IsUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			if IsForeignKeyViolation(err) {
				return shared.ErrStudentNotFound
			}
			return fmt.Errorf("failed to insert achievement: %w", err)
		}

		updateQuery := `
			UPDATE users SET total_points = total_points + $1, updated_at = NOW()
			WHERE id = $2 AND role = 'STUDENT'
		`
		result, err := tx.Exec(ctx, updateQuery, value.Int(), a.StudentID)
		if err != nil {
			return fmt.Errorf("failed to add points: %w", err)
		}
		if result.RowsAffected() == 0 {
			return shared.ErrStudentNotFound
		}

		return nil
	})
}

// ListByStudent returns all achievements of a student in grant order.
func (r *AchievementRepository) ListByStudent(ctx context.Context, studentID string) ([]*achievement.Achievement, error) {
	query := `
		SELECT id, student_id, prize_id, granted_at
		FROM achievements
		WHERE student_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	defer rows.Close()

	achievements := make([]*achievement.Achievement, 0)
	for rows.Next() {
		var a achievement.Achievement
		if err := rows.Scan(&a.ID, &a.StudentID, &a.PrizeID, &a.GrantedAt); err != nil {
			return nil, fmt.Errorf("failed to scan achievement: %w", err)
		}
		achievements = append(achievements, &a)
	}
	return achievements, rows.Err()
}

// ReceivedOn reports whether the student already has an achievement with
// a prize of the given name granted on the same calendar day as day.
func (r *AchievementRepository) ReceivedOn(ctx context.Context, studentID, prizeName string, day time.Time, loc *time.Location) (bool, error) {
	dayStr := timeutil.DayKey(day, loc)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM achievements a
			JOIN prizes p ON p.id = a.prize_id
			WHERE a.student_id = $1 AND p.name = $2 AND a.granted_on = $3
		)
	`

	var exists bool
	if err := r.conn.QueryRow(ctx, query, studentID, prizeName, dayStr).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check daily grant: %w", err)
	}
	return exists, nil
}

// SumPointsByStudent returns the ledger-derived points total for a student.
func (r *AchievementRepository) SumPointsByStudent(ctx context.Context, studentID string) (shared.Points, error) {
	query := `
		SELECT COALESCE(SUM(p.value), 0)
		FROM achievements a
		JOIN prizes p ON p.id = a.prize_id
		WHERE a.student_id = $1
	`

	var total int
	if err := r.conn.QueryRow(ctx, query, studentID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return shared.Points(total), nil
}

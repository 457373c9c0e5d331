package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRIZE REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// PrizeRepository implements prize.Repository for PostgreSQL.
type PrizeRepository struct {
	conn *Connection
}

// NewPrizeRepository creates a new PrizeRepository.
func NewPrizeRepository(conn *Connection) *PrizeRepository {
	return &PrizeRepository{conn: conn}
}

const prizeColumns = `id, subject_id, name, description, value, kind, created_at`

// Create creates a new prize.
func (r *PrizeRepository) Create(ctx context.Context, p *prize.Prize) error {
	query := `
		INSERT INTO prizes (id, subject_id, name, description, value, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.conn.Exec(ctx, query,
		p.ID,
		p.SubjectID,
		p.Name,
		p.Description,
		p.Value.Int(),
		string(p.Kind),
		p.CreatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create prize: %w", err)
	}

	return nil
}

// GetByID returns a prize by ID.
func (r *PrizeRepository) GetByID(ctx context.Context, id string) (*prize.Prize, error) {
	query := `SELECT ` + prizeColumns + ` FROM prizes WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanPrize(row)
}

// ListBySubject returns all prizes of a subject in creation order.
func (r *PrizeRepository) ListBySubject(ctx context.Context, subjectID string) ([]*prize.Prize, error) {
	query := `
		SELECT ` + prizeColumns + `
		FROM prizes
		WHERE subject_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	defer rows.Close()

	prizes := make([]*prize.Prize, 0)
	for rows.Next() {
		p, err := r.scanPrize(rows)
		if err != nil {
			return nil, err
		}
		prizes = append(prizes, p)
	}
	return prizes, rows.Err()
}

// FindBySubjectNameValue looks up a prize by the idempotent search key
// (subject, name, value). Returns shared.ErrNotFound when absent.
func (r *PrizeRepository) FindBySubjectNameValue(ctx context.Context, subjectID, name string, value shared.Points) (*prize.Prize, error) {
	query := `
		SELECT ` + prizeColumns + `
		FROM prizes
		WHERE subject_id = $1 AND name = $2 AND value = $3
		ORDER BY created_at ASC
		LIMIT 1
	`

	row := r.conn.QueryRow(ctx, query, subjectID, name, value.Int())
	p, err := r.scanPrize(row)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *PrizeRepository) scanPrize(row pgx.Row) (*prize.Prize, error) {
	var p prize.Prize
	var value int
	var kind string

	err := row.Scan(
		&p.ID,
		&p.SubjectID,
		&p.Name,
		&p.Description,
		&value,
		&kind,
		&p.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrPrizeNotFound
		}
		return nil, fmt.Errorf("failed to scan prize: %w", err)
	}

	p.Value = shared.Points(value)
	p.Kind = prize.Kind(kind)
	return &p, nil
}

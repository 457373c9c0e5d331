package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// PROJECT REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// ProjectRepository implements project.Repository for PostgreSQL.
type ProjectRepository struct {
	conn *Connection
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(conn *Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

// CreateProject creates a new project.
func (r *ProjectRepository) CreateProject(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (id, subject_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, p.ID, p.SubjectID, p.Name, p.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrSubjectNotFound
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetProject returns a project by ID.
func (r *ProjectRepository) GetProject(ctx context.Context, id string) (*project.Project, error) {
	query := `SELECT id, subject_id, name, created_at FROM projects WHERE id = $1`

	var p project.Project
	err := r.conn.QueryRow(ctx, query, id).Scan(&p.ID, &p.SubjectID, &p.Name, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return &p, nil
}

const sprintColumns = `id, project_id, name, goals, start_date, end_date, state, created_at, updated_at`

// CreateSprint creates a new sprint.
func (r *ProjectRepository) CreateSprint(ctx context.Context, s *project.Sprint) error {
	query := `
		INSERT INTO sprints (id, project_id, name, goals, start_date, end_date, state, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.Exec(ctx, query,
		s.ID,
		s.ProjectID,
		s.Name,
		s.Goals,
		s.StartDate,
		s.EndDate,
		string(s.State),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrProjectNotFound
		}
		return fmt.Errorf("failed to create sprint: %w", err)
	}

	return nil
}

// GetSprint returns a sprint by ID.
func (r *ProjectRepository) GetSprint(ctx context.Context, id string) (*project.Sprint, error) {
	query := `SELECT ` + sprintColumns + ` FROM sprints WHERE id = $1`

	row := r.conn.QueryRow(ctx, query, id)
	return r.scanSprint(row)
}

// UpdateSprint updates a sprint.
func (r *ProjectRepository) UpdateSprint(ctx context.Context, s *project.Sprint) error {
	query := `
		UPDATE sprints SET
			name = $1,
			goals = $2,
			start_date = $3,
			end_date = $4,
			state = $5,
			updated_at = $6
		WHERE id = $7
	`

	result, err := r.conn.Exec(ctx, query,
		s.Name,
		s.Goals,
		s.StartDate,
		s.EndDate,
		string(s.State),
		time.Now().UTC(),
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sprint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return shared.ErrSprintNotFound
	}

	return nil
}

// ListSprintsByProject returns the sprints of a project in creation order.
func (r *ProjectRepository) ListSprintsByProject(ctx context.Context, projectID string) ([]*project.Sprint, error) {
	query := `
		SELECT ` + sprintColumns + `
		FROM sprints
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sprints: %w", err)
	}
	defer rows.Close()

	sprints := make([]*project.Sprint, 0)
	for rows.Next() {
		s, err := r.scanSprint(rows)
		if err != nil {
			return nil, err
		}
		sprints = append(sprints, s)
	}
	return sprints, rows.Err()
}

func (r *ProjectRepository) scanSprint(row pgx.Row) (*project.Sprint, error) {
	var s project.Sprint
	var state string

	err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&s.Name,
		&s.Goals,
		&s.StartDate,
		&s.EndDate,
		&state,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrSprintNotFound
		}
		return nil, fmt.Errorf("failed to scan sprint: %w", err)
	}

	s.State = project.SprintState(state)
	return &s, nil
}

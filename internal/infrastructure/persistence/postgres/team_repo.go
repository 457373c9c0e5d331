package postgres

import (
	"context"
	"fmt"

	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEAM REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// TeamRepository implements team.Repository for PostgreSQL.
type TeamRepository struct {
	conn *Connection
}

// NewTeamRepository creates a new TeamRepository.
func NewTeamRepository(conn *Connection) *TeamRepository {
	return &TeamRepository{conn: conn}
}

// CreateTeam creates a new team.
func (r *TeamRepository) CreateTeam(ctx context.Context, t *team.Team) error {
	query := `
		INSERT INTO teams (id, project_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.conn.Exec(ctx, query, t.ID, t.ProjectID, t.Name, t.CreatedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrAlreadyExists
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrProjectNotFound
		}
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetTeam returns a team by ID.
func (r *TeamRepository) GetTeam(ctx context.Context, id string) (*team.Team, error) {
	query := `SELECT id, project_id, name, created_at FROM teams WHERE id = $1`

	var t team.Team
	err := r.conn.QueryRow(ctx, query, id).Scan(&t.ID, &t.ProjectID, &t.Name, &t.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, shared.ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return &t, nil
}

// ListByProject returns all teams of a project in creation order.
func (r *TeamRepository) ListByProject(ctx context.Context, projectID string) ([]*team.Team, error) {
	query := `
		SELECT id, project_id, name, created_at
		FROM teams
		WHERE project_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*team.Team, 0)
	for rows.Next() {
		var t team.Team
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

// AddMember adds a member to a team.
func (r *TeamRepository) AddMember(ctx context.Context, m *team.Membership) error {
	query := `
		INSERT INTO team_members (id, team_id, user_id, scrum_role, joined_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.conn.Exec(ctx, query, m.ID, m.TeamID, m.UserID, string(m.Role), m.JoinedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return shared.ErrDuplicateMember
		}
		if IsForeignKeyViolation(err) {
			return shared.ErrTeamNotFound
		}
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

// ListMembers returns all members of a team in join order.
func (r *TeamRepository) ListMembers(ctx context.Context, teamID string) ([]*team.Membership, error) {
	query := `
		SELECT id, team_id, user_id, scrum_role, joined_at
		FROM team_members
		WHERE team_id = $1
		ORDER BY joined_at ASC, id ASC
	`

	rows, err := r.conn.Query(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	return scanMemberships(rows)
}

func scanMemberships(rows pgx.Rows) ([]*team.Membership, error) {
	members := make([]*team.Membership, 0)
	for rows.Next() {
		var m team.Membership
		var role string
		if err := rows.Scan(&m.ID, &m.TeamID, &m.UserID, &role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		m.Role = team.ScrumRole(role)
		members = append(members, &m)
	}
	return members, rows.Err()
}

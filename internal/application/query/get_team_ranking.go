package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"
	"github.com/eduscrum/awards/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TEAM RANKING QUERY
// Рейтинг команд проекта по среднему баллу: сумма очков студентов команды,
// делённая на их число, округлённая до одного десятичного знака. Команда без
// студентов получает 0 очков и средний балл 0.0 и остаётся в рейтинге.
// ══════════════════════════════════════════════════════════════════════════════

// TeamRankingEntryDTO - запись рейтинга команд.
type TeamRankingEntryDTO struct {
	// Rank - позиция в рейтинге (начиная с 1).
	Rank int `json:"rank"`

	// TeamID - ID команды.
	TeamID string `json:"team_id"`

	// TeamName - название команды.
	TeamName string `json:"team_name"`

	// TotalPoints - сумма очков студентов команды.
	TotalPoints int `json:"total_points"`

	// AveragePoints - средний балл, один десятичный знак.
	AveragePoints float64 `json:"average_points"`

	// StudentCount - число студентов в команде.
	StudentCount int `json:"student_count"`
}

// GetTeamRankingQuery содержит параметры запроса.
type GetTeamRankingQuery struct {
	// ProjectID - ID проекта (обязательно).
	ProjectID string
}

// Validate проверяет корректность параметров.
func (q *GetTeamRankingQuery) Validate() error {
	if q.ProjectID == "" {
		return fmt.Errorf("get_team_ranking: project_id is required")
	}
	return nil
}

// GetTeamRankingResult содержит результат запроса.
type GetTeamRankingResult struct {
	ProjectID   string                `json:"project_id"`
	ProjectName string                `json:"project_name"`
	Entries     []TeamRankingEntryDTO `json:"entries"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// GetTeamRankingHandler обрабатывает GetTeamRankingQuery.
type GetTeamRankingHandler struct {
	projectRepo project.Repository
	teamRepo    team.Repository
	userRepo    user.Repository
}

// NewGetTeamRankingHandler создаёт новый GetTeamRankingHandler.
func NewGetTeamRankingHandler(
	projectRepo project.Repository,
	teamRepo team.Repository,
	userRepo user.Repository,
) *GetTeamRankingHandler {
	return &GetTeamRankingHandler{
		projectRepo: projectRepo,
		teamRepo:    teamRepo,
		userRepo:    userRepo,
	}
}

// Handle выполняет запрос рейтинга команд проекта.
func (h *GetTeamRankingHandler) Handle(ctx context.Context, q GetTeamRankingQuery) (*GetTeamRankingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	proj, err := h.projectRepo.GetProject(ctx, q.ProjectID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get_team_ranking: failed to load project: %w", err)
	}

	teams, err := h.teamRepo.ListByProject(ctx, q.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("get_team_ranking: failed to list teams: %w", err)
	}

	entries := make([]TeamRankingEntryDTO, 0, len(teams))
	for _, t := range teams {
		entry, err := h.scoreTeam(ctx, t)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	// Средний балл по убыванию, при равенстве - ID команды по возрастанию
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AveragePoints != entries[j].AveragePoints {
			return entries[i].AveragePoints > entries[j].AveragePoints
		}
		return entries[i].TeamID < entries[j].TeamID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return &GetTeamRankingResult{
		ProjectID:   proj.ID,
		ProjectName: proj.Name,
		Entries:     entries,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

// scoreTeam считает сумму и средний балл по студентам команды.
// Члены команды с другой ролью (преподаватели) в счёт не входят.
func (h *GetTeamRankingHandler) scoreTeam(ctx context.Context, t *team.Team) (TeamRankingEntryDTO, error) {
	members, err := h.teamRepo.ListMembers(ctx, t.ID)
	if err != nil {
		return TeamRankingEntryDTO{}, fmt.Errorf("get_team_ranking: failed to list members of team %s: %w", t.ID, err)
	}

	total := shared.Points(0)
	students := 0
	for _, m := range members {
		u, err := h.userRepo.GetByID(ctx, m.UserID)
		if err != nil {
			return TeamRankingEntryDTO{}, fmt.Errorf("get_team_ranking: failed to load member %s: %w", m.UserID, err)
		}
		if !u.IsStudent() {
			continue
		}
		total += u.TotalPoints
		students++
	}

	return TeamRankingEntryDTO{
		TeamID:        t.ID,
		TeamName:      t.Name,
		TotalPoints:   total.Int(),
		AveragePoints: shared.NewAverage(total, students).Float64(),
		StudentCount:  students,
	}, nil
}

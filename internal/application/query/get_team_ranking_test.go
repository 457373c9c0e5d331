package query

import (
	"context"
	"testing"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type teamRankingFixture struct {
	store   *memory.Store
	handler *GetTeamRankingHandler
}

// newTeamRankingFixture builds one project with two teams:
//
//	Alpha: stud-1 (20 points), stud-2 (30 points), plus a professor
//	Beta:  stud-3 (25 points)
func newTeamRankingFixture(t *testing.T) *teamRankingFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	c, err := course.NewCourse("course-1", "Physics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateCourse(ctx, c))

	subj, err := course.NewSubject("subj-1", c.ID, "Mechanics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateSubject(ctx, subj))

	proj, err := project.NewProject("proj-1", subj.ID, "Catapult")
	require.NoError(t, err)
	require.NoError(t, store.Projects().CreateProject(ctx, proj))

	seedStudents(t, store, map[string]int{"stud-1": 20, "stud-2": 30, "stud-3": 25})
	prof, err := user.NewUser(user.NewUserParams{ID: "prof-1", Name: "Prof", Email: "prof@uni.kz", Role: user.RoleProfessor})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, prof))

	alpha, err := team.NewTeam("team-alpha", proj.ID, "Alpha")
	require.NoError(t, err)
	require.NoError(t, store.Teams().CreateTeam(ctx, alpha))

	beta, err := team.NewTeam("team-beta", proj.ID, "Beta")
	require.NoError(t, err)
	require.NoError(t, store.Teams().CreateTeam(ctx, beta))

	members := []struct {
		id, teamID, userID string
		role               team.ScrumRole
	}{
		{"memb-1", "team-alpha", "stud-1", team.RoleDev},
		{"memb-2", "team-alpha", "stud-2", team.RoleSM},
		{"memb-3", "team-alpha", "prof-1", team.RolePO},
		{"memb-4", "team-beta", "stud-3", team.RoleDev},
	}
	for _, m := range members {
		membership, err := team.NewMembership(m.id, m.teamID, m.userID, m.role)
		require.NoError(t, err)
		require.NoError(t, store.Teams().AddMember(ctx, membership))
	}

	return &teamRankingFixture{
		store:   store,
		handler: NewGetTeamRankingHandler(store.Projects(), store.Teams(), store.Users()),
	}
}

func TestGetTeamRanking_AveragesAndOrder(t *testing.T) {
	f := newTeamRankingFixture(t)

	res, err := f.handler.Handle(context.Background(), GetTeamRankingQuery{ProjectID: "proj-1"})
	require.NoError(t, err)

	assert.Equal(t, "proj-1", res.ProjectID)
	assert.Equal(t, "Catapult", res.ProjectName)
	require.Len(t, res.Entries, 2)

	// Alpha: (20+30)/2 = 25.0, the professor does not count
	alpha := res.Entries[0]
	assert.Equal(t, 1, alpha.Rank)
	assert.Equal(t, "team-alpha", alpha.TeamID)
	assert.Equal(t, 50, alpha.TotalPoints)
	assert.Equal(t, 2, alpha.StudentCount)
	assert.InDelta(t, 25.0, alpha.AveragePoints, 0.001)

	beta := res.Entries[1]
	assert.Equal(t, 2, beta.Rank)
	assert.InDelta(t, 25.0, beta.AveragePoints, 0.001)
}

func TestGetTeamRanking_TieBreaksByTeamID(t *testing.T) {
	f := newTeamRankingFixture(t)

	// Both teams average 25.0, so the order falls back to team ID ascending
	res, err := f.handler.Handle(context.Background(), GetTeamRankingQuery{ProjectID: "proj-1"})
	require.NoError(t, err)

	require.Len(t, res.Entries, 2)
	assert.Equal(t, "team-alpha", res.Entries[0].TeamID)
	assert.Equal(t, "team-beta", res.Entries[1].TeamID)
}

func TestGetTeamRanking_AverageRoundsHalfUp(t *testing.T) {
	f := newTeamRankingFixture(t)
	ctx := context.Background()

	// Alpha now sums 37 over 2 students, so the average is exactly 18.5
	require.NoError(t, f.store.Users().SetTotalPoints(ctx, "stud-1", shared.Points(7)))

	res, err := f.handler.Handle(ctx, GetTeamRankingQuery{ProjectID: "proj-1"})
	require.NoError(t, err)

	var alpha TeamRankingEntryDTO
	for _, e := range res.Entries {
		if e.TeamID == "team-alpha" {
			alpha = e
		}
	}
	assert.Equal(t, 37, alpha.TotalPoints)
	assert.InDelta(t, 18.5, alpha.AveragePoints, 0.001)
}

func TestGetTeamRanking_EmptyTeamStaysRanked(t *testing.T) {
	f := newTeamRankingFixture(t)
	ctx := context.Background()

	empty, err := team.NewTeam("team-empty", "proj-1", "Ghosts")
	require.NoError(t, err)
	require.NoError(t, f.store.Teams().CreateTeam(ctx, empty))

	res, err := f.handler.Handle(ctx, GetTeamRankingQuery{ProjectID: "proj-1"})
	require.NoError(t, err)

	require.Len(t, res.Entries, 3)
	last := res.Entries[2]
	assert.Equal(t, "team-empty", last.TeamID)
	assert.Equal(t, 0, last.TotalPoints)
	assert.Equal(t, 0, last.StudentCount)
	assert.Equal(t, 0.0, last.AveragePoints)
}

func TestGetTeamRanking_ProjectNotFound(t *testing.T) {
	f := newTeamRankingFixture(t)

	_, err := f.handler.Handle(context.Background(), GetTeamRankingQuery{ProjectID: "no-such-project"})
	assert.ErrorIs(t, err, shared.ErrProjectNotFound)
}

func TestGetTeamRanking_MissingProjectID(t *testing.T) {
	f := newTeamRankingFixture(t)

	_, err := f.handler.Handle(context.Background(), GetTeamRankingQuery{})
	assert.Error(t, err)
}

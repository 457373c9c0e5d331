package eventhandler

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/team"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noopPublisher struct{}

func (noopPublisher) Publish(shared.Event) error { return nil }

// newAwardsEngine wires a real award engine over the in-memory store with
// one completed sprint and one student.
func newAwardsEngine(t *testing.T) (*memory.Store, *command.ProcessSprintAwardsHandler) {
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

	// The handler evaluates punctuality against the current clock, so the
	// sprint must end today for the grant to happen
	endDate := time.Now().UTC()
	sprint, err := project.NewSprint(project.NewSprintParams{
		ID:        "sprint-1",
		ProjectID: proj.ID,
		Name:      "Sprint 1",
		StartDate: endDate.AddDate(0, 0, -14),
		EndDate:   endDate,
		State:     project.SprintCompleted,
	})
	require.NoError(t, err)
	require.NoError(t, store.Projects().CreateSprint(ctx, sprint))

	stud, err := user.NewUser(user.NewUserParams{ID: "stud-1", Name: "Aida", Email: "aida@uni.kz", Role: user.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, stud))

	tm, err := team.NewTeam("team-1", proj.ID, "Alpha")
	require.NoError(t, err)
	require.NoError(t, store.Teams().CreateTeam(ctx, tm))

	membership, err := team.NewMembership("memb-1", tm.ID, stud.ID, team.RoleDev)
	require.NoError(t, err)
	require.NoError(t, store.Teams().AddMember(ctx, membership))

	ensurePrize := command.NewEnsureAutomaticPrizeHandler(store.Prizes())
	grant := command.NewGrantPrizeHandler(store.Users(), store.Prizes(), store.Achievements(), noopPublisher{})
	awards := command.NewProcessSprintAwardsHandler(
		store.Projects(), store.Courses(), store.Teams(), store.Users(), store.Achievements(),
		ensurePrize, grant, command.DefaultProcessSprintAwardsConfig(),
	)
	return store, awards
}

func studentTotal(t *testing.T, store *memory.Store, id string) shared.Points {
	t.Helper()
	u, err := store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.TotalPoints
}

func TestOnSprintCompleted_RunsAwardEngine(t *testing.T) {
	store, awards := newAwardsEngine(t)
	handler := NewOnSprintCompletedHandler(awards, nil, DefaultSprintCompletedConfig())

	event := shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, shared.Points(command.DefaultAwardPrizeValue), studentTotal(t, store, "stud-1"))
}

func TestOnSprintCompleted_DisabledIsNoOp(t *testing.T) {
	store, awards := newAwardsEngine(t)
	config := DefaultSprintCompletedConfig()
	config.Enabled = false
	handler := NewOnSprintCompletedHandler(awards, nil, config)

	event := shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, shared.Points(0), studentTotal(t, store, "stud-1"))
}

func TestOnSprintCompleted_IgnoresForeignEvents(t *testing.T) {
	store, awards := newAwardsEngine(t)
	handler := NewOnSprintCompletedHandler(awards, nil, DefaultSprintCompletedConfig())

	event := shared.NewAchievementGrantedEvent("ach-1", "stud-1", "prize-1", "Best Demo", 15, 15, false)
	require.NoError(t, handler.Handle(event))

	assert.Equal(t, shared.Points(0), studentTotal(t, store, "stud-1"))
}

func TestOnSprintCompleted_EventType(t *testing.T) {
	_, awards := newAwardsEngine(t)
	handler := NewOnSprintCompletedHandler(awards, nil, DefaultSprintCompletedConfig())
	assert.Equal(t, shared.EventSprintCompleted, handler.EventType())
}

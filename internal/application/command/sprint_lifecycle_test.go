package command

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/project"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sprintFixture struct {
	store     *memory.Store
	create    *CreateSprintHandler
	complete  *CompleteSprintHandler
	publisher *capturePublisher

	projectID string
}

func newSprintFixture(t *testing.T) *sprintFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &sprintFixture{
		store:     store,
		publisher: &capturePublisher{},
		projectID: "proj-1",
	}

	c, err := course.NewCourse("course-1", "Physics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateCourse(ctx, c))

	subj, err := course.NewSubject("subj-1", c.ID, "Mechanics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateSubject(ctx, subj))

	proj, err := project.NewProject(f.projectID, "subj-1", "Catapult")
	require.NoError(t, err)
	require.NoError(t, store.Projects().CreateProject(ctx, proj))

	f.create = NewCreateSprintHandler(store.Projects(), f.publisher)
	f.complete = NewCompleteSprintHandler(store.Projects(), f.publisher)
	return f
}

func TestCreateSprint_InProgressByDefault(t *testing.T) {
	f := newSprintFixture(t)

	res, err := f.create.Handle(context.Background(), CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, project.SprintInProgress, res.Sprint.State)
	// No completion, no event
	assert.Empty(t, f.publisher.events)
}

func TestCreateSprint_CompletedPublishesImmediately(t *testing.T) {
	f := newSprintFixture(t)

	res, err := f.create.Handle(context.Background(), CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		State:     string(project.SprintCompleted),
	})
	require.NoError(t, err)

	assert.True(t, res.Sprint.IsCompleted())
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, shared.EventSprintCompleted, f.publisher.events[0].EventType())
}

func TestCreateSprint_DatesInverted(t *testing.T) {
	f := newSprintFixture(t)

	_, err := f.create.Handle(context.Background(), CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, shared.ErrSprintDatesInverted)
}

func TestCreateSprint_UnknownState(t *testing.T) {
	f := newSprintFixture(t)

	_, err := f.create.Handle(context.Background(), CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		State:     "CANCELLED",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidSprintState)
}

func TestCreateSprint_ProjectNotFound(t *testing.T) {
	f := newSprintFixture(t)

	_, err := f.create.Handle(context.Background(), CreateSprintCommand{
		ProjectID: "nope",
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	assert.ErrorIs(t, err, shared.ErrProjectNotFound)
}

func TestCompleteSprint_TransitionPublishes(t *testing.T) {
	f := newSprintFixture(t)
	ctx := context.Background()

	created, err := f.create.Handle(ctx, CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	res, err := f.complete.Handle(ctx, CompleteSprintCommand{SprintID: created.Sprint.ID})
	require.NoError(t, err)
	assert.True(t, res.Sprint.IsCompleted())

	require.Len(t, f.publisher.events, 1)
	event, ok := f.publisher.events[0].(shared.SprintCompletedEvent)
	require.True(t, ok)
	assert.Equal(t, f.projectID, event.ProjectID)

	// State persisted, not just returned
	stored, err := f.store.Projects().GetSprint(ctx, created.Sprint.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted())
}

func TestCompleteSprint_AlreadyCompleted(t *testing.T) {
	f := newSprintFixture(t)
	ctx := context.Background()

	created, err := f.create.Handle(ctx, CreateSprintCommand{
		ProjectID: f.projectID,
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, err = f.complete.Handle(ctx, CompleteSprintCommand{SprintID: created.Sprint.ID})
	require.NoError(t, err)

	// The transition, not the state, is the trigger: a second completion
	// is rejected and no second event is published
	_, err = f.complete.Handle(ctx, CompleteSprintCommand{SprintID: created.Sprint.ID})
	assert.ErrorIs(t, err, shared.ErrSprintAlreadyCompleted)
	assert.Len(t, f.publisher.events, 1)
}

func TestCompleteSprint_NotFound(t *testing.T) {
	f := newSprintFixture(t)

	_, err := f.complete.Handle(context.Background(), CompleteSprintCommand{SprintID: "nope"})
	assert.ErrorIs(t, err, shared.ErrSprintNotFound)
}

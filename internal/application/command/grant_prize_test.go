package command

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/course"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

type grantFixture struct {
	store     *memory.Store
	handler   *GrantPrizeHandler
	publisher *capturePublisher

	studentID   string
	professorID string
	prizeID     string
}

func newGrantFixture(t *testing.T) *grantFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	f := &grantFixture{
		store:       store,
		publisher:   &capturePublisher{},
		studentID:   "stud-1",
		professorID: "prof-1",
		prizeID:     "prize-1",
	}

	c, err := course.NewCourse("course-1", "Physics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateCourse(ctx, c))

	subj, err := course.NewSubject("subj-1", c.ID, "Mechanics")
	require.NoError(t, err)
	require.NoError(t, store.Courses().CreateSubject(ctx, subj))

	stud, err := user.NewUser(user.NewUserParams{ID: f.studentID, Name: "Aida", Email: "aida@uni.kz", Role: user.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, stud))

	prof, err := user.NewUser(user.NewUserParams{ID: f.professorID, Name: "Prof", Email: "prof@uni.kz", Role: user.RoleProfessor})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, prof))

	p, err := prize.NewPrize(prize.NewPrizeParams{
		ID:        f.prizeID,
		SubjectID: "subj-1",
		Name:      "Best Demo",
		Value:     shared.Points(15),
		Kind:      prize.KindManual,
	})
	require.NoError(t, err)
	require.NoError(t, store.Prizes().Create(ctx, p))

	f.handler = NewGrantPrizeHandler(store.Users(), store.Prizes(), store.Achievements(), f.publisher)
	return f
}

func TestGrantPrize_AppendsAndAccumulates(t *testing.T) {
	f := newGrantFixture(t)
	ctx := context.Background()

	res, err := f.handler.Handle(ctx, GrantPrizeCommand{StudentID: f.studentID, PrizeID: f.prizeID})
	require.NoError(t, err)

	assert.Equal(t, 15, res.NewTotal.Int())
	assert.Equal(t, f.prizeID, res.Achievement.PrizeID)

	// Ledger entry and cached total move together
	u, err := f.store.Users().GetByID(ctx, f.studentID)
	require.NoError(t, err)
	assert.Equal(t, 15, u.TotalPoints.Int())

	ledger, err := f.store.Achievements().ListByStudent(ctx, f.studentID)
	require.NoError(t, err)
	assert.Len(t, ledger, 1)
}

func TestGrantPrize_ManualDoubleGrantAllowed(t *testing.T) {
	f := newGrantFixture(t)
	ctx := context.Background()

	_, err := f.handler.Handle(ctx, GrantPrizeCommand{StudentID: f.studentID, PrizeID: f.prizeID})
	require.NoError(t, err)

	// A professor may grant the same prize again on the same day
	res, err := f.handler.Handle(ctx, GrantPrizeCommand{StudentID: f.studentID, PrizeID: f.prizeID})
	require.NoError(t, err)
	assert.Equal(t, 30, res.NewTotal.Int())

	ledger, err := f.store.Achievements().ListByStudent(ctx, f.studentID)
	require.NoError(t, err)
	assert.Len(t, ledger, 2)
}

func TestGrantPrize_PublishesEvent(t *testing.T) {
	f := newGrantFixture(t)

	_, err := f.handler.Handle(context.Background(), GrantPrizeCommand{StudentID: f.studentID, PrizeID: f.prizeID})
	require.NoError(t, err)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, shared.EventAchievementGranted, f.publisher.events[0].EventType())
}

func TestGrantPrize_StudentNotFound(t *testing.T) {
	f := newGrantFixture(t)

	_, err := f.handler.Handle(context.Background(), GrantPrizeCommand{StudentID: "nope", PrizeID: f.prizeID})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestGrantPrize_PrizeNotFound(t *testing.T) {
	f := newGrantFixture(t)

	_, err := f.handler.Handle(context.Background(), GrantPrizeCommand{StudentID: f.studentID, PrizeID: "nope"})
	assert.ErrorIs(t, err, shared.ErrPrizeNotFound)
}

func TestGrantPrize_OnlyStudents(t *testing.T) {
	f := newGrantFixture(t)

	_, err := f.handler.Handle(context.Background(), GrantPrizeCommand{StudentID: f.professorID, PrizeID: f.prizeID})
	assert.ErrorIs(t, err, shared.ErrNotAStudent)
}

func TestGrantPrize_ExplicitGrantTime(t *testing.T) {
	f := newGrantFixture(t)
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	res, err := f.handler.Handle(context.Background(), GrantPrizeCommand{
		StudentID: f.studentID,
		PrizeID:   f.prizeID,
		GrantedAt: at,
	})
	require.NoError(t, err)
	assert.True(t, res.Achievement.GrantedAt.Equal(at))
}

package command

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recomputeFixture struct {
	store   *memory.Store
	handler *RecomputePointsHandler
}

// newRecomputeFixture creates two students with ledger entries worth 10
// points each, so both cached totals start at 10.
func newRecomputeFixture(t *testing.T) *recomputeFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	p, err := prize.NewPrize(prize.NewPrizeParams{
		ID:        "prize-1",
		SubjectID: "subj-1",
		Name:      "Light Speed",
		Value:     shared.Points(10),
		Kind:      prize.KindAutomatic,
	})
	require.NoError(t, err)
	require.NoError(t, store.Prizes().Create(ctx, p))

	for i, id := range []string{"stud-1", "stud-2"} {
		stud, err := user.NewUser(user.NewUserParams{
			ID:    id,
			Name:  "Student " + id,
			Email: id + "@uni.kz",
			Role:  user.RoleStudent,
		})
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(ctx, stud))

		a, err := achievement.New("ach-"+id, id, "prize-1", time.Date(2026, 3, 14, 12, i, 0, 0, time.UTC))
		require.NoError(t, err)
		require.NoError(t, store.Achievements().Append(ctx, a, p.Value))
	}

	return &recomputeFixture{
		store:   store,
		handler: NewRecomputePointsHandler(store.Users(), store.Achievements()),
	}
}

func (f *recomputeFixture) total(t *testing.T, studentID string) shared.Points {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), studentID)
	require.NoError(t, err)
	return u.TotalPoints
}

func TestRecomputePoints_ConsistentCache(t *testing.T) {
	f := newRecomputeFixture(t)

	res, err := f.handler.Handle(context.Background(), RecomputePointsCommand{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Checked)
	assert.Empty(t, res.Drifts)
	assert.False(t, res.Repaired)
}

func TestRecomputePoints_RepairsDrift(t *testing.T) {
	f := newRecomputeFixture(t)
	ctx := context.Background()

	// Corrupt one cached total behind the ledger's back
	require.NoError(t, f.store.Users().SetTotalPoints(ctx, "stud-1", shared.Points(999)))

	res, err := f.handler.Handle(ctx, RecomputePointsCommand{})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Checked)
	require.Len(t, res.Drifts, 1)
	assert.Equal(t, "stud-1", res.Drifts[0].StudentID)
	assert.Equal(t, shared.Points(999), res.Drifts[0].Cached)
	assert.Equal(t, shared.Points(10), res.Drifts[0].Actual)
	assert.True(t, res.Repaired)

	assert.Equal(t, shared.Points(10), f.total(t, "stud-1"))
	assert.Equal(t, shared.Points(10), f.total(t, "stud-2"))
}

func TestRecomputePoints_DryRunLeavesCacheUntouched(t *testing.T) {
	f := newRecomputeFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Users().SetTotalPoints(ctx, "stud-2", shared.Points(0)))

	res, err := f.handler.Handle(ctx, RecomputePointsCommand{DryRun: true})
	require.NoError(t, err)

	require.Len(t, res.Drifts, 1)
	assert.Equal(t, "stud-2", res.Drifts[0].StudentID)
	assert.False(t, res.Repaired)

	// The drift is reported but not written back
	assert.Equal(t, shared.Points(0), f.total(t, "stud-2"))
}

func TestRecomputePoints_SingleStudent(t *testing.T) {
	f := newRecomputeFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Users().SetTotalPoints(ctx, "stud-1", shared.Points(7)))
	require.NoError(t, f.store.Users().SetTotalPoints(ctx, "stud-2", shared.Points(7)))

	res, err := f.handler.Handle(ctx, RecomputePointsCommand{StudentID: "stud-1"})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Checked)
	require.Len(t, res.Drifts, 1)
	assert.True(t, res.Repaired)

	assert.Equal(t, shared.Points(10), f.total(t, "stud-1"))
	// The other student was out of scope
	assert.Equal(t, shared.Points(7), f.total(t, "stud-2"))
}

func TestRecomputePoints_StudentNotFound(t *testing.T) {
	f := newRecomputeFixture(t)

	_, err := f.handler.Handle(context.Background(), RecomputePointsCommand{StudentID: "no-such-user"})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestRecomputePoints_NotAStudent(t *testing.T) {
	f := newRecomputeFixture(t)
	ctx := context.Background()

	prof, err := user.NewUser(user.NewUserParams{ID: "prof-1", Name: "Prof", Email: "prof@uni.kz", Role: user.RoleProfessor})
	require.NoError(t, err)
	require.NoError(t, f.store.Users().Create(ctx, prof))

	_, err = f.handler.Handle(ctx, RecomputePointsCommand{StudentID: "prof-1"})
	assert.ErrorIs(t, err, shared.ErrNotAStudent)
}

package memory

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/prize"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLedgerStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	store := NewStore()

	stud, err := user.NewUser(user.NewUserParams{ID: "stud-1", Name: "Aida", Email: "aida@uni.kz", Role: user.RoleStudent})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, stud))

	prof, err := user.NewUser(user.NewUserParams{ID: "prof-1", Name: "Prof", Email: "prof@uni.kz", Role: user.RoleProfessor})
	require.NoError(t, err)
	require.NoError(t, store.Users().Create(ctx, prof))

	p, err := prize.NewPrize(prize.NewPrizeParams{
		ID:        "prize-1",
		SubjectID: "subj-1",
		Name:      "Light Speed",
		Value:     shared.Points(10),
		Kind:      prize.KindAutomatic,
	})
	require.NoError(t, err)
	require.NoError(t, store.Prizes().Create(ctx, p))

	return store
}

func appendEntry(t *testing.T, store *Store, id, studentID string, at time.Time) error {
	t.Helper()
	a, err := achievement.New(id, studentID, "prize-1", at)
	require.NoError(t, err)
	return store.Achievements().Append(context.Background(), a, shared.Points(10))
}

func TestAchievementRepo_AppendBumpsTotalAtomically(t *testing.T) {
	store := newLedgerStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, appendEntry(t, store, "ach-1", "stud-1", at))
	require.NoError(t, appendEntry(t, store, "ach-2", "stud-1", at.Add(time.Hour)))

	u, err := store.Users().GetByID(ctx, "stud-1")
	require.NoError(t, err)
	assert.Equal(t, shared.Points(20), u.TotalPoints)

	entries, err := store.Achievements().ListByStudent(ctx, "stud-1")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAchievementRepo_DuplicateID(t *testing.T) {
	store := newLedgerStore(t)
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, appendEntry(t, store, "ach-1", "stud-1", at))
	err := appendEntry(t, store, "ach-1", "stud-1", at)
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestAchievementRepo_AppendRequiresStudent(t *testing.T) {
	store := newLedgerStore(t)
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	err := appendEntry(t, store, "ach-1", "no-such-user", at)
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)

	// Professors have no points to bump
	err = appendEntry(t, store, "ach-2", "prof-1", at)
	assert.ErrorIs(t, err, user.ErrNotAStudent)
}

func TestAchievementRepo_ReceivedOnSameCalendarDay(t *testing.T) {
	store := newLedgerStore(t)
	ctx := context.Background()
	morning := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, appendEntry(t, store, "ach-1", "stud-1", morning))

	got, err := store.Achievements().ReceivedOn(ctx, "stud-1", "Light Speed", morning.Add(8*time.Hour), time.UTC)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = store.Achievements().ReceivedOn(ctx, "stud-1", "Light Speed", morning.AddDate(0, 0, 1), time.UTC)
	require.NoError(t, err)
	assert.False(t, got)

	// The day boundary follows the reference timezone, not UTC
	almaty := time.FixedZone("UTC+5", 5*60*60)
	late := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC) // March 15 in UTC+5
	require.NoError(t, appendEntry(t, store, "ach-2", "stud-1", late))

	nextMorning := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	got, err = store.Achievements().ReceivedOn(ctx, "stud-1", "Light Speed", nextMorning, almaty)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestAchievementRepo_ReceivedOnMatchesByPrizeName(t *testing.T) {
	store := newLedgerStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	require.NoError(t, appendEntry(t, store, "ach-1", "stud-1", at))

	got, err := store.Achievements().ReceivedOn(ctx, "stud-1", "Best Demo", at, time.UTC)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestAchievementRepo_SumPointsByStudent(t *testing.T) {
	store := newLedgerStore(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	sum, err := store.Achievements().SumPointsByStudent(ctx, "stud-1")
	require.NoError(t, err)
	assert.Equal(t, shared.Points(0), sum)

	require.NoError(t, appendEntry(t, store, "ach-1", "stud-1", at))
	require.NoError(t, appendEntry(t, store, "ach-2", "stud-1", at.Add(time.Hour)))

	sum, err = store.Achievements().SumPointsByStudent(ctx, "stud-1")
	require.NoError(t, err)
	assert.Equal(t, shared.Points(20), sum)
}

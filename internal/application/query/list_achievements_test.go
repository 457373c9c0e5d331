package query

import (
	"context"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/achievement"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grantTestAchievement(t *testing.T, store *memory.Store, id, studentID, prizeID string, at time.Time, value int) {
	t.Helper()
	a, err := achievement.New(id, studentID, prizeID, at)
	require.NoError(t, err)
	require.NoError(t, store.Achievements().Append(context.Background(), a, shared.Points(value)))
}

func TestListAchievements_GrantOrderWithPrizeData(t *testing.T) {
	store := newCatalogStore(t)
	seedStudents(t, store, map[string]int{"stud-1": 0})

	day := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	grantTestAchievement(t, store, "ach-1", "stud-1", "prize-1", day, 15)
	grantTestAchievement(t, store, "ach-2", "stud-1", "prize-2", day.Add(2*time.Hour), 10)

	handler := NewListAchievementsHandler(store.Users(), store.Prizes(), store.Achievements())
	res, err := handler.Handle(context.Background(), ListAchievementsQuery{StudentID: "stud-1"})
	require.NoError(t, err)

	assert.Equal(t, "stud-1", res.StudentID)
	assert.Equal(t, 25, res.TotalPoints)
	require.Len(t, res.Achievements, 2)

	first := res.Achievements[0]
	assert.Equal(t, "ach-1", first.ID)
	assert.Equal(t, "Best Demo", first.PrizeName)
	assert.Equal(t, 15, first.PrizeValue)
	assert.Equal(t, "ach-2", res.Achievements[1].ID)
}

func TestListAchievements_EmptyHistory(t *testing.T) {
	store := newCatalogStore(t)
	seedStudents(t, store, map[string]int{"stud-1": 0})

	handler := NewListAchievementsHandler(store.Users(), store.Prizes(), store.Achievements())
	res, err := handler.Handle(context.Background(), ListAchievementsQuery{StudentID: "stud-1"})
	require.NoError(t, err)

	assert.Empty(t, res.Achievements)
	assert.Equal(t, 0, res.TotalPoints)
}

func TestListAchievements_StudentNotFound(t *testing.T) {
	store := newCatalogStore(t)

	handler := NewListAchievementsHandler(store.Users(), store.Prizes(), store.Achievements())
	_, err := handler.Handle(context.Background(), ListAchievementsQuery{StudentID: "no-such-user"})
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestListAchievements_MissingStudentID(t *testing.T) {
	store := newCatalogStore(t)

	handler := NewListAchievementsHandler(store.Users(), store.Prizes(), store.Achievements())
	_, err := handler.Handle(context.Background(), ListAchievementsQuery{})
	assert.Error(t, err)
}

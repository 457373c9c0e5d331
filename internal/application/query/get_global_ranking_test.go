package query

import (
	"context"
	"testing"

	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRankingCache is an in-process RankingCache double.
type fakeRankingCache struct {
	entries  []RankingEntryDTO
	getErr   error
	setCalls int
}

func (c *fakeRankingCache) GetGlobalRanking(ctx context.Context) ([]RankingEntryDTO, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries, nil
}

func (c *fakeRankingCache) SetGlobalRanking(ctx context.Context, entries []RankingEntryDTO) error {
	c.entries = entries
	c.setCalls++
	return nil
}

// seedStudents creates students with the given totals, keyed by ID.
func seedStudents(t *testing.T, store *memory.Store, totals map[string]int) {
	t.Helper()
	ctx := context.Background()
	for id, points := range totals {
		stud, err := user.NewUser(user.NewUserParams{
			ID:    id,
			Name:  "Student " + id,
			Email: id + "@uni.kz",
			Role:  user.RoleStudent,
		})
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(ctx, stud))
		require.NoError(t, store.Users().SetTotalPoints(ctx, id, shared.Points(points)))
	}
}

func TestGetGlobalRanking_OrdersByPointsThenID(t *testing.T) {
	store := memory.NewStore()
	seedStudents(t, store, map[string]int{
		"stud-a": 20,
		"stud-b": 50,
		"stud-c": 20,
	})
	handler := NewGetGlobalRankingHandler(store.Users(), nil)

	res, err := handler.Handle(context.Background(), GetGlobalRankingQuery{})
	require.NoError(t, err)

	require.Len(t, res.Entries, 3)
	assert.Equal(t, 3, res.TotalCount)
	assert.False(t, res.FromCache)

	assert.Equal(t, "stud-b", res.Entries[0].StudentID)
	assert.Equal(t, 1, res.Entries[0].Rank)
	// Equal totals resolve by student ID ascending
	assert.Equal(t, "stud-a", res.Entries[1].StudentID)
	assert.Equal(t, "stud-c", res.Entries[2].StudentID)
	assert.Equal(t, 3, res.Entries[2].Rank)
}

func TestGetGlobalRanking_Limit(t *testing.T) {
	store := memory.NewStore()
	seedStudents(t, store, map[string]int{"stud-a": 30, "stud-b": 20, "stud-c": 10})
	handler := NewGetGlobalRankingHandler(store.Users(), nil)

	res, err := handler.Handle(context.Background(), GetGlobalRankingQuery{Limit: 2})
	require.NoError(t, err)

	// Limit trims entries but TotalCount reports the whole ranking
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, 3, res.TotalCount)
	assert.Equal(t, "stud-a", res.Entries[0].StudentID)
}

func TestGetGlobalRanking_NegativeLimit(t *testing.T) {
	store := memory.NewStore()
	handler := NewGetGlobalRankingHandler(store.Users(), nil)

	_, err := handler.Handle(context.Background(), GetGlobalRankingQuery{Limit: -1})
	assert.Error(t, err)
}

func TestGetGlobalRanking_CacheHit(t *testing.T) {
	store := memory.NewStore()
	seedStudents(t, store, map[string]int{"stud-a": 30})

	cache := &fakeRankingCache{entries: []RankingEntryDTO{
		{Rank: 1, StudentID: "stud-z", Name: "Cached", TotalPoints: 99},
	}}
	handler := NewGetGlobalRankingHandler(store.Users(), cache)

	res, err := handler.Handle(context.Background(), GetGlobalRankingQuery{})
	require.NoError(t, err)

	// Stale cached data is served as-is, without touching the repository
	assert.True(t, res.FromCache)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "stud-z", res.Entries[0].StudentID)
	assert.Equal(t, 0, cache.setCalls)
}

func TestGetGlobalRanking_CacheMissFallsBackAndRefills(t *testing.T) {
	store := memory.NewStore()
	seedStudents(t, store, map[string]int{"stud-a": 30, "stud-b": 10})

	cache := &fakeRankingCache{getErr: shared.ErrNotFound}
	handler := NewGetGlobalRankingHandler(store.Users(), cache)

	res, err := handler.Handle(context.Background(), GetGlobalRankingQuery{})
	require.NoError(t, err)

	assert.False(t, res.FromCache)
	assert.Len(t, res.Entries, 2)
	assert.Equal(t, 1, cache.setCalls)
	assert.Len(t, cache.entries, 2)
}

package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/internal/application/query"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/internal/infrastructure/persistence/memory"
	"github.com/eduscrum/awards/pkg/circuitbreaker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyRankingCache fails the first N writes, then succeeds.
type flakyRankingCache struct {
	failures int
	calls    int
	entries  []query.RankingEntryDTO
}

func (c *flakyRankingCache) GetGlobalRanking(context.Context) ([]query.RankingEntryDTO, error) {
	return nil, errors.New("not implemented")
}

func (c *flakyRankingCache) SetGlobalRanking(_ context.Context, entries []query.RankingEntryDTO) error {
	c.calls++
	if c.calls <= c.failures {
		return errors.New("cache write timeout")
	}
	c.entries = entries
	return nil
}

// failingUserRepo fails every ranking read. The embedded interface is
// nil: any other method call panics, which is fine for these tests.
type failingUserRepo struct {
	user.Repository
}

func (failingUserRepo) ListStudentsByPoints(context.Context) ([]*user.User, error) {
	return nil, errors.New("connection refused")
}

func newStoreWithStudents(t *testing.T) *memory.Store {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	for _, p := range []struct {
		id, name, email string
	}{
		{"stud-1", "Aida", "aida@uni.kz"},
		{"stud-2", "Bekzat", "bekzat@uni.kz"},
	} {
		u, err := user.NewUser(user.NewUserParams{ID: p.id, Name: p.name, Email: p.email, Role: user.RoleStudent})
		require.NoError(t, err)
		require.NoError(t, store.Users().Create(ctx, u))
	}

	return store
}

func TestRefreshRankingCacheJob_WritesSnapshot(t *testing.T) {
	store := newStoreWithStudents(t)
	cache := &flakyRankingCache{}

	job := NewRefreshRankingCacheJob(store.Users(), cache, nil, DefaultRefreshRankingCacheConfig())
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, cache.entries, 2)
	assert.Equal(t, 1, cache.entries[0].Rank)

	stats := job.LastRefreshStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Students)
}

func TestRefreshRankingCacheJob_RetriesTransientCacheWrite(t *testing.T) {
	store := newStoreWithStudents(t)
	cache := &flakyRankingCache{failures: 1}

	job := NewRefreshRankingCacheJob(store.Users(), cache, nil, DefaultRefreshRankingCacheConfig())
	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 2, cache.calls)
	assert.Len(t, cache.entries, 2)
}

func TestRefreshRankingCacheJob_GivesUpAfterCacheRetries(t *testing.T) {
	store := newStoreWithStudents(t)
	cache := &flakyRankingCache{failures: 10}

	job := NewRefreshRankingCacheJob(store.Users(), cache, nil, DefaultRefreshRankingCacheConfig())
	err := job.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking cache")
	assert.Equal(t, 2, cache.calls)
}

func TestRecomputeTotalsJob_ReconcilesDriftedTotal(t *testing.T) {
	store := newStoreWithStudents(t)
	ctx := context.Background()

	// Drift the cached total away from the (empty) ledger
	require.NoError(t, store.Users().SetTotalPoints(ctx, "stud-1", shared.Points(40)))

	handler := command.NewRecomputePointsHandler(store.Users(), store.Achievements())
	job := NewRecomputeTotalsJob(handler, nil, DefaultRecomputeTotalsConfig())
	require.NoError(t, job.Run(ctx))

	stats := job.LastRunStats()
	require.NotNil(t, stats)
	assert.Equal(t, 2, stats.Checked)
	assert.Equal(t, 1, stats.DriftsFound)
	assert.True(t, stats.Repaired)

	u, err := store.Users().GetByID(ctx, "stud-1")
	require.NoError(t, err)
	assert.Equal(t, shared.Points(0), u.TotalPoints)
}

func TestRecomputeTotalsJob_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	handler := command.NewRecomputePointsHandler(failingUserRepo{}, memory.NewStore().Achievements())
	job := NewRecomputeTotalsJob(handler, nil, DefaultRecomputeTotalsConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, job.Run(ctx))
	}

	// The database breaker trips after three consecutive failures and
	// short-circuits the next run without touching the repository
	err := job.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
}

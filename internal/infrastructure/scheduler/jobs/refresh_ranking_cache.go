// Package jobs contains implementations of scheduled jobs for EduScrum Awards.
// Each job keeps derived data (point totals, ranking caches) consistent with
// the achievement ledger, which is the source of truth for points.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eduscrum/awards/internal/application/query"
	"github.com/eduscrum/awards/internal/domain/user"
	"github.com/eduscrum/awards/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH RANKING CACHE JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshRankingCacheJob rebuilds the global ranking cache from the database.
// The ranking query serves from this cache on the hot path; this job keeps the
// cached snapshot warm so student-facing reads rarely hit PostgreSQL.
type RefreshRankingCacheJob struct {
	// Dependencies
	userRepo user.Repository
	cache    query.RankingCache
	logger   *slog.Logger

	// Configuration
	config RefreshRankingCacheConfig

	// State (for metrics)
	lastRefreshStats atomic.Value // *RefreshStats
}

// RefreshRankingCacheConfig contains configuration for the refresh job.
type RefreshRankingCacheConfig struct {
	// Timeout is the maximum duration for a single refresh run.
	Timeout time.Duration

	// RetryAttempts is the number of attempts for the database read.
	RetryAttempts int
}

// DefaultRefreshRankingCacheConfig returns sensible defaults.
func DefaultRefreshRankingCacheConfig() RefreshRankingCacheConfig {
	return RefreshRankingCacheConfig{
		Timeout:       time.Minute,
		RetryAttempts: 3,
	}
}

// RefreshStats contains statistics from a refresh run.
type RefreshStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Students    int
	TotalPoints int
}

// NewRefreshRankingCacheJob creates a new refresh job.
func NewRefreshRankingCacheJob(
	userRepo user.Repository,
	cache query.RankingCache,
	logger *slog.Logger,
	config RefreshRankingCacheConfig,
) *RefreshRankingCacheJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &RefreshRankingCacheJob{
		userRepo: userRepo,
		cache:    cache,
		logger:   logger,
		config:   config,
	}
}

// Name returns the job name.
func (j *RefreshRankingCacheJob) Name() string {
	return "refresh_ranking_cache"
}

// Description returns a human-readable description.
func (j *RefreshRankingCacheJob) Description() string {
	return "Rebuilds the cached global student ranking from the database"
}

// Run executes the refresh job.
func (j *RefreshRankingCacheJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	students, err := retry.DoWithData(ctx, func(ctx context.Context) ([]*user.User, error) {
		list, err := j.userRepo.ListStudentsByPoints(ctx)
		if err != nil {
			return nil, retry.Retryable(err)
		}
		return list, nil
	}, retry.WithMaxAttempts(j.config.RetryAttempts))
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	entries := make([]query.RankingEntryDTO, len(students))
	totalPoints := 0
	for i, s := range students {
		entries[i] = query.RankingEntryDTO{
			Rank:        i + 1,
			StudentID:   s.ID,
			Name:        s.Name,
			TotalPoints: s.TotalPoints.Int(),
		}
		totalPoints += s.TotalPoints.Int()
	}

	// The cache write uses the short cache retry policy: one quick retry,
	// then give up and let the next tick rebuild the snapshot.
	err = retry.CacheRetrier().Do(ctx, func(ctx context.Context) error {
		if err := j.cache.SetGlobalRanking(ctx, entries); err != nil {
			return retry.Retryable(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write ranking cache: %w", err)
	}

	stats := &RefreshStats{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Students:    len(entries),
		TotalPoints: totalPoints,
	}
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRefreshStats.Store(stats)

	j.logger.Info("ranking cache refreshed",
		"students", stats.Students,
		"total_points", stats.TotalPoints,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastRefreshStats returns statistics from the last refresh.
func (j *RefreshRankingCacheJob) LastRefreshStats() *RefreshStats {
	stats := j.lastRefreshStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RefreshStats)
}

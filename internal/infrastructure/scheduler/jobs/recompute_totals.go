package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eduscrum/awards/internal/application/command"
	"github.com/eduscrum/awards/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMPUTE TOTALS JOB
// ══════════════════════════════════════════════════════════════════════════════

// RecomputeTotalsJob recomputes every student's point total from the
// achievement ledger and repairs drifted totals. The ledger is the source of
// truth; the per-user total is a cached sum maintained on each grant, and this
// job is the safety net that reconciles the two.
type RecomputeTotalsJob struct {
	// Dependencies
	recompute *command.RecomputePointsHandler
	logger    *slog.Logger

	// breaker trips after repeated database failures so an unhealthy
	// database is not hammered by a full-table reconciliation every run.
	breaker *circuitbreaker.CircuitBreaker

	// Configuration
	config RecomputeTotalsConfig

	// State (for metrics)
	lastRunStats atomic.Value // *RecomputeStats
}

// RecomputeTotalsConfig contains configuration for the recompute job.
type RecomputeTotalsConfig struct {
	// DryRun reports drift without writing corrected totals.
	DryRun bool

	// Timeout is the maximum duration for a single run.
	Timeout time.Duration
}

// DefaultRecomputeTotalsConfig returns sensible defaults.
func DefaultRecomputeTotalsConfig() RecomputeTotalsConfig {
	return RecomputeTotalsConfig{
		DryRun:  false,
		Timeout: 5 * time.Minute,
	}
}

// RecomputeStats contains statistics from a recompute run.
type RecomputeStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Checked     int
	DriftsFound int
	Repaired    bool
}

// NewRecomputeTotalsJob creates a new recompute job.
func NewRecomputeTotalsJob(
	recompute *command.RecomputePointsHandler,
	logger *slog.Logger,
	config RecomputeTotalsConfig,
) *RecomputeTotalsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecomputeTotalsJob{
		recompute: recompute,
		logger:    logger,
		breaker:   circuitbreaker.DatabaseBreaker(nil),
		config:    config,
	}
}

// Name returns the job name.
func (j *RecomputeTotalsJob) Name() string {
	return "recompute_totals"
}

// Description returns a human-readable description.
func (j *RecomputeTotalsJob) Description() string {
	return "Reconciles cached student point totals against the achievement ledger"
}

// Run executes the recompute job.
func (j *RecomputeTotalsJob) Run(ctx context.Context) error {
	startedAt := time.Now()

	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	var result *command.RecomputePointsResult
	err := j.breaker.Execute(ctx, func(ctx context.Context) error {
		var handleErr error
		result, handleErr = j.recompute.Handle(ctx, command.RecomputePointsCommand{
			DryRun: j.config.DryRun,
		})
		return handleErr
	})
	if err != nil {
		return fmt.Errorf("failed to recompute totals: %w", err)
	}

	stats := &RecomputeStats{
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Checked:     result.Checked,
		DriftsFound: len(result.Drifts),
		Repaired:    result.Repaired,
	}
	stats.Duration = stats.CompletedAt.Sub(stats.StartedAt)
	j.lastRunStats.Store(stats)

	for _, drift := range result.Drifts {
		j.logger.Warn("point total drift detected",
			"student_id", drift.StudentID,
			"cached", drift.Cached.Int(),
			"actual", drift.Actual.Int(),
			"repaired", result.Repaired,
		)
	}

	j.logger.Info("recompute_totals job completed",
		"checked", stats.Checked,
		"drifts", stats.DriftsFound,
		"repaired", stats.Repaired,
		"duration", stats.Duration.String(),
	)

	return nil
}

// LastRunStats returns statistics from the last run.
func (j *RecomputeTotalsJob) LastRunStats() *RecomputeStats {
	stats := j.lastRunStats.Load()
	if stats == nil {
		return nil
	}
	return stats.(*RecomputeStats)
}

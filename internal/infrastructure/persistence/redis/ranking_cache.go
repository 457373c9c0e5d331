package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/eduscrum/awards/internal/application/query"
	"github.com/eduscrum/awards/internal/domain/shared"
	"github.com/eduscrum/awards/pkg/circuitbreaker"
	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrRankingEmpty is returned when the ranking has no entries.
	ErrRankingEmpty = errors.New("ranking_cache: ranking is empty")

	// ErrStudentNotRanked is returned when a student is not in the ranking.
	ErrStudentNotRanked = errors.New("ranking_cache: student not in ranking")
)

// ══════════════════════════════════════════════════════════════════════════════
// RANKING CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RankingCache caches the global student ranking in Redis.
//
// Architecture:
//   - String "ranking:global" stores the full ordered ranking as JSON.
//     The snapshot preserves the exact ordering rules (points descending,
//     id ascending on ties), which a sorted set alone cannot guarantee.
//   - Sorted Set "ranking:points" stores studentID -> points for
//     O(log N) individual rank and score lookups.
//   - String "ranking:meta" stores refresh metadata.
//
// The cache is a read model: stale but internally consistent data is
// acceptable and entries expire after TTLRankingCache. Access goes
// through a circuit breaker so that a dead Redis degrades to database
// reads instead of adding a timeout to every ranking request.
type RankingCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// Key patterns for the ranking cache.
var (
	keyRankingGlobal = RankingKey("global")
	keyRankingPoints = RankingKey("points")
	keyRankingMeta   = RankingKey("meta")
)

// RankingMeta contains metadata about the cached ranking.
type RankingMeta struct {
	RefreshedAt   time.Time `json:"refreshed_at"`
	TotalStudents int       `json:"total_students"`
	TotalPoints   int64     `json:"total_points"`
}

// NewRankingCache creates a new RankingCache instance.
func NewRankingCache(cache *Cache) *RankingCache {
	return &RankingCache{
		cache:   cache,
		breaker: circuitbreaker.CacheBreaker(nil),
	}
}

// compile-time check: RankingCache is usable by the ranking query
var _ query.RankingCache = (*RankingCache)(nil)

// ─────────────────────────────────────────────────────────────────────────────
// Write Operations
// ─────────────────────────────────────────────────────────────────────────────

// SetGlobalRanking replaces the cached ranking with a fresh snapshot.
func (r *RankingCache) SetGlobalRanking(ctx context.Context, entries []query.RankingEntryDTO) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("ranking_cache: failed to marshal ranking: %w", err)
	}

	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		pipe := r.cache.Client().TxPipeline()

		pipe.Set(ctx, keyRankingGlobal, data, TTLRankingCache)

		// Rebuild the score set alongside the snapshot
		pipe.Del(ctx, keyRankingPoints)
		if len(entries) > 0 {
			zMembers := make([]redis.Z, 0, len(entries))
			var totalPoints int64
			for _, e := range entries {
				zMembers = append(zMembers, redis.Z{
					Score:  float64(e.TotalPoints),
					Member: e.StudentID,
				})
				totalPoints += int64(e.TotalPoints)
			}
			pipe.ZAdd(ctx, keyRankingPoints, zMembers...)
			pipe.Expire(ctx, keyRankingPoints, TTLRankingCache)

			meta := RankingMeta{
				RefreshedAt:   time.Now().UTC(),
				TotalStudents: len(entries),
				TotalPoints:   totalPoints,
			}
			metaData, _ := json.Marshal(meta)
			pipe.Set(ctx, keyRankingMeta, metaData, TTLRankingCache)
		}

		_, err := pipe.Exec(ctx)
		return err
	})
}

// Invalidate removes all cached ranking data.
func (r *RankingCache) Invalidate(ctx context.Context) error {
	return r.cache.Delete(ctx, keyRankingGlobal, keyRankingPoints, keyRankingMeta)
}

// ─────────────────────────────────────────────────────────────────────────────
// Read Operations
// ─────────────────────────────────────────────────────────────────────────────

// GetGlobalRanking returns the cached ranking snapshot.
// Returns shared.ErrNotFound on a cache miss or while the breaker is
// open, so callers fall back to the database.
func (r *RankingCache) GetGlobalRanking(ctx context.Context) ([]query.RankingEntryDTO, error) {
	var data string
	var miss bool

	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		d, err := r.cache.GetString(ctx, keyRankingGlobal)
		if errors.Is(err, ErrCacheMiss) {
			// A miss is a healthy answer from Redis
			miss = true
			return nil
		}
		if err != nil {
			return err
		}
		data = d
		return nil
	})
	if err != nil {
		if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if miss {
		return nil, shared.ErrNotFound
	}

	var entries []query.RankingEntryDTO
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		return nil, fmt.Errorf("ranking_cache: failed to unmarshal ranking: %w", err)
	}

	return entries, nil
}

// GetRank returns the cached rank (1-based) of a student. The rank comes
// from the score set; for students with equal points it may differ by the
// tie-break from the snapshot, so it is an approximation for display.
func (r *RankingCache) GetRank(ctx context.Context, studentID string) (int64, error) {
	rank, err := r.cache.Client().ZRevRank(ctx, keyRankingPoints, studentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrStudentNotRanked
		}
		return 0, err
	}
	return rank + 1, nil
}

// GetPoints returns the cached points of a student.
func (r *RankingCache) GetPoints(ctx context.Context, studentID string) (int64, error) {
	score, err := r.cache.Client().ZScore(ctx, keyRankingPoints, studentID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrStudentNotRanked
		}
		return 0, err
	}
	return int64(score), nil
}

// GetMeta returns the refresh metadata of the cached ranking.
func (r *RankingCache) GetMeta(ctx context.Context) (*RankingMeta, error) {
	data, err := r.cache.GetString(ctx, keyRankingMeta)
	if err != nil {
		return nil, err
	}

	var meta RankingMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Exists reports whether a ranking snapshot is currently cached.
func (r *RankingCache) Exists(ctx context.Context) (bool, error) {
	return r.cache.Exists(ctx, keyRankingGlobal)
}

package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func failN(n int) func(context.Context) error {
	calls := 0
	return func(context.Context) error {
		calls++
		if calls <= n {
			return errBoom
		}
		return nil
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failN(100)), errBoom)
	}

	require.Equal(t, StateOpen, cb.State())

	// Open circuit short-circuits without calling the function
	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithTimeout(5*time.Millisecond),
	)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failN(100)))
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(10 * time.Millisecond)

	require.NoError(t, cb.Execute(ctx, func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := New("test",
		WithFailureThreshold(1),
		WithTimeout(5*time.Millisecond),
	)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failN(100)))
	time.Sleep(10 * time.Millisecond)

	require.Error(t, cb.Execute(ctx, failN(100)))
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureStreak(t *testing.T) {
	cb := New("test", WithFailureThreshold(3))
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failN(100)))
	require.Error(t, cb.Execute(ctx, failN(100)))
	require.NoError(t, cb.Execute(ctx, func(context.Context) error { return nil }))
	require.Error(t, cb.Execute(ctx, failN(100)))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_ExecuteWithFallback(t *testing.T) {
	cb := New("test", WithFailureThreshold(1))
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failN(100)))

	err := cb.ExecuteWithFallback(ctx,
		func(context.Context) error { return nil },
		func(error) error { return nil },
	)
	assert.NoError(t, err)
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	var transitions []string
	cb := New("test",
		WithFailureThreshold(1),
		WithOnStateChange(func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)

	require.Error(t, cb.Execute(context.Background(), failN(100)))
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestDatabaseBreaker_TripsAfterThreeFailures(t *testing.T) {
	cb := DatabaseBreaker(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(ctx, failN(100)), errBoom)
	}

	assert.True(t, cb.IsOpen())
	assert.ErrorIs(t, cb.Execute(ctx, failN(100)), ErrCircuitOpen)
}

func TestCacheBreaker_Reset(t *testing.T) {
	cb := CacheBreaker(nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(ctx, failN(100)))
	}
	require.True(t, cb.IsOpen())

	cb.Reset()
	assert.True(t, cb.IsClosed())
	assert.NoError(t, cb.Execute(ctx, func(context.Context) error { return nil }))
}

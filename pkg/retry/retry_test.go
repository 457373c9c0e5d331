package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetrier(attempts int) *Retrier {
	return New(
		WithMaxAttempts(attempts),
		WithInitialDelay(time.Millisecond),
		WithMaxDelay(5*time.Millisecond),
		WithJitter(0),
	)
}

func TestDo_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return Retryable(errors.New("transient"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_DoesNotRetryPlainErrors(t *testing.T) {
	calls := 0
	plain := errors.New("plain")
	err := fastRetrier(3).Do(context.Background(), func(context.Context) error {
		calls++
		return plain
	})

	assert.ErrorIs(t, err, plain)
	assert.Equal(t, 1, calls)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	inner := errors.New("bad input")
	err := fastRetrier(5).Do(context.Background(), func(context.Context) error {
		calls++
		return Permanent(inner)
	})

	assert.Equal(t, inner, err)
	assert.Equal(t, 1, calls)
}

func TestDo_UnwrapsRetryableOnLastAttempt(t *testing.T) {
	inner := errors.New("still down")
	err := fastRetrier(2).Do(context.Background(), func(context.Context) error {
		return Retryable(inner)
	})

	assert.Equal(t, inner, err)
}

func TestDo_CustomRetryIf(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	},
		WithMaxAttempts(3),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(error) bool { return true }),
	)

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestDo_CancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := fastRetrier(5).Do(ctx, func(context.Context) error {
		calls++
		cancel()
		return Retryable(errors.New("transient"))
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoWithData_ReturnsResult(t *testing.T) {
	calls := 0
	got, err := DoWithData(context.Background(), func(context.Context) (int, error) {
		calls++
		if calls < 2 {
			return 0, Retryable(errors.New("transient"))
		}
		return 42, nil
	}, WithMaxAttempts(3), WithInitialDelay(time.Millisecond))

	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestPresetRetriers(t *testing.T) {
	for name, r := range map[string]*Retrier{
		"cache":    CacheRetrier(),
		"database": DatabaseRetrier(),
	} {
		calls := 0
		err := r.Do(context.Background(), func(context.Context) error {
			calls++
			if calls < 2 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		require.NoError(t, err, name)
		assert.Equal(t, 2, calls, name)
	}
}

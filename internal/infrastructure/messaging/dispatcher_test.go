package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *InMemoryEventBus) {
	t.Helper()

	bus := newSyncBus()
	t.Cleanup(func() { _ = bus.Close() })

	config := DefaultDispatcherConfig(bus)
	config.RetryConfig.InitialBackoff = time.Millisecond
	config.RetryConfig.MaxBackoff = 5 * time.Millisecond

	d := NewDispatcher(config)
	t.Cleanup(func() { _ = d.Stop() })

	return d, bus
}

func sprintEvent() shared.Event {
	return shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())
}

func TestDispatcher_DeliversViaEventBus(t *testing.T) {
	d, bus := newTestDispatcher(t)

	var got []shared.Event
	require.NoError(t, d.RegisterHandler(shared.EventSprintCompleted, HandlerRegistration{
		Name: "recorder",
		Handler: func(e shared.Event) error {
			got = append(got, e)
			return nil
		},
	}))
	require.NoError(t, d.Start())

	require.NoError(t, bus.Publish(sprintEvent()))

	require.Len(t, got, 1)
	assert.Equal(t, "sprint-1", got[0].AggregateID())
}

func TestDispatcher_RetriesUntilSuccess(t *testing.T) {
	d, _ := newTestDispatcher(t)

	attempts := 0
	require.NoError(t, d.RegisterHandler(shared.EventSprintCompleted, HandlerRegistration{
		Name:       "flaky",
		MaxRetries: 3,
		Handler: func(shared.Event) error {
			attempts++
			if attempts < 3 {
				return errors.New("transient")
			}
			return nil
		},
	}))

	require.NoError(t, d.Dispatch(sprintEvent()))
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int64(1), d.Metrics().Snapshot().TotalRetries)
}

func TestDispatcher_ExhaustedRetriesGoToDeadLetterQueue(t *testing.T) {
	d, _ := newTestDispatcher(t)

	attempts := 0
	require.NoError(t, d.RegisterHandler(shared.EventSprintCompleted, HandlerRegistration{
		Name:       "broken",
		MaxRetries: 2,
		Handler: func(shared.Event) error {
			attempts++
			return errors.New("permanent")
		},
	}))

	err := d.Dispatch(sprintEvent())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)

	require.Equal(t, 1, d.DeadLetterQueue().Size())
	entry, ok := d.DeadLetterQueue().Pop()
	require.True(t, ok)
	assert.Equal(t, "broken", entry.HandlerName)
	assert.Equal(t, 3, entry.Attempts)
	assert.Equal(t, "sprint-1", entry.Event.AggregateID())
}

func TestDispatcher_RecoveryMiddlewareTurnsPanicIntoError(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Use(RecoveryMiddleware(d.logger))

	require.NoError(t, d.RegisterHandler(shared.EventSprintCompleted, HandlerRegistration{
		Name:       "panicky",
		MaxRetries: 1,
		Handler: func(shared.Event) error {
			panic("boom")
		},
	}))

	err := d.Dispatch(sprintEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler panic")
}

func TestDispatcher_NoHandlersIsNoop(t *testing.T) {
	d, _ := newTestDispatcher(t)
	require.NoError(t, d.Dispatch(sprintEvent()))
}

func TestDispatcher_RejectsNilHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)
	err := d.RegisterHandler(shared.EventSprintCompleted, HandlerRegistration{Name: "nil"})
	require.Error(t, err)
}

func TestDeadLetterQueue_EvictsOldestAtCapacity(t *testing.T) {
	q := NewDeadLetterQueue(2)

	q.Add(DeadLetterEntry{HandlerName: "first"})
	q.Add(DeadLetterEntry{HandlerName: "second"})
	q.Add(DeadLetterEntry{HandlerName: "third"})

	require.Equal(t, 2, q.Size())
	entries := q.Entries()
	assert.Equal(t, "second", entries[0].HandlerName)
	assert.Equal(t, "third", entries[1].HandlerName)
}

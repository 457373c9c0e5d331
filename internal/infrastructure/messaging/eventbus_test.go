package messaging

import (
	"errors"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncBus() *InMemoryEventBus {
	config := DefaultInMemoryEventBusConfig()
	config.AsyncMode = false
	return NewInMemoryEventBus(config)
}

func TestInMemoryEventBus_DeliversToSubscribers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	var got []shared.Event
	err := bus.Subscribe(shared.EventSprintCompleted, func(e shared.Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	event := shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())
	require.NoError(t, bus.Publish(event))

	require.Len(t, got, 1)
	assert.Equal(t, "sprint-1", got[0].AggregateID())
}

func TestInMemoryEventBus_FiltersByEventType(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.Subscribe(shared.EventAchievementGranted, func(shared.Event) error {
		calls++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())))
	assert.Equal(t, 0, calls)
}

func TestInMemoryEventBus_SubscribeAll(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	calls := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		calls++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())))
	require.NoError(t, bus.Publish(shared.NewAchievementGrantedEvent("ach-1", "stud-1", "prize-1", "Best Demo", 15, 15, false)))
	assert.Equal(t, 2, calls)
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	second := false
	require.NoError(t, bus.Subscribe(shared.EventSprintCompleted, func(shared.Event) error {
		return errors.New("boom")
	}))
	require.NoError(t, bus.Subscribe(shared.EventSprintCompleted, func(shared.Event) error {
		second = true
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())))
	assert.True(t, second)
}

func TestInMemoryEventBus_ClosedBusRejectsOperations(t *testing.T) {
	bus := newSyncBus()
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	err = bus.Subscribe(shared.EventSprintCompleted, func(shared.Event) error { return nil })
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

func TestInMemoryEventBus_Metrics(t *testing.T) {
	bus := newSyncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventSprintCompleted, func(shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())))

	snapshot := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snapshot.TotalPublished)
	assert.Equal(t, int64(1), snapshot.TotalHandlerExecs)
	assert.Equal(t, 1.0, snapshot.HandlerSuccessRate)
}

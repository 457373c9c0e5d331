package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/eduscrum/awards/internal/domain/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedisClient captures published payloads and lets tests inject
// incoming pub/sub messages.
type fakeRedisClient struct {
	mu        sync.Mutex
	published []string
	incoming  chan RedisMessage
}

func newFakeRedisClient() *fakeRedisClient {
	return &fakeRedisClient{incoming: make(chan RedisMessage, 8)}
}

func (c *fakeRedisClient) Publish(_ context.Context, _ string, message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, message.(string))
	return nil
}

func (c *fakeRedisClient) Subscribe(context.Context, ...string) (<-chan RedisMessage, error) {
	return c.incoming, nil
}

func (c *fakeRedisClient) Close() error { return nil }

func (c *fakeRedisClient) payloads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.published...)
}

func newTestRedisBus(t *testing.T, client *fakeRedisClient) *RedisEventBus {
	t.Helper()

	localConfig := DefaultInMemoryEventBusConfig()
	localConfig.AsyncMode = false

	bus, err := NewRedisEventBus(RedisEventBusConfig{
		Client:         client,
		InstanceID:     "node-a",
		LocalBusConfig: localConfig,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestRedisEventBus_PublishWritesEnvelopeAndDeliversLocally(t *testing.T) {
	client := newFakeRedisClient()
	bus := newTestRedisBus(t, client)

	var got []shared.Event
	require.NoError(t, bus.Subscribe(shared.EventSprintCompleted, func(e shared.Event) error {
		got = append(got, e)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC())))

	// Local subscriber gets the event directly, without Redis
	require.Len(t, got, 1)
	assert.Equal(t, "sprint-1", got[0].AggregateID())

	payloads := client.payloads()
	require.Len(t, payloads, 1)

	var envelope eventEnvelope
	require.NoError(t, json.Unmarshal([]byte(payloads[0]), &envelope))
	assert.Equal(t, "node-a", envelope.InstanceID)
	assert.Equal(t, shared.EventSprintCompleted, envelope.EventType)
	assert.Equal(t, "sprint-1", envelope.AggregateID)
}

func TestRedisEventBus_DeliversRemoteEvents(t *testing.T) {
	client := newFakeRedisClient()
	bus := newTestRedisBus(t, client)

	received := make(chan shared.Event, 1)
	require.NoError(t, bus.Subscribe(shared.EventSprintCompleted, func(e shared.Event) error {
		received <- e
		return nil
	}))

	envelope := eventEnvelope{
		InstanceID:  "node-b",
		EventType:   shared.EventSprintCompleted,
		AggregateID: "sprint-remote",
		OccurredAt:  time.Now().UTC(),
		Payload:     map[string]interface{}{"project_id": "proj-1"},
	}
	data, err := json.Marshal(envelope)
	require.NoError(t, err)
	client.incoming <- RedisMessage{Channel: "test", Payload: string(data)}

	select {
	case e := <-received:
		assert.Equal(t, "sprint-remote", e.AggregateID())
		assert.Equal(t, shared.EventSprintCompleted, e.EventType())
		assert.Equal(t, "proj-1", e.Payload()["project_id"])
	case <-time.After(time.Second):
		t.Fatal("remote event was not delivered")
	}
}

func TestRedisEventBus_FiltersOwnEvents(t *testing.T) {
	client := newFakeRedisClient()
	bus := newTestRedisBus(t, client)

	received := make(chan shared.Event, 2)
	require.NoError(t, bus.SubscribeAll(func(e shared.Event) error {
		received <- e
		return nil
	}))

	// An event carrying our own instance_id was already handled locally
	// on publish and must be dropped when it comes back from Redis
	own, err := json.Marshal(eventEnvelope{
		InstanceID:  "node-a",
		EventType:   shared.EventSprintCompleted,
		AggregateID: "sprint-own",
		OccurredAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	remote, err := json.Marshal(eventEnvelope{
		InstanceID:  "node-b",
		EventType:   shared.EventSprintCompleted,
		AggregateID: "sprint-remote",
		OccurredAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	client.incoming <- RedisMessage{Payload: string(own)}
	client.incoming <- RedisMessage{Payload: string(remote)}

	select {
	case e := <-received:
		// Messages are handled in order, so our own one would arrive first
		assert.Equal(t, "sprint-remote", e.AggregateID())
	case <-time.After(time.Second):
		t.Fatal("remote event was not delivered")
	}
}

func TestRedisEventBus_ClosedBusRejectsPublish(t *testing.T) {
	client := newFakeRedisClient()
	bus := newTestRedisBus(t, client)

	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewSprintCompletedEvent("sprint-1", "proj-1", time.Now().UTC()))
	assert.ErrorIs(t, err, ErrEventBusClosed)
}

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/events"
)

type fakeClient struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
	fail     bool
}

func (f *fakeClient) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, data)
	return nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) snapshot() ([][]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.messages...), f.closed
}

func TestHubBroadcastsSubscribedEvents(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	good := &fakeClient{}
	bad := &fakeClient{fail: true}
	hub.Register(good)
	hub.Register(bad)

	dispatcher := events.NewInMemoryDispatcher(nil)
	hub.Subscribe(dispatcher)
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "e1", Type: events.EventWorkItemQueued, WorkItemID: "W1"}))
	require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: "e2", Type: events.EventCapacityReleased}))

	assert.Eventually(t, func() bool {
		msgs, _ := good.snapshot()
		_, closed := bad.snapshot()
		return len(msgs) == 1 && closed
	}, time.Second, 5*time.Millisecond)

	msgs, _ := good.snapshot()
	var got map[string]any
	require.NoError(t, json.Unmarshal(msgs[0], &got))
	assert.Equal(t, "work_item.queued", got["type"])
	assert.Equal(t, "W1", got["work_item_id"])

	cancel()
	assert.Eventually(t, func() bool {
		_, closed := good.snapshot()
		return closed
	}, time.Second, 5*time.Millisecond)
}

func TestHubRegisterAfterStopClosesClient(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	late := &fakeClient{}
	hub.Register(late)
	hub.Unregister(late)
	_, closed := late.snapshot()
	assert.True(t, closed)
}

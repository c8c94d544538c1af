package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/service"
)

type MockPasser struct {
	calls          int64
	RedrawPassFunc func(ctx context.Context, batch int) (service.RedrawSummary, error)
}

func (m *MockPasser) RedrawPass(ctx context.Context, batch int) (service.RedrawSummary, error) {
	atomic.AddInt64(&m.calls, 1)
	if m.RedrawPassFunc != nil {
		return m.RedrawPassFunc(ctx, batch)
	}
	return service.RedrawSummary{}, nil
}

func (m *MockPasser) Calls() int64 { return atomic.LoadInt64(&m.calls) }

type MockLease struct {
	AcquireFunc func(ctx context.Context) (bool, error)
	released    int64
}

func (m *MockLease) Acquire(ctx context.Context) (bool, error) { return m.AcquireFunc(ctx) }

func (m *MockLease) Release(context.Context) error {
	atomic.AddInt64(&m.released, 1)
	return nil
}

func TestRedrawWorkerWakesOnCapacityReleased(t *testing.T) {
	passer := &MockPasser{}
	w := NewRedrawWorker(RedrawWorkerDependencies{Queue: passer, Interval: time.Hour, Batch: 10})
	dispatcher := events.NewInMemoryDispatcher(nil)
	StartEventSubscribers(dispatcher, nil, w)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: events.EventCapacityReleased}))
	assert.Eventually(t, func() bool { return passer.Calls() == 1 }, time.Second, 5*time.Millisecond)
}

func TestRedrawWorkerRunsOnInterval(t *testing.T) {
	passer := &MockPasser{}
	w := NewRedrawWorker(RedrawWorkerDependencies{Queue: passer, Interval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	assert.Eventually(t, func() bool { return passer.Calls() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestRedrawWorkerCoalescesWakeups(t *testing.T) {
	w := NewRedrawWorker(RedrawWorkerDependencies{Queue: &MockPasser{}})
	for i := 0; i < 10; i++ {
		w.Wake()
	}
	assert.Len(t, w.wake, 1)
}

func TestRedrawWorkerRespectsLease(t *testing.T) {
	passer := &MockPasser{RedrawPassFunc: func(_ context.Context, batch int) (service.RedrawSummary, error) {
		return service.RedrawSummary{Examined: batch}, nil
	}}

	held := &MockLease{AcquireFunc: func(context.Context) (bool, error) { return false, nil }}
	w := NewRedrawWorker(RedrawWorkerDependencies{Queue: passer, Lease: held, Batch: 7})
	_, ran, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ran)
	assert.Zero(t, passer.Calls())
	assert.Zero(t, atomic.LoadInt64(&held.released))

	free := &MockLease{AcquireFunc: func(context.Context) (bool, error) { return true, nil }}
	w = NewRedrawWorker(RedrawWorkerDependencies{Queue: passer, Lease: free, Batch: 7})
	summary, ran, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 7, summary.Examined)
	assert.EqualValues(t, 1, atomic.LoadInt64(&free.released))

	broken := &MockLease{AcquireFunc: func(context.Context) (bool, error) { return false, errors.New("redis down") }}
	w = NewRedrawWorker(RedrawWorkerDependencies{Queue: passer, Lease: broken})
	_, _, err = w.RunOnce(context.Background())
	assert.Error(t, err)
}

package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/service"
)

// RedrawPasser runs one bounded redraw pass.
type RedrawPasser interface {
	RedrawPass(ctx context.Context, batch int) (service.RedrawSummary, error)
}

// RedrawWorker redraws the queue on a fixed interval and whenever capacity is
// released. Wake-ups that arrive during a pass collapse into one follow-up pass.
type RedrawWorker struct {
	queue    RedrawPasser
	lease    Lease
	interval time.Duration
	batch    int
	logger   *zap.Logger
	wake     chan struct{}
	mu       sync.Mutex
}

// RedrawWorkerDependencies bundles collaborators. A nil Lease runs every pass.
type RedrawWorkerDependencies struct {
	Queue    RedrawPasser
	Lease    Lease
	Interval time.Duration
	Batch    int
	Logger   *zap.Logger
}

// NewRedrawWorker creates the worker.
func NewRedrawWorker(deps RedrawWorkerDependencies) *RedrawWorker {
	w := &RedrawWorker{
		queue:    deps.Queue,
		lease:    deps.Lease,
		interval: deps.Interval,
		batch:    deps.Batch,
		logger:   deps.Logger,
		wake:     make(chan struct{}, 1),
	}
	if w.lease == nil {
		w.lease = localLease{}
	}
	if w.interval <= 0 {
		w.interval = 15 * time.Second
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Wake requests a pass without blocking.
func (w *RedrawWorker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// HandleCapacityReleased is the capacity.released subscriber.
func (w *RedrawWorker) HandleCapacityReleased(context.Context, events.Event) error {
	w.Wake()
	return nil
}

// Run loops until ctx is cancelled.
func (w *RedrawWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("redraw worker started", zap.Duration("interval", w.interval), zap.Int("batch", w.batch))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("redraw worker stopped")
			return
		case <-ticker.C:
		case <-w.wake:
		}
		if _, _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.logger.Error("redraw pass failed", zap.Error(err))
		}
	}
}

// RunOnce runs a single pass if the lease is free. ran is false when another
// process holds the lease.
func (w *RedrawWorker) RunOnce(ctx context.Context) (summary service.RedrawSummary, ran bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	acquired, err := w.lease.Acquire(ctx)
	if err != nil {
		return summary, false, err
	}
	if !acquired {
		w.logger.Debug("redraw lease held elsewhere; skipping pass")
		return summary, false, nil
	}
	defer func() {
		// The lease may outlive ctx; release on a fresh context.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if relErr := w.lease.Release(releaseCtx); relErr != nil {
			w.logger.Warn("release redraw lease", zap.Error(relErr))
		}
	}()

	summary, err = w.queue.RedrawPass(ctx, w.batch)
	if err != nil {
		return summary, true, err
	}
	if summary.Examined > 0 {
		w.logger.Info("redraw pass",
			zap.Int("examined", summary.Examined),
			zap.Int("assigned", summary.Assigned),
			zap.Int("still_queued", summary.StillQueued),
			zap.Int("failed", summary.Failed),
		)
	}
	return summary, true, nil
}

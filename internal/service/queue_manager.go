package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	defaultBatch    = 100
)

// QueueManager holds work items that could not be admitted and redraws them
// through the admission controller.
type QueueManager struct {
	repo       repository.QueueRepository
	admission  *AdmissionController
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ListQuery filters and pages the queue. A non-empty Cursor takes precedence
// over Page.
type ListQuery struct {
	Priority     *domain.Priority
	WorkItemType *domain.WorkItemType
	UnitID       *string
	Page         int
	PageSize     int
	Cursor       string
}

// QueueListing is one page of the queue in priority order.
type QueueListing struct {
	Items      []domain.QueueEntry
	TotalCount int
	Page       int
	PageSize   int
	HasNext    bool
	NextCursor string
}

// RedrawResult reports a single redraw: Assignment on success, otherwise the
// entry still queued with its updated attempt count.
type RedrawResult struct {
	Assignment *domain.Assignment
	Entry      *domain.QueueEntry
}

// Assigned reports whether the redraw admitted the entry.
func (r RedrawResult) Assigned() bool {
	return r.Assignment != nil
}

// RedrawSummary totals one redraw pass.
type RedrawSummary struct {
	Examined    int `json:"examined"`
	Assigned    int `json:"assigned"`
	StillQueued int `json:"still_queued"`
	Failed      int `json:"failed"`
}

// Enqueue appends item with attempts zero. Position is computed on read.
func (q *QueueManager) Enqueue(ctx context.Context, item domain.WorkItem) (*domain.QueueEntry, error) {
	entry := &domain.QueueEntry{
		ID:             uuid.NewString(),
		WorkItemID:     item.ID,
		WorkItemType:   item.Type,
		Priority:       item.Priority,
		RequiredSkills: append([]string{}, item.RequiredSkills...),
		UnitID:         item.UnitID,
		QueuedAt:       q.now().UTC(),
	}
	if err := q.repo.Enqueue(ctx, entry); err != nil {
		if errors.Is(err, domain.ErrAlreadyScheduled) {
			return nil, err
		}
		return nil, fmt.Errorf("enqueue: %w", err)
	}

	q.logger.Info("work item queued",
		zap.String("work_item_id", entry.WorkItemID),
		zap.String("queue_id", entry.ID),
		zap.String("priority", string(entry.Priority)),
		zap.Strings("required_skills", entry.RequiredSkills),
	)
	publish(ctx, q.dispatcher, events.Event{
		Type:       events.EventWorkItemQueued,
		WorkItemID: entry.WorkItemID,
		UnitID:     derefString(entry.UnitID),
		Payload: events.WorkItemQueuedPayload{
			QueueID:        entry.ID,
			WorkItemType:   entry.WorkItemType,
			Priority:       entry.Priority,
			RequiredSkills: entry.RequiredSkills,
		},
	})
	return entry, nil
}

// List returns one page in queue order. Count, page and positions come from
// one snapshot, so a single response is consistent. Offset pages are not
// stable across requests: an entry enqueued or admitted between two calls
// shifts later offsets. Callers walking the whole queue should follow
// NextCursor, which resumes strictly after the last entry returned.
func (q *QueueManager) List(ctx context.Context, query ListQuery) (QueueListing, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	size := query.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	filter := repository.QueueFilter{
		Priority:     query.Priority,
		WorkItemType: query.WorkItemType,
		UnitID:       query.UnitID,
		Limit:        size + 1,
		Offset:       (page - 1) * size,
	}
	if query.Cursor != "" {
		after, err := DecodeCursor(query.Cursor)
		if err != nil {
			return QueueListing{}, err
		}
		filter.After = after
		filter.Offset = 0
	}

	result, err := q.repo.List(ctx, filter)
	if err != nil {
		return QueueListing{}, fmt.Errorf("list queue: %w", err)
	}

	listing := QueueListing{
		Items:      result.Items,
		TotalCount: result.Total,
		Page:       page,
		PageSize:   size,
	}
	if len(listing.Items) > size {
		listing.Items = listing.Items[:size]
		listing.HasNext = true
	}
	if listing.HasNext {
		listing.NextCursor = EncodeCursor(&listing.Items[len(listing.Items)-1])
	}
	if listing.Items == nil {
		listing.Items = []domain.QueueEntry{}
	}
	if query.Priority == nil && query.WorkItemType == nil && query.UnitID == nil {
		q.metrics.SetQueueDepth(result.Total)
	}
	return listing, nil
}

// Redraw re-attempts admission for one entry. Without capacity the entry stays
// queued with attempts incremented. A store failure also increments attempts
// and is returned.
func (q *QueueManager) Redraw(ctx context.Context, entryID string) (RedrawResult, error) {
	entry, err := q.repo.GetByID(ctx, entryID)
	if err != nil {
		return RedrawResult{}, err
	}
	return q.redrawEntry(ctx, entry)
}

func (q *QueueManager) redrawEntry(ctx context.Context, entry *domain.QueueEntry) (RedrawResult, error) {
	assignment, err := q.admission.assign(ctx, entry.WorkItem(), entry.ID)
	if err == nil {
		q.metrics.RecordRedraw("assigned")
		q.logger.Info("queue entry redrawn",
			zap.String("queue_id", entry.ID),
			zap.String("work_item_id", entry.WorkItemID),
			zap.String("staff_id", assignment.AssigneeID),
			zap.Int("attempts", entry.Attempts),
		)
		return RedrawResult{Assignment: assignment}, nil
	}
	if errors.Is(err, domain.ErrAlreadyScheduled) {
		q.metrics.RecordRedraw("conflict")
		return RedrawResult{}, err
	}

	at := q.now().UTC()
	attempts, recErr := q.repo.RecordAttempt(ctx, entry.ID, at)
	if recErr == nil {
		entry.Attempts = attempts
		entry.LastAttemptAt = &at
	} else if !errors.Is(recErr, domain.ErrNotFound) {
		q.logger.Warn("record redraw attempt failed", zap.String("queue_id", entry.ID), zap.Error(recErr))
	}

	if errors.Is(err, domain.ErrNoEligibleCandidates) {
		q.metrics.RecordRedraw("still_queued")
		return RedrawResult{Entry: entry}, nil
	}
	q.metrics.RecordRedraw("failed")
	return RedrawResult{}, err
}

// RedrawPass redraws up to batch entries in queue order. Per-entry failures
// are logged and counted; only a failure to read the queue aborts the pass.
func (q *QueueManager) RedrawPass(ctx context.Context, batch int) (RedrawSummary, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	page, err := q.repo.List(ctx, repository.QueueFilter{Limit: batch})
	if err != nil {
		return RedrawSummary{}, fmt.Errorf("read queue: %w", err)
	}
	q.metrics.SetQueueDepth(page.Total)

	var summary RedrawSummary
	for i := range page.Items {
		if ctx.Err() != nil {
			break
		}
		entry := page.Items[i]
		summary.Examined++
		result, err := q.redrawEntry(ctx, &entry)
		switch {
		case err != nil:
			summary.Failed++
			q.logger.Warn("redraw failed",
				zap.String("queue_id", entry.ID),
				zap.String("work_item_id", entry.WorkItemID),
				zap.Int("attempts", entry.Attempts),
				zap.Error(err),
			)
		case result.Assigned():
			summary.Assigned++
		default:
			summary.StillQueued++
		}
	}
	q.metrics.SetQueueDepth(page.Total - summary.Assigned)
	return summary, nil
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

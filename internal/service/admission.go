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
	"github.com/spec-kit/assignment-service/internal/sla"
)

// Decision is the outcome of admission: exactly one of Assignment or Entry is set.
type Decision struct {
	Assignment *domain.Assignment
	Entry      *domain.QueueEntry
}

// Queued reports whether the work item went to the queue.
func (d Decision) Queued() bool {
	return d.Entry != nil
}

// AdmissionController decides between assigning now and queueing. It is
// greedy: each work item is placed independently with the first candidate
// whose reservation succeeds.
type AdmissionController struct {
	matcher     *Matcher
	ledger      *Ledger
	queue       *QueueManager
	assignments repository.AssignmentRepository
	units       repository.UnitRepository
	sla         *sla.Policy
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// Admit validates item and either assigns it or enqueues it. Capacity
// rejections never surface as errors; store failures always do, and in that
// case the item is neither assigned nor queued.
func (a *AdmissionController) Admit(ctx context.Context, item domain.WorkItem) (Decision, error) {
	start := time.Now()
	decision, err := a.admit(ctx, item)
	switch {
	case err != nil:
		a.metrics.RecordAdmission(observability.OutcomeError, time.Since(start))
	case decision.Queued():
		a.metrics.RecordAdmission(observability.OutcomeQueued, time.Since(start))
	default:
		a.metrics.RecordAdmission(observability.OutcomeAssigned, time.Since(start))
	}
	return decision, err
}

func (a *AdmissionController) admit(ctx context.Context, item domain.WorkItem) (Decision, error) {
	if err := item.Validate(); err != nil {
		return Decision{}, err
	}
	if item.UnitID != nil {
		if _, err := a.units.GetByID(ctx, *item.UnitID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return Decision{}, ErrUnknownUnit
			}
			return Decision{}, fmt.Errorf("load unit: %w", err)
		}
	}
	if err := a.ensureUnscheduled(ctx, item.ID); err != nil {
		return Decision{}, err
	}

	assignment, err := a.assign(ctx, item, "")
	if err == nil {
		return Decision{Assignment: assignment}, nil
	}
	if !errors.Is(err, domain.ErrNoEligibleCandidates) {
		return Decision{}, err
	}

	entry, err := a.queue.Enqueue(ctx, item)
	if err != nil {
		return Decision{}, err
	}
	return Decision{Entry: entry}, nil
}

// ensureUnscheduled rejects a work item that already holds an active
// assignment or a queue entry. It is a fast path only: Reserve and Enqueue
// refuse the same duplicates atomically.
func (a *AdmissionController) ensureUnscheduled(ctx context.Context, workItemID string) error {
	if _, err := a.assignments.GetActiveByWorkItem(ctx, workItemID); err == nil {
		return domain.ErrAlreadyScheduled
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check active assignment: %w", err)
	}
	if _, err := a.queue.repo.GetByWorkItem(ctx, workItemID); err == nil {
		return domain.ErrAlreadyScheduled
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("check queue entry: %w", err)
	}
	return nil
}

// assign walks the ranked candidates and commits with the first successful
// reservation. dequeueID, when set, is removed in the same commit. It returns
// ErrNoEligibleCandidates when every candidate refuses.
func (a *AdmissionController) assign(ctx context.Context, item domain.WorkItem, dequeueID string) (*domain.Assignment, error) {
	candidates, err := a.matcher.FindCandidates(ctx, CandidateQuery{
		RequiredSkills: item.RequiredSkills,
		WorkItemType:   item.Type,
		UnitID:         item.UnitID,
	})
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}

	for _, staffID := range candidates {
		assignment := a.newAssignment(item, staffID, false)
		err := a.ledger.Reserve(ctx, repository.ReserveRequest{
			StaffID:    staffID,
			Assignment: assignment,
			DequeueID:  dequeueID,
		})
		switch {
		case err == nil:
			a.logger.Info("work item assigned",
				zap.String("work_item_id", item.ID),
				zap.String("staff_id", staffID),
				zap.String("assignment_id", assignment.ID),
				zap.Time("sla_deadline", assignment.SLADeadline),
			)
			a.publishCreated(ctx, assignment, dequeueID != "")
			return assignment, nil
		case domain.IsCapacityOutcome(err):
			continue
		case errors.Is(err, domain.ErrNotFound):
			// Profile vanished between matching and reserving.
			continue
		case errors.Is(err, domain.ErrAlreadyScheduled):
			return nil, err
		default:
			return nil, fmt.Errorf("reserve %s: %w", staffID, err)
		}
	}
	return nil, domain.ErrNoEligibleCandidates
}

func (a *AdmissionController) newAssignment(item domain.WorkItem, staffID string, forced bool) *domain.Assignment {
	now := a.now().UTC()
	return &domain.Assignment{
		ID:           uuid.NewString(),
		WorkItemID:   item.ID,
		WorkItemType: item.Type,
		Priority:     item.Priority,
		AssigneeID:   staffID,
		Status:       domain.AssignmentActive,
		Forced:       forced,
		SLADeadline:  a.sla.Deadline(now, item.Type, item.Priority),
		CreatedAt:    now,
	}
}

func (a *AdmissionController) publishCreated(ctx context.Context, assignment *domain.Assignment, fromQueue bool) {
	publish(ctx, a.dispatcher, events.Event{
		Type:       events.EventAssignmentCreated,
		WorkItemID: assignment.WorkItemID,
		StaffID:    assignment.AssigneeID,
		UnitID:     assignment.UnitID,
		Payload: events.AssignmentCreatedPayload{
			AssignmentID: assignment.ID,
			AssigneeID:   assignment.AssigneeID,
			Priority:     assignment.Priority,
			SLADeadline:  assignment.SLADeadline,
			Forced:       assignment.Forced,
			FromQueue:    fromQueue,
		},
	})
}

// publish dispatches an event; it is a no-op without a dispatcher.
func publish(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

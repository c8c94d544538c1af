package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// AssignmentService is the caller-facing workflow over the scheduler: it
// applies roles and visibility and translates outcomes into API errors.
type AssignmentService struct {
	scheduler   *Scheduler
	staff       repository.StaffRepository
	assignments repository.AssignmentRepository
	queue       repository.QueueRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	now         func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	Scheduler      *Scheduler
	StaffRepo      repository.StaffRepository
	AssignmentRepo repository.AssignmentRepository
	QueueRepo      repository.QueueRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Clock          func() time.Time
}

// ManualAssignInput names the work item and the chosen assignee.
type ManualAssignInput struct {
	WorkItem   domain.WorkItem
	AssigneeID string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssignmentService{
		scheduler:   deps.Scheduler,
		staff:       deps.StaffRepo,
		assignments: deps.AssignmentRepo,
		queue:       deps.QueueRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
		now:         clock,
	}
}

// Submit admits a new work item.
func (s *AssignmentService) Submit(ctx context.Context, principal *domain.Principal, item domain.WorkItem) (Decision, error) {
	if principal == nil {
		return Decision{}, apperrors.NewUnauthorized("staff required")
	}
	decision, err := s.scheduler.Admission.Admit(ctx, item)
	if errors.Is(err, ErrUnknownUnit) {
		return Decision{}, apperrors.NewNotFound("unit", map[string]any{"unit_id": *item.UnitID})
	}
	if err != nil {
		return Decision{}, mapError(err, "work item", map[string]any{"work_item_id": item.ID})
	}
	return decision, nil
}

// ManualAssign binds a work item to a chosen staff member, bypassing the
// availability and WIP checks. Any queue entry for the item is removed in the
// same commit.
func (s *AssignmentService) ManualAssign(ctx context.Context, principal *domain.Principal, input ManualAssignInput) (*domain.Assignment, error) {
	if err := requireManager(principal); err != nil {
		return nil, err
	}
	item := input.WorkItem
	if err := item.Validate(); err != nil {
		return nil, mapError(err, "work item", nil)
	}
	assignee, err := s.staff.GetByID(ctx, input.AssigneeID)
	if err != nil {
		return nil, mapError(err, "staff", map[string]any{"staff_id": input.AssigneeID})
	}
	if !auth.CanManage(*principal, auth.StaffTarget(assignee)) {
		return nil, apperrors.NewForbidden("assignee outside caller's unit")
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assignee.ID})
	}

	var dequeueID string
	entry, err := s.queue.GetByWorkItem(ctx, item.ID)
	switch {
	case err == nil:
		dequeueID = entry.ID
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperrors.MapError(err)
	}

	admission := s.scheduler.Admission
	assignment := admission.newAssignment(item, assignee.ID, true)
	if err := s.scheduler.Ledger.Reserve(ctx, repository.ReserveRequest{
		StaffID:    assignee.ID,
		Force:      true,
		Assignment: assignment,
		DequeueID:  dequeueID,
	}); err != nil {
		return nil, mapError(err, "staff", map[string]any{"staff_id": assignee.ID, "work_item_id": item.ID})
	}

	s.logger.Info("work item manually assigned",
		zap.String("work_item_id", item.ID),
		zap.String("staff_id", assignee.ID),
		zap.String("actor_id", principal.StaffID),
		zap.Bool("from_queue", dequeueID != ""),
	)
	admission.publishCreated(ctx, assignment, dequeueID != "")
	return assignment, nil
}

// Complete closes an assignment as done and frees capacity.
func (s *AssignmentService) Complete(ctx context.Context, principal *domain.Principal, assignmentID string) (*domain.Assignment, error) {
	return s.close(ctx, principal, assignmentID, domain.AssignmentCompleted)
}

// Escalate closes an assignment as escalated and frees capacity.
func (s *AssignmentService) Escalate(ctx context.Context, principal *domain.Principal, assignmentID string) (*domain.Assignment, error) {
	return s.close(ctx, principal, assignmentID, domain.AssignmentEscalated)
}

func (s *AssignmentService) close(ctx context.Context, principal *domain.Principal, assignmentID string, status domain.AssignmentStatus) (*domain.Assignment, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	details := map[string]any{"assignment_id": assignmentID}
	current, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, mapError(err, "assignment", details)
	}
	if !auth.CanActOn(*principal, auth.Target{StaffID: current.AssigneeID, UnitID: current.UnitID}) {
		return nil, apperrors.NewForbidden("access denied")
	}

	closed, err := s.scheduler.Ledger.Release(ctx, assignmentID, status, s.now().UTC())
	if err != nil {
		return nil, mapError(err, "assignment", details)
	}

	s.logger.Info("assignment released",
		zap.String("assignment_id", closed.ID),
		zap.String("work_item_id", closed.WorkItemID),
		zap.String("staff_id", closed.AssigneeID),
		zap.String("status", string(closed.Status)),
	)
	publish(ctx, s.dispatcher, events.Event{
		Type:       events.EventAssignmentReleased,
		WorkItemID: closed.WorkItemID,
		StaffID:    closed.AssigneeID,
		UnitID:     closed.UnitID,
		Payload:    events.AssignmentReleasedPayload{AssignmentID: closed.ID, Status: closed.Status},
	})
	s.publishCapacityReleased(ctx, closed.AssigneeID, closed.UnitID)
	return closed, nil
}

// Get returns one assignment visible to the caller.
func (s *AssignmentService) Get(ctx context.Context, principal *domain.Principal, assignmentID string) (*domain.Assignment, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, mapError(err, "assignment", map[string]any{"assignment_id": assignmentID})
	}
	if !auth.CanView(*principal, auth.Target{StaffID: assignment.AssigneeID, UnitID: assignment.UnitID}) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return assignment, nil
}

// ListQueue returns a page of the queue to any authenticated caller.
func (s *AssignmentService) ListQueue(ctx context.Context, principal *domain.Principal, query ListQuery) (QueueListing, error) {
	if principal == nil {
		return QueueListing{}, apperrors.NewUnauthorized("staff required")
	}
	listing, err := s.scheduler.Queue.List(ctx, query)
	if err != nil {
		return QueueListing{}, mapError(err, "queue", nil)
	}
	return listing, nil
}

// Redraw manually re-attempts one queue entry.
func (s *AssignmentService) Redraw(ctx context.Context, principal *domain.Principal, entryID string) (RedrawResult, error) {
	if err := requireManager(principal); err != nil {
		return RedrawResult{}, err
	}
	details := map[string]any{"queue_id": entryID}
	entry, err := s.queue.GetByID(ctx, entryID)
	if err != nil {
		return RedrawResult{}, mapError(err, "queue entry", details)
	}
	if entry.UnitID != nil && !auth.CanManage(*principal, auth.UnitTarget(*entry.UnitID)) {
		return RedrawResult{}, apperrors.NewForbidden("queue entry outside caller's unit")
	}
	result, err := s.scheduler.Queue.redrawEntry(ctx, entry)
	if err != nil {
		return RedrawResult{}, mapError(err, "queue entry", details)
	}
	return result, nil
}

// UpdateAvailability changes a staff member's availability. Becoming available
// signals the redraw worker.
func (s *AssignmentService) UpdateAvailability(ctx context.Context, principal *domain.Principal, staffID string, status domain.AvailabilityStatus) (*domain.StaffProfile, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	details := map[string]any{"staff_id": staffID}
	profile, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, mapError(err, "staff", details)
	}
	if !auth.CanActOn(*principal, auth.StaffTarget(profile)) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.staff.UpdateAvailability(ctx, staffID, status); err != nil {
		return nil, mapError(err, "staff", details)
	}
	previous := profile.Availability
	profile.Availability = status

	s.logger.Info("availability changed",
		zap.String("staff_id", staffID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)),
	)
	if status == domain.AvailabilityAvailable && previous != domain.AvailabilityAvailable {
		s.publishCapacityReleased(ctx, profile.ID, profile.UnitID)
	}
	return profile, nil
}

// Capacity answers a capacity check for the caller.
func (s *AssignmentService) Capacity(ctx context.Context, principal *domain.Principal, q CapacityQuery) (domain.CapacityStatus, error) {
	return s.scheduler.Capacity.Check(ctx, principal, q)
}

func (s *AssignmentService) publishCapacityReleased(ctx context.Context, staffID, unitID string) {
	publish(ctx, s.dispatcher, events.Event{
		Type:    events.EventCapacityReleased,
		StaffID: staffID,
		UnitID:  unitID,
	})
}

func requireManager(principal *domain.Principal) error {
	if principal == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if principal.Role != domain.RoleSupervisor && principal.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("insufficient role for assignment override")
	}
	return nil
}

package memory

import (
	"context"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

type ledgerView struct{ s *Store }

func (v ledgerView) Reserve(_ context.Context, req repository.ReserveRequest) error {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	staff, ok := s.staff[req.StaffID]
	if !ok {
		return domain.ErrNotFound
	}
	if !staff.Active {
		return domain.ErrCapacityExceeded
	}
	if !req.Force && (!staff.IsAvailable() || staff.CurrentAssignmentCount >= staff.IndividualWIPLimit) {
		return domain.ErrCapacityExceeded
	}
	unit := s.units[staff.UnitID]
	if unit == nil {
		return domain.ErrNotFound
	}
	if req.EnforceUnit && !req.Force && unit.ReservedCount >= unit.UnitWIPLimit {
		return domain.ErrUnitAtCapacity
	}
	if a := req.Assignment; a != nil {
		if s.activeAssignment(a.WorkItemID) != nil {
			return domain.ErrAlreadyScheduled
		}
		if e := s.queuedEntry(a.WorkItemID); e != nil && e.ID != req.DequeueID {
			return domain.ErrAlreadyScheduled
		}
	}
	if req.DequeueID != "" {
		if _, ok := s.queue[req.DequeueID]; !ok {
			return domain.ErrAlreadyScheduled
		}
	}

	// All checks passed; apply every change together.
	staff.CurrentAssignmentCount++
	unit.ReservedCount++
	if a := req.Assignment; a != nil {
		a.UnitID = staff.UnitID
		a.AssigneeID = staff.ID
		stored := *a
		s.assignments[a.ID] = &stored
	}
	if req.DequeueID != "" {
		delete(s.queue, req.DequeueID)
	}
	return nil
}

func (v ledgerView) Release(_ context.Context, req repository.ReleaseRequest) (*domain.Assignment, error) {
	s := v.s
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignments[req.AssignmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if a.Status != domain.AssignmentActive {
		return nil, domain.ErrAssignmentClosed
	}
	if err := s.decrement(a.AssigneeID); err != nil {
		return nil, err
	}
	at := req.At
	a.Status = req.Status
	a.ClosedAt = &at
	out := *a
	return &out, nil
}

// decrement floors both counters at zero. Callers must hold s.mu.
func (s *Store) decrement(staffID string) error {
	staff, ok := s.staff[staffID]
	if !ok {
		return domain.ErrNotFound
	}
	if staff.CurrentAssignmentCount > 0 {
		staff.CurrentAssignmentCount--
	}
	if unit := s.units[staff.UnitID]; unit != nil && unit.ReservedCount > 0 {
		unit.ReservedCount--
	}
	return nil
}

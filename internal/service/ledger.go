package service

import (
	"context"
	"errors"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/repository"
)

// Ledger is the single entry point for capacity changes. Reservation and
// release go through the store's atomic operations; reads derive CapacityStatus.
type Ledger struct {
	store       repository.LedgerStore
	staff       repository.StaffRepository
	units       repository.UnitRepository
	enforceUnit bool
	metrics     *observability.Metrics
}

// Reserve claims one slot for req.StaffID. ErrCapacityExceeded and
// ErrUnitAtCapacity are expected outcomes; any other error is a failure.
func (l *Ledger) Reserve(ctx context.Context, req repository.ReserveRequest) error {
	req.EnforceUnit = l.enforceUnit
	err := l.store.Reserve(ctx, req)
	switch {
	case errors.Is(err, domain.ErrCapacityExceeded):
		l.metrics.RecordReservationConflict("staff")
	case errors.Is(err, domain.ErrUnitAtCapacity):
		l.metrics.RecordReservationConflict("unit")
	}
	return err
}

// Release closes an active assignment and frees its slot in one step.
func (l *Ledger) Release(ctx context.Context, assignmentID string, status domain.AssignmentStatus, at time.Time) (*domain.Assignment, error) {
	if !status.Terminal() {
		return nil, errors.New("release requires a terminal status")
	}
	assignment, err := l.store.Release(ctx, repository.ReleaseRequest{
		AssignmentID: assignmentID,
		Status:       status,
		At:           at,
	})
	if err != nil {
		return nil, err
	}
	l.metrics.RecordRelease(string(status))
	return assignment, nil
}

// QueryStaffCapacity reports a staff member's load against their WIP limit.
func (l *Ledger) QueryStaffCapacity(ctx context.Context, staffID string) (domain.CapacityStatus, error) {
	profile, err := l.staff.GetByID(ctx, staffID)
	if err != nil {
		return domain.CapacityStatus{}, err
	}
	return staffStatus(profile), nil
}

// QueryUnitCapacity sums the load of the unit's available staff against the
// unit WIP limit.
func (l *Ledger) QueryUnitCapacity(ctx context.Context, unitID string) (domain.CapacityStatus, error) {
	unit, err := l.units.GetByID(ctx, unitID)
	if err != nil {
		return domain.CapacityStatus{}, err
	}
	load, err := l.units.AvailableLoad(ctx, unitID)
	if err != nil {
		return domain.CapacityStatus{}, err
	}
	return domain.NewCapacityStatus(domain.CapacityKindUnit, unit.ID, load, unit.UnitWIPLimit), nil
}

// QueryUnitMembers reports every member of the unit, available or not, in id order.
func (l *Ledger) QueryUnitMembers(ctx context.Context, unitID string) ([]domain.CapacityStatus, error) {
	if _, err := l.units.GetByID(ctx, unitID); err != nil {
		return nil, err
	}
	members, err := l.staff.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CapacityStatus, 0, len(members))
	for i := range members {
		out = append(out, staffStatus(&members[i]))
	}
	return out, nil
}

func staffStatus(profile *domain.StaffProfile) domain.CapacityStatus {
	return domain.NewCapacityStatus(domain.CapacityKindStaff, profile.ID, profile.CurrentAssignmentCount, profile.IndividualWIPLimit)
}

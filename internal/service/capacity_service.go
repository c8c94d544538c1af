package service

import (
	"context"
	"strings"

	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// CapacityQuery names exactly one of a staff member or a unit.
type CapacityQuery struct {
	StaffID string
	UnitID  string
}

// CapacityService is the read side of the ledger with visibility applied.
type CapacityService struct {
	ledger *Ledger
	staff  repository.StaffRepository
	units  repository.UnitRepository
}

// Check returns the capacity status of the requested subject.
func (s *CapacityService) Check(ctx context.Context, principal *domain.Principal, q CapacityQuery) (domain.CapacityStatus, error) {
	if principal == nil {
		return domain.CapacityStatus{}, apperrors.NewUnauthorized("staff required")
	}
	staffID := strings.TrimSpace(q.StaffID)
	unitID := strings.TrimSpace(q.UnitID)
	if (staffID == "") == (unitID == "") {
		return domain.CapacityStatus{}, apperrors.NewValidationError("exactly one of staff_id or unit_id is required", nil)
	}

	if staffID != "" {
		profile, err := s.staff.GetByID(ctx, staffID)
		if err != nil {
			return domain.CapacityStatus{}, mapError(err, "staff", map[string]any{"staff_id": staffID})
		}
		if !auth.CanView(*principal, auth.StaffTarget(profile)) {
			return domain.CapacityStatus{}, apperrors.NewForbidden("capacity of this staff member is not visible to caller")
		}
		return staffStatus(profile), nil
	}

	if !auth.CanView(*principal, auth.UnitTarget(unitID)) {
		return domain.CapacityStatus{}, apperrors.NewForbidden("capacity of this unit is not visible to caller")
	}
	status, err := s.ledger.QueryUnitCapacity(ctx, unitID)
	if err != nil {
		return domain.CapacityStatus{}, mapError(err, "unit", map[string]any{"unit_id": unitID})
	}
	return status, nil
}

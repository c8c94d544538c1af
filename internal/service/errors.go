package service

import (
	"errors"
	"fmt"

	"github.com/spec-kit/assignment-service/internal/domain"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// ErrUnknownUnit rejects a work item scoped to a unit that does not exist.
var ErrUnknownUnit = fmt.Errorf("unit %w", domain.ErrNotFound)

// mapError converts scheduling sentinels into API errors. resource and details
// describe the subject for not-found responses.
func mapError(err error, resource string, details map[string]any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrMissingWorkItemID),
		errors.Is(err, domain.ErrInvalidWorkItemType),
		errors.Is(err, domain.ErrInvalidPriority),
		errors.Is(err, domain.ErrInvalidSkill),
		errors.Is(err, domain.ErrInvalidAvailability),
		errors.Is(err, ErrInvalidCursor):
		return apperrors.NewValidationError(err.Error(), details)
	case errors.Is(err, domain.ErrNotFound):
		return apperrors.NewNotFound(resource, details)
	case errors.Is(err, domain.ErrAlreadyScheduled):
		return apperrors.NewConflict(err.Error(), details)
	case errors.Is(err, domain.ErrAssignmentClosed):
		return apperrors.NewConflict(err.Error(), details)
	}
	return apperrors.MapError(err)
}

package domain

import "errors"

// Expected scheduling outcomes. These route work to the queue and are never
// surfaced to callers as failures.
var (
	ErrCapacityExceeded     = errors.New("staff capacity exceeded")
	ErrUnitAtCapacity       = errors.New("unit at capacity")
	ErrNoEligibleCandidates = errors.New("no eligible candidates")
)

// Lookup and state errors.
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyScheduled = errors.New("work item already assigned or queued")
	ErrAssignmentClosed = errors.New("assignment already closed")
)

// Input validation errors.
var (
	ErrMissingWorkItemID   = errors.New("work_item_id required")
	ErrInvalidWorkItemType = errors.New("invalid work_item_type")
	ErrInvalidPriority     = errors.New("invalid priority")
	ErrInvalidSkill        = errors.New("invalid skill identifier")
	ErrInvalidAvailability = errors.New("invalid availability_status")
)

// IsCapacityOutcome reports whether err is an expected capacity rejection.
func IsCapacityOutcome(err error) bool {
	return errors.Is(err, ErrCapacityExceeded) || errors.Is(err, ErrUnitAtCapacity)
}

package domain

import "time"

// AssignmentStatus tracks whether an assignment still holds capacity.
type AssignmentStatus string

const (
	AssignmentActive    AssignmentStatus = "active"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentEscalated AssignmentStatus = "escalated"
)

// Terminal reports whether the status releases capacity.
func (s AssignmentStatus) Terminal() bool {
	return s == AssignmentCompleted || s == AssignmentEscalated
}

// Assignment binds a work item to a staff member.
type Assignment struct {
	ID           string
	WorkItemID   string
	WorkItemType WorkItemType
	Priority     Priority
	AssigneeID   string
	UnitID       string
	Status       AssignmentStatus
	// Forced marks a manual override that bypassed the WIP check.
	Forced      bool
	SLADeadline time.Time
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

package events

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAssignmentCreated  EventType = "assignment.created"
	EventWorkItemQueued     EventType = "work_item.queued"
	EventAssignmentReleased EventType = "assignment.released"
	EventCapacityReleased   EventType = "capacity.released"
)

// Event represents a domain event emitted after a successful commit.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	WorkItemID string    `json:"work_item_id,omitempty"`
	StaffID    string    `json:"staff_id,omitempty"`
	UnitID     string    `json:"unit_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload,omitempty"`
	// Origin is set on events received from another process.
	Origin string `json:"-"`
}

// AssignmentCreatedPayload payload.
type AssignmentCreatedPayload struct {
	AssignmentID string          `json:"assignment_id"`
	AssigneeID   string          `json:"assignee_id"`
	Priority     domain.Priority `json:"priority"`
	SLADeadline  time.Time       `json:"sla_deadline"`
	Forced       bool            `json:"forced"`
	FromQueue    bool            `json:"from_queue"`
}

// WorkItemQueuedPayload payload.
type WorkItemQueuedPayload struct {
	QueueID        string              `json:"queue_id"`
	WorkItemType   domain.WorkItemType `json:"work_item_type"`
	Priority       domain.Priority     `json:"priority"`
	RequiredSkills []string            `json:"required_skills"`
}

// AssignmentReleasedPayload payload.
type AssignmentReleasedPayload struct {
	AssignmentID string                  `json:"assignment_id"`
	Status       domain.AssignmentStatus `json:"status"`
}

package dto

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// WorkItemRequest is the submission payload.
type WorkItemRequest struct {
	WorkItemID     string   `json:"work_item_id"`
	WorkItemType   string   `json:"work_item_type"`
	RequiredSkills []string `json:"required_skills"`
	Priority       string   `json:"priority"`
	UnitID         *string  `json:"unit_id"`
}

// WorkItem converts the payload; enum checks happen during admission.
func (r WorkItemRequest) WorkItem() domain.WorkItem {
	return domain.WorkItem{
		ID:             r.WorkItemID,
		Type:           domain.WorkItemType(r.WorkItemType),
		RequiredSkills: r.RequiredSkills,
		Priority:       domain.Priority(r.Priority),
		UnitID:         r.UnitID,
	}
}

// ManualAssignRequest overrides admission with a chosen assignee.
type ManualAssignRequest struct {
	WorkItemRequest
	AssigneeID string `json:"assignee_id"`
}

// AssignedResponse is returned with 200 on immediate assignment.
type AssignedResponse struct {
	AssignmentID string    `json:"assignment_id"`
	AssigneeID   string    `json:"assignee_id"`
	SLADeadline  time.Time `json:"sla_deadline"`
}

// QueuedResponse is returned with 202 when the item waits for capacity.
type QueuedResponse struct {
	Queued  bool   `json:"queued"`
	QueueID string `json:"queue_id"`
}

// AssignmentResponse is the full assignment record.
type AssignmentResponse struct {
	ID           string                  `json:"id"`
	WorkItemID   string                  `json:"work_item_id"`
	WorkItemType domain.WorkItemType     `json:"work_item_type"`
	Priority     domain.Priority         `json:"priority"`
	AssigneeID   string                  `json:"assignee_id"`
	UnitID       string                  `json:"unit_id"`
	Status       domain.AssignmentStatus `json:"status"`
	Forced       bool                    `json:"forced"`
	SLADeadline  time.Time               `json:"sla_deadline"`
	CreatedAt    time.Time               `json:"created_at"`
	ClosedAt     *time.Time              `json:"closed_at"`
}

// NewAssignmentResponse maps a domain assignment.
func NewAssignmentResponse(a *domain.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:           a.ID,
		WorkItemID:   a.WorkItemID,
		WorkItemType: a.WorkItemType,
		Priority:     a.Priority,
		AssigneeID:   a.AssigneeID,
		UnitID:       a.UnitID,
		Status:       a.Status,
		Forced:       a.Forced,
		SLADeadline:  a.SLADeadline,
		CreatedAt:    a.CreatedAt,
		ClosedAt:     a.ClosedAt,
	}
}

package dto

import (
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
)

// QueueEntryResponse is one queued work item.
type QueueEntryResponse struct {
	ID             string              `json:"id"`
	WorkItemID     string              `json:"work_item_id"`
	WorkItemType   domain.WorkItemType `json:"work_item_type"`
	Priority       domain.Priority     `json:"priority"`
	RequiredSkills []string            `json:"required_skills"`
	UnitID         *string             `json:"unit_id"`
	QueuedAt       time.Time           `json:"queued_at"`
	Position       int                 `json:"position"`
	Attempts       int                 `json:"attempts"`
	LastAttemptAt  *time.Time          `json:"last_attempt_at"`
}

// QueueListResponse is one page of the queue.
type QueueListResponse struct {
	Items       []QueueEntryResponse `json:"items"`
	TotalCount  int                  `json:"total_count"`
	Page        int                  `json:"page"`
	PageSize    int                  `json:"page_size"`
	HasNextPage bool                 `json:"has_next_page"`
	NextCursor  string               `json:"next_cursor,omitempty"`
}

// RedrawResponse reports a manual redraw.
type RedrawResponse struct {
	Assigned   bool                `json:"assigned"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
	Entry      *QueueEntryResponse `json:"entry,omitempty"`
}

// NewQueueEntryResponse maps a domain queue entry.
func NewQueueEntryResponse(e *domain.QueueEntry) QueueEntryResponse {
	skills := e.RequiredSkills
	if skills == nil {
		skills = []string{}
	}
	return QueueEntryResponse{
		ID:             e.ID,
		WorkItemID:     e.WorkItemID,
		WorkItemType:   e.WorkItemType,
		Priority:       e.Priority,
		RequiredSkills: skills,
		UnitID:         e.UnitID,
		QueuedAt:       e.QueuedAt,
		Position:       e.Position,
		Attempts:       e.Attempts,
		LastAttemptAt:  e.LastAttemptAt,
	}
}

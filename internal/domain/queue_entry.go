package domain

import "time"

// QueueEntry is a work item waiting for capacity.
type QueueEntry struct {
	ID             string
	Seq            int64
	WorkItemID     string
	WorkItemType   WorkItemType
	Priority       Priority
	RequiredSkills []string
	UnitID         *string
	QueuedAt       time.Time
	// Position is the 1-based rank within the priority class, computed on read.
	Position      int
	Attempts      int
	LastAttemptAt *time.Time
}

// WorkItem reconstructs the queued work item.
func (q *QueueEntry) WorkItem() WorkItem {
	return WorkItem{
		ID:             q.WorkItemID,
		Type:           q.WorkItemType,
		RequiredSkills: append([]string(nil), q.RequiredSkills...),
		Priority:       q.Priority,
		UnitID:         q.UnitID,
		CreatedAt:      q.QueuedAt,
	}
}

// QueueLess is the total queue order: priority, then queued_at, then seq.
func QueueLess(a, b *QueueEntry) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	if !a.QueuedAt.Equal(b.QueuedAt) {
		return a.QueuedAt.Before(b.QueuedAt)
	}
	return a.Seq < b.Seq
}

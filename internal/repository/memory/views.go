package memory

import (
	"context"
	"sort"
	"time"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

type staffView struct{ s *Store }

func (v staffView) GetByID(_ context.Context, id string) (*domain.StaffProfile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.staff[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyStaff(p)
	return &out, nil
}

func (v staffView) ListEligible(_ context.Context, filter repository.EligibilityFilter) ([]domain.StaffProfile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var result []domain.StaffProfile
	for _, p := range v.s.staff {
		if !p.IsAvailable() || !p.HasSkills(filter.RequiredSkills) {
			continue
		}
		if filter.UnitID != nil && p.UnitID != *filter.UnitID {
			continue
		}
		result = append(result, copyStaff(p))
	}
	sort.Slice(result, func(i, j int) bool {
		ui, uj := result[i].Utilization(), result[j].Utilization()
		if ui != uj {
			return ui < uj
		}
		return result[i].ID < result[j].ID
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (v staffView) ListByUnit(_ context.Context, unitID string) ([]domain.StaffProfile, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	var result []domain.StaffProfile
	for _, p := range v.s.staff {
		if p.UnitID == unitID {
			result = append(result, copyStaff(p))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (v staffView) UpdateAvailability(_ context.Context, id string, status domain.AvailabilityStatus) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p, ok := v.s.staff[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Availability = status
	return nil
}

type unitView struct{ s *Store }

func (v unitView) GetByID(_ context.Context, id string) (*domain.OrganizationalUnit, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	u, ok := v.s.units[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (v unitView) AvailableLoad(_ context.Context, id string) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	load := 0
	for _, p := range v.s.staff {
		if p.UnitID == id && p.IsAvailable() {
			load += p.CurrentAssignmentCount
		}
	}
	return load, nil
}

type assignmentView struct{ s *Store }

func (v assignmentView) GetByID(_ context.Context, id string) (*domain.Assignment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	a, ok := v.s.assignments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (v assignmentView) GetActiveByWorkItem(_ context.Context, workItemID string) (*domain.Assignment, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if a := v.s.activeAssignment(workItemID); a != nil {
		out := *a
		return &out, nil
	}
	return nil, domain.ErrNotFound
}

func (s *Store) activeAssignment(workItemID string) *domain.Assignment {
	for _, a := range s.assignments {
		if a.WorkItemID == workItemID && a.Status == domain.AssignmentActive {
			return a
		}
	}
	return nil
}

func (s *Store) queuedEntry(workItemID string) *domain.QueueEntry {
	for _, e := range s.queue {
		if e.WorkItemID == workItemID {
			return e
		}
	}
	return nil
}

type queueView struct{ s *Store }

func (v queueView) Enqueue(_ context.Context, entry *domain.QueueEntry) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if v.s.queuedEntry(entry.WorkItemID) != nil || v.s.activeAssignment(entry.WorkItemID) != nil {
		return domain.ErrAlreadyScheduled
	}
	if entry.UnitID != nil {
		if _, ok := v.s.units[*entry.UnitID]; !ok {
			return domain.ErrNotFound
		}
	}
	v.s.seq++
	entry.Seq = v.s.seq
	stored := copyEntry(entry)
	v.s.queue[entry.ID] = &stored
	return nil
}

func (v queueView) GetByID(_ context.Context, id string) (*domain.QueueEntry, error) {
	return v.find(func(e *domain.QueueEntry) bool { return e.ID == id })
}

func (v queueView) GetByWorkItem(_ context.Context, workItemID string) (*domain.QueueEntry, error) {
	return v.find(func(e *domain.QueueEntry) bool { return e.WorkItemID == workItemID })
}

func (v queueView) find(match func(*domain.QueueEntry) bool) (*domain.QueueEntry, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, e := range v.s.orderedQueue() {
		if match(&e) {
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (v queueView) List(_ context.Context, filter repository.QueueFilter) (repository.QueuePage, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	var page repository.QueuePage
	var matched []domain.QueueEntry
	for _, e := range v.s.orderedQueue() {
		if filter.Priority != nil && e.Priority != *filter.Priority {
			continue
		}
		if filter.WorkItemType != nil && e.WorkItemType != *filter.WorkItemType {
			continue
		}
		if filter.UnitID != nil && (e.UnitID == nil || *e.UnitID != *filter.UnitID) {
			continue
		}
		matched = append(matched, e)
	}
	page.Total = len(matched)

	start := filter.Offset
	if filter.After != nil {
		start = len(matched)
		for i := range matched {
			if afterCursor(&matched[i], filter.After) {
				start = i
				break
			}
		}
	}
	if start < 0 {
		start = 0
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if start >= len(matched) {
		return page, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Items = matched[start:end]
	return page, nil
}

func afterCursor(e *domain.QueueEntry, c *repository.QueueCursor) bool {
	if rank := e.Priority.Rank(); rank != c.PriorityRank {
		return rank > c.PriorityRank
	}
	if !e.QueuedAt.Equal(c.QueuedAt) {
		return e.QueuedAt.After(c.QueuedAt)
	}
	return e.Seq > c.Seq
}

func (v queueView) RecordAttempt(_ context.Context, id string, at time.Time) (int, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	e, ok := v.s.queue[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	e.Attempts++
	e.LastAttemptAt = &at
	return e.Attempts, nil
}

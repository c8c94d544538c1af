// Package memory is a mutex-guarded, single-process implementation of the
// repository interfaces. Every ledger call runs under one lock, which gives it
// the same all-or-nothing behaviour as the Postgres transactions.
package memory

import (
	"sort"
	"sync"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/repository"
)

// Store holds all state. Use the accessor methods to obtain repository views.
type Store struct {
	mu          sync.Mutex
	staff       map[string]*domain.StaffProfile
	units       map[string]*domain.OrganizationalUnit
	assignments map[string]*domain.Assignment
	queue       map[string]*domain.QueueEntry
	seq         int64
}

// New returns an empty store.
func New() *Store {
	return &Store{
		staff:       make(map[string]*domain.StaffProfile),
		units:       make(map[string]*domain.OrganizationalUnit),
		assignments: make(map[string]*domain.Assignment),
		queue:       make(map[string]*domain.QueueEntry),
	}
}

// PutStaff inserts or replaces a staff profile.
func (s *Store) PutStaff(profile domain.StaffProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := copyStaff(&profile)
	s.staff[p.ID] = &p
}

// PutUnit inserts or replaces an organizational unit.
func (s *Store) PutUnit(unit domain.OrganizationalUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := unit
	s.units[u.ID] = &u
}

// Staff returns the staff repository view.
func (s *Store) Staff() repository.StaffRepository { return staffView{s} }

// Units returns the unit repository view.
func (s *Store) Units() repository.UnitRepository { return unitView{s} }

// Assignments returns the assignment repository view.
func (s *Store) Assignments() repository.AssignmentRepository { return assignmentView{s} }

// Queue returns the queue repository view.
func (s *Store) Queue() repository.QueueRepository { return queueView{s} }

// Ledger returns the ledger store view.
func (s *Store) Ledger() repository.LedgerStore { return ledgerView{s} }

func copyStaff(p *domain.StaffProfile) domain.StaffProfile {
	out := *p
	out.Skills = append([]string(nil), p.Skills...)
	return out
}

func copyEntry(e *domain.QueueEntry) domain.QueueEntry {
	out := *e
	out.RequiredSkills = append([]string(nil), e.RequiredSkills...)
	if e.UnitID != nil {
		unit := *e.UnitID
		out.UnitID = &unit
	}
	if e.LastAttemptAt != nil {
		at := *e.LastAttemptAt
		out.LastAttemptAt = &at
	}
	return out
}

// orderedQueue returns every entry in queue order with Position filled in.
// Callers must hold s.mu.
func (s *Store) orderedQueue() []domain.QueueEntry {
	entries := make([]*domain.QueueEntry, 0, len(s.queue))
	for _, e := range s.queue {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return domain.QueueLess(entries[i], entries[j]) })

	positions := make(map[domain.Priority]int, len(domain.Priorities))
	out := make([]domain.QueueEntry, 0, len(entries))
	for _, e := range entries {
		positions[e.Priority]++
		entry := copyEntry(e)
		entry.Position = positions[e.Priority]
		out = append(out, entry)
	}
	return out
}

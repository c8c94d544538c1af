package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/repository/memory"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store     *memory.Store
	scheduler *Scheduler
	svc       *AssignmentService
	clock     *fakeClock

	mu     sync.Mutex
	events []events.Event
}

func newFixture(t testing.TB, tweak ...func(*SchedulerDependencies)) *fixture {
	t.Helper()
	f := &fixture{store: memory.New(), clock: &fakeClock{now: t0}}
	dispatcher := events.NewInMemoryDispatcher(nil)
	for _, et := range []events.EventType{
		events.EventAssignmentCreated,
		events.EventWorkItemQueued,
		events.EventAssignmentReleased,
		events.EventCapacityReleased,
	} {
		dispatcher.Subscribe(et, f.record)
	}

	deps := SchedulerDependencies{
		StaffRepo:      f.store.Staff(),
		UnitRepo:       f.store.Units(),
		AssignmentRepo: f.store.Assignments(),
		QueueRepo:      f.store.Queue(),
		LedgerStore:    f.store.Ledger(),
		Dispatcher:     dispatcher,
		Config:         config.SchedulerConfig{EnforceUnitLimit: true, MaxCandidates: 50},
		Clock:          f.clock.Now,
	}
	for _, fn := range tweak {
		fn(&deps)
	}
	f.scheduler = NewScheduler(deps)
	f.svc = NewAssignmentService(AssignmentDependencies{
		Scheduler:      f.scheduler,
		StaffRepo:      f.store.Staff(),
		AssignmentRepo: f.store.Assignments(),
		QueueRepo:      f.store.Queue(),
		Dispatcher:     dispatcher,
		Clock:          f.clock.Now,
	})
	return f
}

func (f *fixture) record(_ context.Context, e events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return nil
}

func (f *fixture) eventTypes() []events.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]events.EventType, len(f.events))
	for i, e := range f.events {
		out[i] = e.Type
	}
	return out
}

func (f *fixture) unit(id string, limit int) {
	f.store.PutUnit(domain.OrganizationalUnit{ID: id, Name: id, UnitWIPLimit: limit})
}

func (f *fixture) staff(id, unit string, limit, current int, skills ...string) {
	f.store.PutStaff(domain.StaffProfile{
		ID:                     id,
		UnitID:                 unit,
		Role:                   domain.RoleStaff,
		IndividualWIPLimit:     limit,
		CurrentAssignmentCount: current,
		Availability:           domain.AvailabilityAvailable,
		Skills:                 skills,
		Active:                 true,
	})
}

func (f *fixture) count(t testing.TB, staffID string) int {
	t.Helper()
	p, err := f.store.Staff().GetByID(context.Background(), staffID)
	require.NoError(t, err)
	return p.CurrentAssignmentCount
}

func item(id string, p domain.Priority, skills ...string) domain.WorkItem {
	return domain.WorkItem{ID: id, Type: domain.WorkItemTicket, Priority: p, RequiredSkills: skills}
}

var adminPrincipal = &domain.Principal{StaffID: "admin", Role: domain.RoleAdmin, UnitID: "hq"}

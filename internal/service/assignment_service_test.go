package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.HTTPStatus
}

func TestManualAssignOverridesWIPLimit(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 1)
	f.unit("u2", 10)
	f.staff("s1", "u1", 1, 0)
	ctx := context.Background()
	supervisor := &domain.Principal{StaffID: "sup", Role: domain.RoleSupervisor, UnitID: "u1"}

	// Fill s1 and the unit, then queue W2.
	_, err := f.scheduler.Admission.Admit(ctx, item("W1", domain.PriorityNormal))
	require.NoError(t, err)
	queued, err := f.scheduler.Admission.Admit(ctx, item("W2", domain.PriorityUrgent))
	require.NoError(t, err)
	require.True(t, queued.Queued())

	assignment, err := f.svc.ManualAssign(ctx, supervisor, ManualAssignInput{WorkItem: item("W2", domain.PriorityUrgent), AssigneeID: "s1"})
	require.NoError(t, err)
	assert.True(t, assignment.Forced)
	assert.Equal(t, 2, f.count(t, "s1"))

	_, err = f.store.Queue().GetByID(ctx, queued.Entry.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.ManualAssign(ctx, supervisor, ManualAssignInput{WorkItem: item("W2", domain.PriorityUrgent), AssigneeID: "s1"})
	assert.Equal(t, 409, statusOf(t, err))
}

func TestManualAssignAuthorization(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 10)
	f.unit("u2", 10)
	f.staff("s1", "u1", 1, 0)
	f.staff("s2", "u2", 1, 0)
	ctx := context.Background()

	tests := map[string]struct {
		principal *domain.Principal
		assignee  string
		status    int
	}{
		"staff":            {&domain.Principal{StaffID: "s1", Role: domain.RoleStaff, UnitID: "u1"}, "s1", 403},
		"other unit":       {&domain.Principal{StaffID: "sup", Role: domain.RoleSupervisor, UnitID: "u1"}, "s2", 403},
		"missing assignee": {adminPrincipal, "ghost", 404},
		"anonymous":        {nil, "s1", 401},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.ManualAssign(ctx, tc.principal, ManualAssignInput{WorkItem: item("W-"+name, domain.PriorityLow), AssigneeID: tc.assignee})
			assert.Equal(t, tc.status, statusOf(t, err))
		})
	}
}

func TestCompleteAndEscalate(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 10)
	f.staff("s1", "u1", 3, 0)
	f.staff("s2", "u1", 3, 0)
	ctx := context.Background()
	owner := &domain.Principal{StaffID: "s1", Role: domain.RoleStaff, UnitID: "u1"}
	peer := &domain.Principal{StaffID: "s2", Role: domain.RoleStaff, UnitID: "u1"}

	d, err := f.svc.Submit(ctx, owner, item("W1", domain.PriorityHigh))
	require.NoError(t, err)
	require.Equal(t, "s1", d.Assignment.AssigneeID)

	_, err = f.svc.Complete(ctx, peer, d.Assignment.ID)
	assert.Equal(t, 403, statusOf(t, err))

	closed, err := f.svc.Escalate(ctx, owner, d.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentEscalated, closed.Status)
	require.NotNil(t, closed.ClosedAt)
	assert.Equal(t, 0, f.count(t, "s1"))

	_, err = f.svc.Complete(ctx, owner, d.Assignment.ID)
	assert.Equal(t, 409, statusOf(t, err))
	assert.Equal(t, 0, f.count(t, "s1"), "double release must not go negative")

	_, err = f.svc.Complete(ctx, owner, "ghost")
	assert.Equal(t, 404, statusOf(t, err))

	got, err := f.svc.Get(ctx, owner, d.Assignment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AssignmentEscalated, got.Status)
}

func TestUpdateAvailabilitySignalsCapacity(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 10)
	f.staff("s1", "u1", 3, 0)
	ctx := context.Background()
	self := &domain.Principal{StaffID: "s1", Role: domain.RoleStaff, UnitID: "u1"}
	other := &domain.Principal{StaffID: "s9", Role: domain.RoleStaff, UnitID: "u1"}

	_, err := f.svc.UpdateAvailability(ctx, other, "s1", domain.AvailabilityOnLeave)
	assert.Equal(t, 403, statusOf(t, err))

	profile, err := f.svc.UpdateAvailability(ctx, self, "s1", domain.AvailabilityOnLeave)
	require.NoError(t, err)
	assert.Equal(t, domain.AvailabilityOnLeave, profile.Availability)
	assert.Empty(t, f.eventTypes())

	_, err = f.svc.UpdateAvailability(ctx, self, "s1", domain.AvailabilityAvailable)
	require.NoError(t, err)
	assert.Equal(t, []events.EventType{events.EventCapacityReleased}, f.eventTypes())
}

func TestManagerRedrawRespectsUnit(t *testing.T) {
	f := newFixture(t)
	f.unit("u1", 10)
	f.unit("u2", 10)
	ctx := context.Background()
	unit := "u2"

	entry, err := f.scheduler.Queue.Enqueue(ctx, domain.WorkItem{ID: "W1", Type: domain.WorkItemTask, Priority: domain.PriorityHigh, UnitID: &unit})
	require.NoError(t, err)

	supervisor := &domain.Principal{StaffID: "sup", Role: domain.RoleSupervisor, UnitID: "u1"}
	_, err = f.svc.Redraw(ctx, supervisor, entry.ID)
	assert.Equal(t, 403, statusOf(t, err))

	f.staff("s2", "u2", 1, 0)
	result, err := f.svc.Redraw(ctx, adminPrincipal, entry.ID)
	require.NoError(t, err)
	assert.True(t, result.Assigned())
}

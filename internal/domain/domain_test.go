package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
)

func TestNewCapacityStatus(t *testing.T) {
	tests := map[string]struct {
		current, limit int
		level          domain.CapacityLevel
		pct            float64
		available      int
	}{
		"empty":          {current: 0, limit: 4, level: domain.CapacityAvailable, pct: 0, available: 4},
		"below_near":     {current: 2, limit: 3, level: domain.CapacityAvailable, pct: 66.67, available: 1},
		"exactly_75":     {current: 3, limit: 4, level: domain.CapacityNearLimit, pct: 75, available: 1},
		"near_99":        {current: 99, limit: 100, level: domain.CapacityNearLimit, pct: 99, available: 1},
		"at_limit":       {current: 5, limit: 5, level: domain.CapacityAtLimit, pct: 100, available: 0},
		"forced_over":    {current: 6, limit: 5, level: domain.CapacityAtLimit, pct: 120, available: 0},
		"zero_limit":     {current: 0, limit: 0, level: domain.CapacityAtLimit, pct: 100, available: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			status := domain.NewCapacityStatus(domain.CapacityKindStaff, "s1", tc.current, tc.limit)
			assert.Equal(t, tc.level, status.Level)
			assert.InDelta(t, tc.pct, status.UtilizationPct, 0.001)
			assert.Equal(t, tc.available, status.AvailableCapacity)
		})
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 0, domain.PriorityUrgent.Rank())
	assert.Equal(t, 3, domain.PriorityLow.Rank())
	assert.Equal(t, -1, domain.Priority("critical").Rank())

	p, err := domain.ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityHigh, p)

	_, err = domain.ParsePriority("critical")
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
}

func TestNormalizeSkills(t *testing.T) {
	skills, err := domain.NormalizeSkills([]string{"Arabic", "protocol", "arabic", " legal.review "})
	require.NoError(t, err)
	assert.Equal(t, []string{"arabic", "legal.review", "protocol"}, skills)

	_, err = domain.NormalizeSkills([]string{"bad skill"})
	assert.ErrorIs(t, err, domain.ErrInvalidSkill)

	_, err = domain.NormalizeSkills([]string{""})
	assert.ErrorIs(t, err, domain.ErrInvalidSkill)
}

func TestWorkItemValidate(t *testing.T) {
	empty := ""
	item := domain.WorkItem{ID: "w1", Type: "Dossier", Priority: "Urgent", RequiredSkills: []string{"X"}, UnitID: &empty}
	require.NoError(t, item.Validate())
	assert.Equal(t, domain.WorkItemDossier, item.Type)
	assert.Equal(t, domain.PriorityUrgent, item.Priority)
	assert.Equal(t, []string{"x"}, item.RequiredSkills)
	assert.Nil(t, item.UnitID)

	bad := domain.WorkItem{ID: "w2", Type: "memo", Priority: "normal"}
	assert.ErrorIs(t, bad.Validate(), domain.ErrInvalidWorkItemType)

	missing := domain.WorkItem{Type: "task", Priority: "normal"}
	assert.ErrorIs(t, missing.Validate(), domain.ErrMissingWorkItemID)

	blank := domain.WorkItem{ID: "  \t", Type: "task", Priority: "normal"}
	assert.ErrorIs(t, blank.Validate(), domain.ErrMissingWorkItemID)

	unit := " u1 "
	padded := domain.WorkItem{ID: " W7 ", Type: "task", Priority: "low", UnitID: &unit}
	require.NoError(t, padded.Validate())
	assert.Equal(t, "W7", padded.ID)
	require.NotNil(t, padded.UnitID)
	assert.Equal(t, "u1", *padded.UnitID)
	assert.Equal(t, " u1 ", unit, "caller's value is not modified")
}

func TestStaffProfileHasSkills(t *testing.T) {
	staff := domain.StaffProfile{Skills: []string{"arabic", "protocol"}}
	assert.True(t, staff.HasSkills(nil))
	assert.True(t, staff.HasSkills([]string{"arabic"}))
	assert.True(t, staff.HasSkills([]string{"protocol", "arabic"}))
	assert.False(t, staff.HasSkills([]string{"arabic", "legal"}))
}

func TestQueueLess(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &domain.QueueEntry{Priority: domain.PriorityUrgent, QueuedAt: base.Add(time.Second), Seq: 2}
	b := &domain.QueueEntry{Priority: domain.PriorityUrgent, QueuedAt: base.Add(2 * time.Second), Seq: 3}
	c := &domain.QueueEntry{Priority: domain.PriorityHigh, QueuedAt: base, Seq: 1}
	d := &domain.QueueEntry{Priority: domain.PriorityUrgent, QueuedAt: base.Add(time.Second), Seq: 4}

	assert.True(t, domain.QueueLess(a, b))
	assert.True(t, domain.QueueLess(b, c), "priority dominates timestamp")
	assert.True(t, domain.QueueLess(a, d), "seq breaks timestamp ties")
	assert.False(t, domain.QueueLess(c, a))
}

package sla

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/assignment-service/internal/domain"
)

func TestDefaultPolicyOffsets(t *testing.T) {
	policy := DefaultPolicy()
	tests := map[string]struct {
		typ      domain.WorkItemType
		priority domain.Priority
		want     time.Duration
	}{
		"ticket_urgent":  {domain.WorkItemTicket, domain.PriorityUrgent, 2 * time.Hour},
		"dossier_urgent": {domain.WorkItemDossier, domain.PriorityUrgent, 4 * time.Hour},
		"task_low":       {domain.WorkItemTask, domain.PriorityLow, 7 * 24 * time.Hour},
		"position_high":  {domain.WorkItemPosition, domain.PriorityHigh, 48 * time.Hour},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Offset(tc.typ, tc.priority))
		})
	}
}

func TestDeadlineIsDeterministic(t *testing.T) {
	policy := DefaultPolicy()
	from := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	first := policy.Deadline(from, domain.WorkItemDossier, domain.PriorityNormal)
	second := policy.Deadline(from, domain.WorkItemDossier, domain.PriorityNormal)
	assert.Equal(t, first, second)
	assert.Equal(t, from.Add(72*time.Hour), first)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	content := `
default:
  urgent: 30
types:
  dossier:
    high: 90
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	policy, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, policy.Offset(domain.WorkItemTask, domain.PriorityUrgent))
	assert.Equal(t, 90*time.Minute, policy.Offset(domain.WorkItemDossier, domain.PriorityHigh))
	assert.Equal(t, 30*time.Minute, policy.Offset(domain.WorkItemDossier, domain.PriorityUrgent), "missing override falls back to default row")
	assert.Equal(t, 2*time.Hour, policy.Offset(domain.WorkItemTicket, domain.PriorityUrgent), "built-in type rows survive")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	tests := map[string]string{
		"priority": "default:\n  critical: 10\n",
		"type":     "types:\n  memo:\n    low: 10\n",
		"negative": "default:\n  low: -5\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sla.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	policy, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPolicy(), policy)
}

package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/events"
)

func TestOpenStoresFallsBackToSeededMemory(t *testing.T) {
	dir := t.TempDir()
	seed := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte("units:\n  - {id: u1, name: Ops, wip_limit: 4}\nstaff:\n  - {id: s1, unit_id: u1, wip_limit: 2}\n"), 0o600))

	cfg := &config.Config{App: config.AppConfig{SeedFile: seed}}
	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer stores.Close()
	assert.Nil(t, stores.Postgres)

	scheduler, err := NewScheduler(cfg, stores, events.NewInMemoryDispatcher(nil), nil, zap.NewNop())
	require.NoError(t, err)

	decision, err := scheduler.Admission.Admit(context.Background(), domain.WorkItem{ID: "W1", Type: domain.WorkItemTask, Priority: domain.PriorityHigh})
	require.NoError(t, err)
	require.False(t, decision.Queued())
	assert.Equal(t, "s1", decision.Assignment.AssigneeID)
}

func TestNewSchedulerRejectsBadPolicy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sla.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default:\n  someday: 10\n"), 0o600))

	cfg := &config.Config{SLA: config.SLAConfig{PolicyFile: path}}
	stores, err := OpenStores(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)

	_, err = NewScheduler(cfg, stores, nil, nil, zap.NewNop())
	assert.Error(t, err)
}

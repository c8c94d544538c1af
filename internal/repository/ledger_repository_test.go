package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/persistence"
)

// openTestPool connects to POSTGRES_DSN inside a throwaway schema with the
// migrations applied. Tests skip when no DSN is configured.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	ctx := context.Background()
	schema := "ledger_test_" + uuid.NewString()[:8]

	admin, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.ConnConfig.RuntimeParams["search_path"] = schema
	cfg.MaxConns = 16
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		pool.Close()
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close()
	})

	require.NoError(t, persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	return pool
}

func seedStaff(t *testing.T, pool *pgxpool.Pool, unitLimit, staffLimit, current int) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx, `INSERT INTO org_units (id, name, unit_wip_limit) VALUES ('u1', 'Ops', $1)`, unitLimit)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
        INSERT INTO staff_profiles (id, unit_id, individual_wip_limit, current_assignment_count)
        VALUES ('s1', 'u1', $1, $2)`, staffLimit, current)
	require.NoError(t, err)
}

func staffCount(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT current_assignment_count FROM staff_profiles WHERE id='s1'`).Scan(&n))
	return n
}

func TestPostgresLedgerConcurrentReserve(t *testing.T) {
	const n, limit, current = 50, 10, 5
	pool := openTestPool(t)
	seedStaff(t, pool, 1000, limit, current)
	ledger := NewLedgerRepository(pool)

	var ok, exceeded, other int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := ledger.Reserve(context.Background(), ReserveRequest{
				StaffID:     "s1",
				EnforceUnit: true,
				Assignment:  testAssignment(fmt.Sprintf("W%02d", i)),
			})
			switch {
			case err == nil:
				atomic.AddInt64(&ok, 1)
			case errors.Is(err, domain.ErrCapacityExceeded):
				atomic.AddInt64(&exceeded, 1)
			default:
				atomic.AddInt64(&other, 1)
				t.Errorf("reserve: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, limit-current, ok)
	assert.EqualValues(t, n-(limit-current), exceeded)
	assert.Zero(t, other)
	assert.Equal(t, limit, staffCount(t, pool))

	var unitCount, active int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT current_assignment_count FROM org_units WHERE id='u1'`).Scan(&unitCount))
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM assignments WHERE status='active'`).Scan(&active))
	assert.Equal(t, limit-current, unitCount)
	assert.Equal(t, limit-current, active)
}

func TestPostgresScheduleGuardSpansTables(t *testing.T) {
	pool := openTestPool(t)
	seedStaff(t, pool, 100, 5, 0)
	ledger := NewLedgerRepository(pool)
	queue := NewQueueRepository(pool)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, ledger.Reserve(ctx, ReserveRequest{StaffID: "s1", Assignment: testAssignment("W1")}))
	err := queue.Enqueue(ctx, testEntry("W1", nil, now))
	assert.ErrorIs(t, err, domain.ErrAlreadyScheduled)

	entry := testEntry("W2", nil, now)
	require.NoError(t, queue.Enqueue(ctx, entry))
	err = ledger.Reserve(ctx, ReserveRequest{StaffID: "s1", Assignment: testAssignment("W2")})
	assert.ErrorIs(t, err, domain.ErrAlreadyScheduled)
	assert.Equal(t, 1, staffCount(t, pool), "refused reservation rolls back")

	require.NoError(t, ledger.Reserve(ctx, ReserveRequest{StaffID: "s1", Assignment: testAssignment("W2"), DequeueID: entry.ID}))
	_, err = queue.GetByWorkItem(ctx, "W2")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	ghost := "ghost"
	err = queue.Enqueue(ctx, testEntry("W3", &ghost, now))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func testAssignment(workItemID string) *domain.Assignment {
	return &domain.Assignment{
		ID:           uuid.NewString(),
		WorkItemID:   workItemID,
		WorkItemType: domain.WorkItemTicket,
		Priority:     domain.PriorityNormal,
		Status:       domain.AssignmentActive,
		SLADeadline:  time.Now().Add(time.Hour),
		CreatedAt:    time.Now(),
	}
}

func testEntry(workItemID string, unitID *string, at time.Time) *domain.QueueEntry {
	return &domain.QueueEntry{
		ID:           uuid.NewString(),
		WorkItemID:   workItemID,
		WorkItemType: domain.WorkItemTicket,
		Priority:     domain.PriorityNormal,
		UnitID:       unitID,
		QueuedAt:     at,
	}
}

// Package bootstrap builds the storage backends and scheduler shared by the
// API server and the operator CLI.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/repository/memory"
	"github.com/spec-kit/assignment-service/internal/service"
	"github.com/spec-kit/assignment-service/internal/sla"
)

// Stores is one consistent set of repositories over a single backend.
type Stores struct {
	Staff       repository.StaffRepository
	Units       repository.UnitRepository
	Assignments repository.AssignmentRepository
	Queue       repository.QueueRepository
	Ledger      repository.LedgerStore
	// Postgres is nil when running on the in-memory store.
	Postgres *persistence.Postgres
}

// Close releases the backend.
func (s *Stores) Close() {
	if s.Postgres != nil {
		s.Postgres.Close()
	}
}

// OpenStores connects to Postgres when a DSN is configured, applying
// migrations if enabled, and otherwise falls back to the in-memory store.
func OpenStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Stores, error) {
	if cfg.Postgres.DSN == "" {
		logger.Warn("POSTGRES_DSN not provided; using in-memory store")
		store := memory.New()
		if cfg.App.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.App.SeedFile); err != nil {
				return nil, err
			}
			logger.Info("memory store seeded", zap.String("file", cfg.App.SeedFile))
		}
		return &Stores{
			Staff:       store.Staff(),
			Units:       store.Units(),
			Assignments: store.Assignments(),
			Queue:       store.Queue(),
			Ledger:      store.Ledger(),
		}, nil
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	pool := pg.PoolHandle()
	return &Stores{
		Staff:       repository.NewStaffRepository(pool),
		Units:       repository.NewUnitRepository(pool),
		Assignments: repository.NewAssignmentRepository(pool),
		Queue:       repository.NewQueueRepository(pool),
		Ledger:      repository.NewLedgerRepository(pool),
		Postgres:    pg,
	}, nil
}

// NewScheduler loads the SLA policy and wires the scheduler over stores.
func NewScheduler(cfg *config.Config, stores *Stores, dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) (*service.Scheduler, error) {
	policy, err := sla.Load(cfg.SLA.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load sla policy: %w", err)
	}
	return service.NewScheduler(service.SchedulerDependencies{
		StaffRepo:      stores.Staff,
		UnitRepo:       stores.Units,
		AssignmentRepo: stores.Assignments,
		QueueRepo:      stores.Queue,
		LedgerStore:    stores.Ledger,
		Dispatcher:     dispatcher,
		SLA:            policy,
		Config:         cfg.Scheduler,
		Metrics:        metrics,
		Logger:         logger,
	}), nil
}

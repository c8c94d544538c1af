package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/repository"
	"github.com/spec-kit/assignment-service/internal/sla"
)

// Scheduler groups the scheduling components sharing one set of stores.
type Scheduler struct {
	Ledger    *Ledger
	Matcher   *Matcher
	Admission *AdmissionController
	Queue     *QueueManager
	Capacity  *CapacityService
}

// SchedulerDependencies bundles repositories and collaborators.
type SchedulerDependencies struct {
	StaffRepo      repository.StaffRepository
	UnitRepo       repository.UnitRepository
	AssignmentRepo repository.AssignmentRepository
	QueueRepo      repository.QueueRepository
	LedgerStore    repository.LedgerStore
	Dispatcher     events.Dispatcher
	SLA            *sla.Policy
	Config         config.SchedulerConfig
	Metrics        *observability.Metrics
	Logger         *zap.Logger
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewScheduler wires the ledger, matcher, admission controller, queue manager
// and capacity query service together.
func NewScheduler(deps SchedulerDependencies) *Scheduler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.SLA == nil {
		deps.SLA = sla.DefaultPolicy()
	}

	ledger := &Ledger{
		store:       deps.LedgerStore,
		staff:       deps.StaffRepo,
		units:       deps.UnitRepo,
		enforceUnit: deps.Config.EnforceUnitLimit,
		metrics:     deps.Metrics,
	}
	matcher := &Matcher{
		staff: deps.StaffRepo,
		limit: deps.Config.MaxCandidates,
	}
	queue := &QueueManager{
		repo:       deps.QueueRepo,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Clock,
	}
	admission := &AdmissionController{
		matcher:     matcher,
		ledger:      ledger,
		queue:       queue,
		assignments: deps.AssignmentRepo,
		units:       deps.UnitRepo,
		sla:         deps.SLA,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		now:         deps.Clock,
	}
	queue.admission = admission

	return &Scheduler{
		Ledger:    ledger,
		Matcher:   matcher,
		Admission: admission,
		Queue:     queue,
		Capacity:  &CapacityService{ledger: ledger, staff: deps.StaffRepo, units: deps.UnitRepo},
	}
}

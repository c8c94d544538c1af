package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/assignment-service/internal/api/http"
	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/bootstrap"
	"github.com/spec-kit/assignment-service/internal/config"
	"github.com/spec-kit/assignment-service/internal/events"
	"github.com/spec-kit/assignment-service/internal/observability"
	"github.com/spec-kit/assignment-service/internal/persistence"
	"github.com/spec-kit/assignment-service/internal/realtime"
	"github.com/spec-kit/assignment-service/internal/service"
	"github.com/spec-kit/assignment-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, err := bootstrap.OpenStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	scheduler, err := bootstrap.NewScheduler(cfg, stores, dispatcher, metrics, logger)
	if err != nil {
		logger.Fatal("failed to build scheduler", zap.Error(err))
	}
	assignments := service.NewAssignmentService(service.AssignmentDependencies{
		Scheduler:      scheduler,
		StaffRepo:      stores.Staff,
		AssignmentRepo: stores.Assignments,
		QueueRepo:      stores.Queue,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	var lease worker.Lease
	if redis.Enabled() {
		lease = worker.NewRedisLease(redis.Client, cfg.App.Name+":redraw-lease", cfg.Scheduler.RedrawLockTTL())
		bridge := events.NewRedisBridge(redis.Client, dispatcher, logger)
		go bridge.Listen(ctx)
	}
	redraw := worker.NewRedrawWorker(worker.RedrawWorkerDependencies{
		Queue:    scheduler.Queue,
		Lease:    lease,
		Interval: cfg.Scheduler.RedrawInterval(),
		Batch:    cfg.Scheduler.RedrawBatch,
		Logger:   logger,
	})
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartEventSubscribers(dispatcher, notifications, redraw)
	go redraw.Run(ctx)

	hub := realtime.NewHub(logger)
	hub.Subscribe(dispatcher)
	go hub.Run(ctx)

	deps := map[string]handlers.Pinger{"redis": nil}
	if stores.Postgres != nil {
		deps["postgres"] = stores.Postgres
	}
	if redis.Enabled() {
		deps["redis"] = redis
	}

	tokens := auth.NewTokenManager(cfg.Auth)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, deps),
		Assignments:    handlers.NewAssignmentsHandler(assignments),
		Queue:          handlers.NewQueueHandler(assignments),
		Capacity:       handlers.NewCapacityHandler(assignments),
		Staff:          handlers.NewStaffHandler(assignments),
		Realtime:       handlers.NewRealtimeHandler(hub),
		Metrics:        metrics,
		AuthMiddleware: auth.NewAuthMiddleware(tokens, stores.Staff),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

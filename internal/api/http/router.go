package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Assignments    *handlers.AssignmentsHandler
	Queue          *handlers.QueueHandler
	Capacity       *handlers.CapacityHandler
	Staff          *handlers.StaffHandler
	Realtime       *handlers.RealtimeHandler
	Metrics        *observability.Metrics
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	protected := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireRole())
	managers := auth.RequireRole(domain.RoleSupervisor, domain.RoleAdmin)

	assignments := protected.Group("/assignments")
	assignments.Post("/auto-assign", cfg.Assignments.AutoAssign)
	assignments.Post("/manual", managers, cfg.Assignments.Manual)
	assignments.Get("/queue", cfg.Queue.List)
	assignments.Post("/queue/:id/redraw", managers, cfg.Queue.Redraw)
	assignments.Get("/:id", cfg.Assignments.Get)
	assignments.Post("/:id/complete", cfg.Assignments.Complete)
	assignments.Post("/:id/escalate", cfg.Assignments.Escalate)

	protected.Get("/capacity-check", cfg.Capacity.Check)
	protected.Patch("/staff/:id/availability", cfg.Staff.UpdateAvailability)

	if cfg.Realtime != nil {
		protected.Get("/ws/queue", cfg.Realtime.Upgrade, cfg.Realtime.Stream())
	}
}

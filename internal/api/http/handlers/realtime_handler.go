package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/spec-kit/assignment-service/internal/realtime"
)

// RealtimeHandler upgrades dashboard connections onto the realtime hub.
type RealtimeHandler struct {
	hub *realtime.Hub
}

// NewRealtimeHandler constructs handler.
func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Upgrade rejects plain HTTP requests to the socket route.
func (h *RealtimeHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

// Stream handles GET /ws/queue.
func (h *RealtimeHandler) Stream() fiber.Handler {
	return websocket.New(h.hub.Serve)
}

// Package realtime pushes scheduling events to connected dashboard sockets.
package realtime

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/assignment-service/internal/events"
)

// Client is the part of a socket connection the hub writes to.
type Client interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub fans broadcast messages out to registered clients. All client
// bookkeeping happens on the Run goroutine.
type Hub struct {
	register   chan Client
	unregister chan Client
	broadcast  chan []byte
	done       chan struct{}
	clients    map[Client]struct{}
	logger     *zap.Logger
}

// NewHub creates an idle hub; call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		register:   make(chan Client),
		unregister: make(chan Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		clients:    make(map[Client]struct{}),
		logger:     logger,
	}
}

// Run serves the hub until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				_ = c.Close()
				delete(h.clients, c)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				_ = c.Close()
			}
		case msg := <-h.broadcast:
			for c := range h.clients {
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.logger.Debug("dropping realtime client", zap.Error(err))
					delete(h.clients, c)
					_ = c.Close()
				}
			}
		}
	}
}

// Register adds a client. After Run has stopped the client is closed instead.
func (h *Hub) Register(c Client) {
	select {
	case h.register <- c:
	case <-h.done:
		_ = c.Close()
	}
}

// Unregister removes and closes a client.
func (h *Hub) Unregister(c Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// HandleEvent is a dispatcher subscriber. A full buffer drops the message
// rather than stalling the publisher.
func (h *Hub) HandleEvent(_ context.Context, event events.Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- body:
	default:
		h.logger.Warn("realtime buffer full; event dropped", zap.String("event_type", string(event.Type)))
	}
	return nil
}

// Subscribe attaches the hub to the dashboard-relevant events.
func (h *Hub) Subscribe(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventAssignmentCreated, h.HandleEvent)
	dispatcher.Subscribe(events.EventWorkItemQueued, h.HandleEvent)
	dispatcher.Subscribe(events.EventAssignmentReleased, h.HandleEvent)
}

// Serve is the websocket handler: it registers the connection and blocks
// reading until the peer goes away.
func (h *Hub) Serve(c *websocket.Conn) {
	h.Register(c)
	defer h.Unregister(c)

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("realtime client closed unexpectedly", zap.Error(err))
			}
			return
		}
	}
}

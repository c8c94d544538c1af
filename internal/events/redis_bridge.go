package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CapacityChannel is the Redis channel carrying capacity.released signals.
const CapacityChannel = "assignment-service:capacity.released"

type envelope struct {
	Origin string `json:"origin"`
	Event  Event  `json:"event"`
}

// RedisBridge relays capacity.released between processes so every redraw
// worker wakes when any process frees a slot.
type RedisBridge struct {
	client *redis.Client
	local  Dispatcher
	logger *zap.Logger
	origin string
}

// NewRedisBridge wires the bridge to the local dispatcher.
func NewRedisBridge(client *redis.Client, local Dispatcher, logger *zap.Logger) *RedisBridge {
	b := &RedisBridge{
		client: client,
		local:  local,
		logger: logger,
		origin: uuid.NewString(),
	}
	local.Subscribe(EventCapacityReleased, b.forward)
	return b
}

func (b *RedisBridge) forward(ctx context.Context, event Event) error {
	if event.Origin != "" {
		return nil
	}
	body, err := json.Marshal(envelope{Origin: b.origin, Event: event})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return b.client.Publish(ctx, CapacityChannel, body).Err()
}

// Listen republishes remote signals locally until ctx is done.
func (b *RedisBridge) Listen(ctx context.Context) {
	sub := b.client.Subscribe(ctx, CapacityChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.logger.Warn("discarding malformed capacity signal", zap.Error(err))
				continue
			}
			if env.Origin == b.origin {
				continue
			}
			env.Event.Origin = env.Origin
			_ = b.local.Publish(ctx, env.Event)
		}
	}
}

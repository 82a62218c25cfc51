// Package events publishes domain events on Redis Pub/Sub so the gateway can
// forward them to clients (SSE).
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel names. Every event payload also carries its channel under "type".
const (
	JobsIngested           = "EVENT_JOBS_INGESTED"
	RecommendationsUpdated = "EVENT_RECOMMENDATIONS_UPDATED"
	CardMoved              = "EVENT_CARD_MOVED"
)

// Publisher sends one event on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload map[string]any) error
}

// RedisPublisher publishes JSON payloads with PUBLISH.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher wraps rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// Publish marshals payload (plus its type) and publishes it on channel.
func (p *RedisPublisher) Publish(ctx context.Context, channel string, payload map[string]any) error {
	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = channel

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", channel, err)
	}
	if err := p.rdb.Publish(ctx, channel, body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, map[string]any) error { return nil }

// Emit publishes and logs failures without returning them. Event delivery
// never fails the operation that produced the event.
func Emit(ctx context.Context, p Publisher, log *zap.Logger, channel string, payload map[string]any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, channel, payload); err != nil {
		log.Warn("event publish failed", zap.String("channel", channel), zap.Error(err))
	}
}

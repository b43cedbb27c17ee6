package eventpublisher

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/cashbook/internal/domain"
)

// RedisPublisher publishes events to a Redis pub/sub channel.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish sends the event envelope to the channel.
func (p *RedisPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg, err := Encode(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	return p.client.Publish(ctx, p.channel, msg).Err()
}

package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

var _ ports.RealtimePush = (*RedisPublisher)(nil)

// Envelope is the JSON message published on a courier channel.
type Envelope struct {
	Event   string    `json:"event"`
	SentAt  time.Time `json:"sent_at"`
	Payload any       `json:"payload"`
}

// Channel names the pub/sub channel a courier's device subscribes to.
func Channel(courierID kernel.UUID) string {
	return "courier:" + courierID.String()
}

// RedisPublisher fans push events out through Redis pub/sub. A message
// published while the courier is not subscribed is lost.
type RedisPublisher struct {
	client redis.Cmdable
	clock  ports.Clock
}

func NewRedisPublisher(client redis.Cmdable, clock ports.Clock) *RedisPublisher {
	return &RedisPublisher{client: client, clock: clock}
}

func (p *RedisPublisher) Send(ctx context.Context, courierID kernel.UUID, eventType string, payload any) error {
	message, err := json.Marshal(Envelope{Event: eventType, SentAt: p.clock.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", eventType, err)
	}

	if err = p.client.Publish(ctx, Channel(courierID), message).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}
	return nil
}

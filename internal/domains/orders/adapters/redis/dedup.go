package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

const (
	eventKeyPrefix = "payment-event:"
	eventKeyTTL    = 24 * time.Hour
)

var _ ports.EventDedup = (*EventDedup)(nil)

// EventDedup deduplicates payment-provider webhook events across processes
// using SET NX with a TTL matching the provider's redelivery window.
type EventDedup struct {
	client *redis.Client
}

// NewEventDedup wires the redis-backed dedup store.
func NewEventDedup(client *redis.Client) *EventDedup {
	return &EventDedup{client: client}
}

// MarkProcessed records the event ID, reporting whether it was first seen.
func (d *EventDedup) MarkProcessed(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, eventKeyPrefix+eventID, 1, eventKeyTTL).Result()
}

// Forget releases a claimed event ID so a redelivery can retry.
func (d *EventDedup) Forget(ctx context.Context, eventID string) error {
	return d.client.Del(ctx, eventKeyPrefix+eventID).Err()
}

package memory

import (
	"context"
	"sync"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.EventDedup = (*EventDedup)(nil)

// EventDedup is the in-memory fallback for webhook event deduplication when
// no redis is configured.
type EventDedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewEventDedup constructs an empty dedup store.
func NewEventDedup() *EventDedup {
	return &EventDedup{seen: map[string]struct{}{}}
}

// MarkProcessed records the event ID, reporting whether it was first seen.
func (d *EventDedup) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = struct{}{}
	return true, nil
}

// Forget releases a claimed event ID so a redelivery can retry.
func (d *EventDedup) Forget(_ context.Context, eventID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, eventID)
	return nil
}

package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
	"github.com/craftsite/fulfillment-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory persistence adapter used for development and
// tests. It honors the same version compare-and-swap contract as the
// postgres adapter.
type Repository struct {
	mu        sync.RWMutex
	orders    map[string]*storedOrder
	documents map[string][]*domain.Deliverable
	revisions map[string][]*domain.RevisionRequest
	now       func() time.Time
}

type storedOrder struct {
	order    *domain.Order
	metadata projection.Metadata
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{
		orders:    map[string]*storedOrder{},
		documents: map[string][]*domain.Deliverable{},
		revisions: map[string][]*domain.RevisionRequest{},
		now:       time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Create inserts a new order with version 1.
func (r *Repository) Create(_ context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("cannot save nil order")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[order.ID]; exists {
		return nil, ports.ErrVersionConflict
	}
	clone := cloneOrder(order)
	clone.Version = 1
	timestamp := r.now()
	stored := &storedOrder{
		order:    clone,
		metadata: projection.Metadata{CreatedAt: timestamp, UpdatedAt: timestamp},
	}
	r.orders[clone.ID] = stored
	order.Version = clone.Version
	return projectionCopy(stored), nil
}

// GetByID returns a defensive copy of the stored order.
func (r *Repository) GetByID(_ context.Context, id string) (*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projectionCopy(stored), nil
}

// Update commits the order only when the expected version still holds.
func (r *Repository) Update(_ context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
	if order == nil {
		return nil, errors.New("cannot save nil order")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.updateLocked(order, expectedVersion)
}

// UpdateWithRevision commits the order update and the revision record under
// one lock hold; a failed compare-and-swap persists neither.
func (r *Repository) UpdateWithRevision(_ context.Context, order *domain.Order, expectedVersion int64, request *domain.RevisionRequest) (*projection.Projection[*domain.Order], *domain.RevisionRequest, error) {
	if order == nil {
		return nil, nil, errors.New("cannot save nil order")
	}
	if request == nil {
		return nil, nil, errors.New("cannot save nil revision request")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	proj, err := r.updateLocked(order, expectedVersion)
	if err != nil {
		return nil, nil, err
	}
	saved := r.appendRevisionLocked(request)
	return proj, saved, nil
}

func (r *Repository) updateLocked(order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error) {
	stored, ok := r.orders[order.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.order.Version != expectedVersion {
		return nil, ports.ErrVersionConflict
	}
	clone := cloneOrder(order)
	clone.Version = expectedVersion + 1
	updated := &storedOrder{
		order: clone,
		metadata: projection.Metadata{
			CreatedAt: stored.metadata.CreatedAt,
			UpdatedAt: r.now(),
		},
	}
	r.orders[clone.ID] = updated
	order.Version = clone.Version
	return projectionCopy(updated), nil
}

// ListByCustomer returns every order owned by the customer.
func (r *Repository) ListByCustomer(_ context.Context, customerID string) ([]*projection.Projection[*domain.Order], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*projection.Projection[*domain.Order]
	for _, stored := range r.orders {
		if stored.order.CustomerID == customerID {
			result = append(result, projectionCopy(stored))
		}
	}
	return result, nil
}

// AddDeliverable appends a document to the order's list.
func (r *Repository) AddDeliverable(_ context.Context, deliverable *domain.Deliverable) (*domain.Deliverable, error) {
	if deliverable == nil {
		return nil, errors.New("cannot save nil deliverable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[deliverable.OrderID]; !ok {
		return nil, ports.ErrNotFound
	}
	clone := *deliverable
	clone.CreatedAt = r.now()
	r.documents[clone.OrderID] = append(r.documents[clone.OrderID], &clone)
	saved := clone
	return &saved, nil
}

// ListDeliverables returns the order's documents in insertion order.
func (r *Repository) ListDeliverables(_ context.Context, orderID string) ([]*domain.Deliverable, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.documents[orderID]
	result := make([]*domain.Deliverable, 0, len(docs))
	for _, doc := range docs {
		clone := *doc
		result = append(result, &clone)
	}
	return result, nil
}

// AddRevisionRequest appends a revision record to the order's list.
func (r *Repository) AddRevisionRequest(_ context.Context, request *domain.RevisionRequest) (*domain.RevisionRequest, error) {
	if request == nil {
		return nil, errors.New("cannot save nil revision request")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[request.OrderID]; !ok {
		return nil, ports.ErrNotFound
	}
	return r.appendRevisionLocked(request), nil
}

func (r *Repository) appendRevisionLocked(request *domain.RevisionRequest) *domain.RevisionRequest {
	clone := *request
	clone.AttachmentRefs = append([]string{}, request.AttachmentRefs...)
	clone.CreatedAt = r.now()
	r.revisions[clone.OrderID] = append(r.revisions[clone.OrderID], &clone)
	saved := clone
	return &saved
}

// ListRevisionRequests returns the order's revision history.
func (r *Repository) ListRevisionRequests(_ context.Context, orderID string) ([]*domain.RevisionRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	requests := r.revisions[orderID]
	result := make([]*domain.RevisionRequest, 0, len(requests))
	for _, request := range requests {
		clone := *request
		clone.AttachmentRefs = append([]string{}, request.AttachmentRefs...)
		result = append(result, &clone)
	}
	return result, nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	if order.ExpectedDeliveryDate != nil {
		date := *order.ExpectedDeliveryDate
		clone.ExpectedDeliveryDate = &date
	}
	if order.Onboarding != nil {
		profile := *order.Onboarding
		clone.Onboarding = &profile
	}
	return &clone
}

func projectionCopy(stored *storedOrder) *projection.Projection[*domain.Order] {
	return &projection.Projection[*domain.Order]{
		Entity:   cloneOrder(stored.order),
		Metadata: stored.metadata,
	}
}

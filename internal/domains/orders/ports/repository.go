package ports

import (
	"context"
	"errors"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/shared/projection"
)

var (
	// ErrNotFound signals the referenced order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrVersionConflict signals the order changed between read and write.
	// The transition engine surfaces it as a lost race.
	ErrVersionConflict = errors.New("order version conflict")
)

// Repository persists orders and their append-only children. Update is the
// only mutator for existing orders and must be atomic: it compares the
// expected version and either commits the whole new state or nothing.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*projection.Projection[*domain.Order], error)
	GetByID(ctx context.Context, id string) (*projection.Projection[*domain.Order], error)
	Update(ctx context.Context, order *domain.Order, expectedVersion int64) (*projection.Projection[*domain.Order], error)

	// UpdateWithRevision commits the order update and appends the revision
	// record in one atomic write: either both persist or neither does.
	UpdateWithRevision(ctx context.Context, order *domain.Order, expectedVersion int64, request *domain.RevisionRequest) (*projection.Projection[*domain.Order], *domain.RevisionRequest, error)

	ListByCustomer(ctx context.Context, customerID string) ([]*projection.Projection[*domain.Order], error)

	AddDeliverable(ctx context.Context, deliverable *domain.Deliverable) (*domain.Deliverable, error)
	ListDeliverables(ctx context.Context, orderID string) ([]*domain.Deliverable, error)

	AddRevisionRequest(ctx context.Context, request *domain.RevisionRequest) (*domain.RevisionRequest, error)
	ListRevisionRequests(ctx context.Context, orderID string) ([]*domain.RevisionRequest, error)
}

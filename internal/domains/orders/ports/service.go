package ports

import (
	"context"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
)

// Service defines the order fulfillment use cases exposed to adapters
// (inbound/driving port). Every mutation returns the authoritative new
// OrderView; callers render from the response, never from an assumed effect.
type Service interface {
	CreateOrder(ctx context.Context, input ordertypes.CreateOrderInput) (*ordertypes.OrderView, error)
	GetOrderView(ctx context.Context, orderID string) (*ordertypes.OrderView, error)
	ListCustomerOrders(ctx context.Context, customerID string) ([]*ordertypes.OrderView, error)
	GetPermittedActions(ctx context.Context, orderID string, actor ordertypes.Actor) ([]string, error)

	CapturePayment(ctx context.Context, input ordertypes.PaymentCapturedInput) (*ordertypes.OrderView, error)
	SubmitOnboarding(ctx context.Context, input ordertypes.OnboardingInput) (*ordertypes.OrderView, error)
	StartBuild(ctx context.Context, input ordertypes.BuildStartedInput) (*ordertypes.OrderView, error)
	ReadyForReview(ctx context.Context, input ordertypes.BuildReadyInput) (*ordertypes.OrderView, error)
	ApproveOrder(ctx context.Context, input ordertypes.ApproveInput) (*ordertypes.OrderView, error)
	RequestRevision(ctx context.Context, input ordertypes.RevisionRequestInput) (*ordertypes.RevisionOutcome, error)
	CancelOrder(ctx context.Context, input ordertypes.CancelInput) (*ordertypes.OrderView, error)

	AddDeliverable(ctx context.Context, input ordertypes.AddDeliverableInput) (*ordertypes.DeliverableView, error)
	ListDeliverables(ctx context.Context, orderID string, actor ordertypes.Actor) ([]*ordertypes.DeliverableView, error)
}

package ports

import (
	"context"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
)

// EventDedup remembers externally-issued event identifiers so redelivered
// webhooks short-circuit instead of surfacing a transition conflict.
type EventDedup interface {
	// MarkProcessed records the event ID and reports whether this call was
	// the first to see it.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)

	// Forget releases a previously marked event ID. Callers that claim an ID
	// but fail to apply its event must release it so the provider's
	// redelivery gets another attempt.
	Forget(ctx context.Context, eventID string) error
}

// DeliveryNotifier fans out post-delivery collaborator calls (email, CRM).
// Invoked after the delivered transition commits; failures are the
// notifier's own concern and never roll back the transition.
type DeliveryNotifier interface {
	NotifyDelivered(ctx context.Context, view ordertypes.OrderView) error
}

// MailSender hands a delivery announcement to the mail collaborator.
// Templating and transport live outside this service.
type MailSender interface {
	SendDeliveryEmail(ctx context.Context, to, siteURL string) error
}

// CRMSync pushes the delivered order to the CRM collaborator.
type CRMSync interface {
	SyncDelivered(ctx context.Context, orderID, customerEmail, siteURL string) error
}

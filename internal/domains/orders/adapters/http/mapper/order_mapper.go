package mapper

import (
	"time"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
)

// CreateOrderRequest is the checkout payload.
type CreateOrderRequest struct {
	CustomerID        string `json:"customerId" binding:"required"`
	CustomerEmail     string `json:"customerEmail" binding:"required"`
	TotalPriceCents   int64  `json:"totalPriceCents"`
	RevisionsIncluded int    `json:"revisionsIncluded"`
}

// ToCreateOrderInput converts the transport payload to the use-case input.
func ToCreateOrderInput(req CreateOrderRequest) ordertypes.CreateOrderInput {
	return ordertypes.CreateOrderInput{
		CustomerID:        req.CustomerID,
		CustomerEmail:     req.CustomerEmail,
		TotalPriceCents:   req.TotalPriceCents,
		RevisionsIncluded: req.RevisionsIncluded,
	}
}

// PaymentWebhookRequest is the payment provider's capture notification.
type PaymentWebhookRequest struct {
	OrderID     string `json:"orderId" binding:"required"`
	EventID     string `json:"eventId"`
	AmountCents int64  `json:"amountCents"`
}

// ToPaymentCapturedInput converts the webhook payload.
func ToPaymentCapturedInput(req PaymentWebhookRequest) ordertypes.PaymentCapturedInput {
	return ordertypes.PaymentCapturedInput{
		OrderID:     req.OrderID,
		EventID:     req.EventID,
		AmountCents: req.AmountCents,
	}
}

// OnboardingRequest is the onboarding brief payload.
type OnboardingRequest struct {
	BusinessName string `json:"businessName"`
	Location     string `json:"location"`
	BrandColor   string `json:"brandColor"`
}

// ToOnboardingInput converts the onboarding payload.
func ToOnboardingInput(orderID string, req OnboardingRequest) ordertypes.OnboardingInput {
	return ordertypes.OnboardingInput{
		OrderID: orderID,
		Profile: ordertypes.BusinessProfileInput{
			BusinessName: req.BusinessName,
			Location:     req.Location,
			BrandColor:   req.BrandColor,
		},
	}
}

// BuildStartRequest is the internal pipeline's build kickoff payload.
type BuildStartRequest struct {
	ExpectedDeliveryDate time.Time `json:"expectedDeliveryDate" binding:"required"`
}

// BuildReadyRequest is the internal pipeline's review handoff payload.
type BuildReadyRequest struct {
	PreviewURL string `json:"previewUrl" binding:"required"`
}

// RevisionRequest is the client's change request payload.
type RevisionRequest struct {
	Message        string   `json:"message"`
	AttachmentRefs []string `json:"attachmentRefs"`
}

// AddDeliverableRequest creates a planning document.
type AddDeliverableRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ToAddDeliverableInput converts the deliverable payload.
func ToAddDeliverableInput(orderID string, req AddDeliverableRequest) ordertypes.AddDeliverableInput {
	return ordertypes.AddDeliverableInput{
		OrderID: orderID,
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
	}
}

// ActionsResponse lists the actions the actor may take on an order.
type ActionsResponse struct {
	OrderID string   `json:"orderId"`
	Actions []string `json:"actions"`
}

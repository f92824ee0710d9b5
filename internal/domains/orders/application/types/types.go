package types

import "time"

// Actor identifies the caller of a gated operation. The portal's auth proxy
// resolves the session and passes the identity explicitly; the core never
// reads ambient state.
type Actor struct {
	ID       string
	Internal bool
}

// OrderView is the single shape every dashboard and portal page renders
// from. Progress fields are resolved from the canonical status exactly once,
// here, so no surface re-derives its own percent table.
type OrderView struct {
	ID                   string     `json:"id"`
	Status               string     `json:"status"`
	Percent              int        `json:"percent"`
	Step                 int        `json:"step"`
	ColorClass           string     `json:"colorClass"`
	Icon                 string     `json:"icon"`
	RevisionsUsed        int        `json:"revisionsUsed"`
	RevisionsIncluded    int        `json:"revisionsIncluded"`
	TotalPriceCents      int64      `json:"totalPriceCents"`
	SiteURL              string     `json:"siteUrl,omitempty"`
	PreviewURL           string     `json:"previewUrl,omitempty"`
	ExpectedDeliveryDate *time.Time `json:"expectedDeliveryDate,omitempty"`
	CustomerID           string     `json:"customerId"`
	CustomerEmail        string     `json:"customerEmail,omitempty"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// CreateOrderInput captures the checkout data an order is born from.
type CreateOrderInput struct {
	CustomerID        string
	CustomerEmail     string
	TotalPriceCents   int64
	RevisionsIncluded int
}

// PaymentCapturedInput is the inbound payment webhook event.
type PaymentCapturedInput struct {
	OrderID     string
	EventID     string
	AmountCents int64
}

// BusinessProfileInput is the onboarding brief payload.
type BusinessProfileInput struct {
	BusinessName string
	Location     string
	BrandColor   string
}

// OnboardingInput carries the onboarding_submitted event.
type OnboardingInput struct {
	OrderID string
	Profile BusinessProfileInput
}

// BuildStartedInput carries the internal build_started event.
type BuildStartedInput struct {
	OrderID              string
	ExpectedDeliveryDate time.Time
}

// BuildReadyInput carries the internal build_ready_for_review event.
type BuildReadyInput struct {
	OrderID    string
	PreviewURL string
}

// ApproveInput carries the client_approves event.
type ApproveInput struct {
	OrderID string
	Actor   Actor
}

// RevisionRequestInput carries the client_requests_revision event.
type RevisionRequestInput struct {
	OrderID        string
	Actor          Actor
	Message        string
	AttachmentRefs []string
}

// RevisionOutcome is what a committed revision request returns: the new
// authoritative view plus the billing classification recorded on the
// RevisionRequest.
type RevisionOutcome struct {
	View           OrderView `json:"order"`
	RevisionID     string    `json:"revisionId"`
	Classification string    `json:"classification"`
}

// CancelInput carries the cancel event.
type CancelInput struct {
	OrderID string
	Actor   Actor
}

// AddDeliverableInput creates a read-only planning document for an order.
type AddDeliverableInput struct {
	OrderID string
	Type    string
	Title   string
	Content string
}

// DeliverableView is the customer-facing deliverable shape.
type DeliverableView struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"orderId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

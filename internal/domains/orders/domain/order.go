package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidTransition signals the requested event does not apply to the
	// order's current canonical state.
	ErrInvalidTransition = errors.New("invalid order transition")

	ErrEmptyCustomer   = errors.New("customer id and email are required")
	ErrNegativePrice   = errors.New("total price must be zero or greater")
	ErrNegativeQuota   = errors.New("included revisions must be zero or greater")
	ErrMissingPreview  = errors.New("preview url is required")
	ErrMissingSiteURL  = errors.New("publish site url is required")
)

// ValidationError carries the specific fields that failed a guard
// precondition so the transport layer can surface them verbatim.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// BusinessProfile is the onboarding brief attached before briefing begins.
type BusinessProfile struct {
	BusinessName string
	Location     string
	BrandColor   string
}

// Validate checks the required onboarding fields.
func (p BusinessProfile) Validate() error {
	fields := map[string]string{}
	if strings.TrimSpace(p.BusinessName) == "" {
		fields["businessName"] = "business name is required"
	}
	if strings.TrimSpace(p.Location) == "" {
		fields["location"] = "location is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// RevisionClassification tags a revision request for downstream billing.
type RevisionClassification string

const (
	RevisionIncluded RevisionClassification = "included"
	RevisionExtra    RevisionClassification = "extra"
)

// Order is the fulfillment aggregate. Status only moves through the guarded
// transition methods below; everything else the portal renders derives from
// it via Resolve and PermittedActions.
type Order struct {
	ID                   string
	Status               Status
	TotalPriceCents      int64
	RevisionsIncluded    int
	RevisionsUsed        int
	ExpectedDeliveryDate *time.Time
	SiteURL              string
	PreviewURL           string
	Onboarding           *BusinessProfile
	CustomerID           string
	CustomerEmail        string
	Version              int64
}

// NewOrder builds a checkout-fresh order in pending_payment.
func NewOrder(customerID, customerEmail string, totalPriceCents int64, revisionsIncluded int) (*Order, error) {
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(customerEmail) == "" {
		return nil, ErrEmptyCustomer
	}
	if totalPriceCents < 0 {
		return nil, ErrNegativePrice
	}
	if revisionsIncluded < 0 {
		return nil, ErrNegativeQuota
	}
	return &Order{
		ID:                customerOrderID(),
		Status:            StatusPendingPayment,
		TotalPriceCents:   totalPriceCents,
		RevisionsIncluded: revisionsIncluded,
		CustomerID:        customerID,
		CustomerEmail:     customerEmail,
	}, nil
}

func customerOrderID() string {
	return uuid.NewString()
}

// CapturePayment applies the payment_captured event.
func (o *Order) CapturePayment(amountCents int64) error {
	if o.Status != StatusPendingPayment {
		return ErrInvalidTransition
	}
	if amountCents != o.TotalPriceCents {
		return &ValidationError{Fields: map[string]string{
			"amount": fmt.Sprintf("captured amount %d does not match order total %d", amountCents, o.TotalPriceCents),
		}}
	}
	o.Status = StatusPaid
	return nil
}

// SubmitOnboarding applies the onboarding_submitted event, attaching the
// business profile and moving the order into briefing. Both paid and
// onboarding_pending are legal sources; they render identically and older
// records may carry either token.
func (o *Order) SubmitOnboarding(profile BusinessProfile) error {
	if o.Status != StatusPaid && o.Status != StatusOnboardingPending {
		return ErrInvalidTransition
	}
	if err := profile.Validate(); err != nil {
		return err
	}
	copy := profile
	o.Onboarding = &copy
	o.Status = StatusBriefing
	return nil
}

// StartBuild applies the internal build_started event.
func (o *Order) StartBuild(expectedDelivery time.Time) error {
	if o.Status != StatusBriefing {
		return ErrInvalidTransition
	}
	if o.Onboarding == nil {
		return ErrInvalidTransition
	}
	delivery := expectedDelivery
	o.ExpectedDeliveryDate = &delivery
	o.Status = StatusBuilding
	return nil
}

// ReadyForReview applies the internal build_ready_for_review event. The first
// build lands in preview (awaiting the client's first look); rebuilds after a
// revision land in review (awaiting the client's next look).
func (o *Order) ReadyForReview(previewURL string) error {
	if o.Status != StatusBuilding {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(previewURL) == "" {
		return ErrMissingPreview
	}
	o.PreviewURL = previewURL
	if o.RevisionsUsed > 0 {
		o.Status = StatusReview
	} else {
		o.Status = StatusPreview
	}
	return nil
}

// Approve applies the client_approves event, publishing the site.
func (o *Order) Approve(siteURL string) error {
	if o.Status != StatusPreview && o.Status != StatusReview {
		return ErrInvalidTransition
	}
	if strings.TrimSpace(siteURL) == "" {
		return ErrMissingSiteURL
	}
	o.SiteURL = siteURL
	o.Status = StatusDelivered
	return nil
}

// ClassifyRevision reports whether the next revision request falls inside
// the included quota. Purely advisory: it never blocks the transition.
func (o *Order) ClassifyRevision() RevisionClassification {
	if o.RevisionsUsed < o.RevisionsIncluded {
		return RevisionIncluded
	}
	return RevisionExtra
}

// RequestRevision applies the client_requests_revision event: the only
// backward edge, returning the order to building and consuming one unit of
// quota regardless of classification.
func (o *Order) RequestRevision(message string) (RevisionClassification, error) {
	if o.Status != StatusPreview && o.Status != StatusReview {
		return "", ErrInvalidTransition
	}
	if strings.TrimSpace(message) == "" {
		return "", &ValidationError{Fields: map[string]string{
			"message": "revision message is required",
		}}
	}
	classification := o.ClassifyRevision()
	o.RevisionsUsed++
	o.Status = StatusBuilding
	return classification, nil
}

// Cancel applies the cancel event. Customers may cancel only before the
// build begins; internal actors may cancel any non-terminal order.
func (o *Order) Cancel(internal bool) error {
	if o.Status.Terminal() || !o.Status.Known() {
		return ErrInvalidTransition
	}
	if !internal {
		buildingOrdinal := StatusBuilding.Ordinal()
		if o.Status.Ordinal() >= buildingOrdinal {
			return ErrInvalidTransition
		}
	}
	o.Status = StatusCancelled
	return nil
}

package domain

import "strings"

// Status is the canonical lifecycle state of an order. Every read and write
// path routes through this taxonomy; the legacy mixed-case spellings found in
// older records are collapsed by Normalize.
type Status string

const (
	StatusPendingPayment    Status = "pending_payment"
	StatusPaid              Status = "paid"
	StatusOnboardingPending Status = "onboarding_pending"
	StatusBriefing          Status = "briefing"
	StatusBuilding          Status = "building"
	StatusPreview           Status = "preview"
	StatusReview            Status = "review"
	StatusDelivered         Status = "delivered"
	StatusCancelled         Status = "cancelled"

	// StatusUnknown is the fail-closed bucket for unrecognized input. It is
	// never a valid transition target and permits no actions.
	StatusUnknown Status = "unknown"
)

// Normalize maps any stored or inbound status spelling onto the canonical
// taxonomy. It is total: unrecognized input yields StatusUnknown.
func Normalize(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "pending_payment":
		return StatusPendingPayment
	case "paid":
		return StatusPaid
	case "onboarding_pending":
		return StatusOnboardingPending
	case "briefing":
		return StatusBriefing
	case "building", "generating":
		return StatusBuilding
	case "preview":
		return StatusPreview
	case "review":
		return StatusReview
	case "delivered":
		return StatusDelivered
	case "cancelled", "canceled":
		return StatusCancelled
	default:
		return StatusUnknown
	}
}

// lifecycle lists the forward pipeline in order. Cancelled sits outside it.
var lifecycle = []Status{
	StatusPendingPayment,
	StatusPaid,
	StatusOnboardingPending,
	StatusBriefing,
	StatusBuilding,
	StatusPreview,
	StatusReview,
	StatusDelivered,
}

// Ordinal returns the position of the status along the forward lifecycle,
// or -1 for cancelled and unknown.
func (s Status) Ordinal() int {
	for i, candidate := range lifecycle {
		if s == candidate {
			return i
		}
	}
	return -1
}

// Terminal reports whether the order can never transition again.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Known reports whether the status belongs to the canonical taxonomy.
func (s Status) Known() bool {
	return s != StatusUnknown && (s.Ordinal() >= 0 || s == StatusCancelled)
}

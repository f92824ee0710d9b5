package application

import (
	"errors"
	"fmt"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/domain"
	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

var (
	// ErrInvalidTransition signals the event does not apply to the order's
	// current canonical state, including races lost against a concurrent
	// transition. Callers re-fetch and re-render; not fatal.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrActionNotAllowed signals the actor attempted an action outside its
	// permitted set. Distinct from ErrInvalidTransition so callers can tell
	// "wrong button shown" bugs from "event arrived out of order".
	ErrActionNotAllowed = errors.New("action not allowed")

	// ErrValidationFailed signals a guard precondition failed. The wrapped
	// domain.ValidationError names the fields at fault.
	ErrValidationFailed = errors.New("validation failed")

	// ErrInvalidInput signals malformed checkout data.
	ErrInvalidInput = errors.New("invalid order input")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, ports.ErrVersionConflict):
		return fmt.Errorf("%w: %w", ErrInvalidTransition, err)
	case errors.Is(err, domain.ErrMissingPreview),
		errors.Is(err, domain.ErrMissingSiteURL):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	case errors.Is(err, domain.ErrEmptyCustomer),
		errors.Is(err, domain.ErrNegativePrice),
		errors.Is(err, domain.ErrNegativeQuota):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	default:
		return err
	}
}

// FieldErrors extracts the per-field messages from a validation failure, or
// nil when the error carries none.
func FieldErrors(err error) map[string]string {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return validation.Fields
	}
	return nil
}

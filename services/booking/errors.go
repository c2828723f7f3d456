package booking

import (
	"errors"
	"fmt"

	"clinicbook/models"
)

// SlotConflictError reports that the requested slot is no longer free. It is
// a business result carrying actionable alternatives, never retried blindly.
type SlotConflictError struct {
	Slot         models.SlotRef
	Alternatives []models.SlotRef
	// NoAlternatives distinguishes "the lookahead window is exhausted" from
	// "alternatives were not computed".
	NoAlternatives bool
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s %s %s is already taken", e.Slot.ResourceKey, e.Slot.Date, e.Slot.TimeSlot)
}

// InvalidTransitionError reports a lifecycle change not allowed from the
// booking's current state. User-facing validation, not a system fault.
type InvalidTransitionError struct {
	BookingID string
	From      string
	Reason    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s: %s (current status %s)", e.BookingID, e.Reason, e.From)
}

// TokenInvalidError reports a check-in credential that failed decoding,
// verification, or its validity window. It always fails closed to manual
// check-in and never carries token contents.
type TokenInvalidError struct {
	Reason string
}

func (e *TokenInvalidError) Error() string {
	return fmt.Sprintf("check-in token rejected: %s", e.Reason)
}

// ValidationError reports a malformed booking candidate.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InfrastructureError wraps a transient store or network fault. The
// orchestrator retries these with backoff before surfacing them.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}

func wrapInfra(op string, err error) error {
	return &InfrastructureError{Op: op, Err: err}
}

// retriable reports whether the orchestrator may retry after this error.
// Business conflicts are excluded: retrying the same slot cannot succeed.
func retriable(err error) bool {
	var infra *InfrastructureError
	return errors.As(err, &infra)
}

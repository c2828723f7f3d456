package notification

import (
	"context"

	"clinicbook/models"
)

// Dispatcher sends booking lifecycle notifications to patients. Dispatch is
// informational and fire-and-forget: a delivery failure must never roll back
// or block the state transition that triggered it.
type Dispatcher interface {
	DispatchBookingEvent(ctx context.Context, n models.BookingNotification) error
}

// NoopDispatcher drops every notification. Used in tests and when push
// delivery is not configured.
type NoopDispatcher struct{}

func (NoopDispatcher) DispatchBookingEvent(context.Context, models.BookingNotification) error {
	return nil
}

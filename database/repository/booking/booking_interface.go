package bookingRepo

import (
	"context"
	"time"

	"clinicbook/models"
)

// BookingRepository defines the data access methods used by the booking core.
// Every state transition is a conditional write: the filter carries the
// expected current state and the boolean result reports whether it matched.
type BookingRepository interface {
	// Insert persists a new booking. Returns ErrSlotTaken when another
	// active booking already occupies the slot.
	Insert(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking by its unique ID.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ActiveExists reports whether an active (pending or confirmed) booking
	// occupies the slot. excludeID, when non-empty, is left out of the check.
	ActiveExists(ctx context.Context, resourceKey, date, timeSlot, excludeID string) (bool, error)
	// OccupiedSlots returns the set of time slots holding an active booking
	// for a resource on a date.
	OccupiedSlots(ctx context.Context, resourceKey, date string) (map[string]bool, error)
	// ConfirmPending flips pending → confirmed.
	ConfirmPending(ctx context.Context, id string, at time.Time) (bool, error)
	// CancelActive flips pending|confirmed → cancelled_by_subject, refusing
	// once the patient has checked in.
	CancelActive(ctx context.Context, id, reason string, at time.Time) (bool, error)
	// MarkNoShow flips confirmed+not_arrived → no_show+missed.
	MarkNoShow(ctx context.Context, id string) (bool, error)
	// SetCheckedIn flips confirmed+not_arrived → checked_in.
	SetCheckedIn(ctx context.Context, id string, at time.Time) (bool, error)
	// FindOverdue returns confirmed, not-arrived bookings whose appointment
	// started before the cutoff.
	FindOverdue(ctx context.Context, cutoff time.Time) ([]models.Booking, error)
	// FindActiveBySubjectAndDate is the manual check-in lookup.
	FindActiveBySubjectAndDate(ctx context.Context, subjectID, date string) (*models.Booking, error)
	// ListBySubject returns a subject's bookings within a date range.
	ListBySubject(ctx context.Context, subjectID, fromDate, toDate string) ([]models.Booking, error)
}

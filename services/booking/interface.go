package booking

import (
	"context"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/services/notification"
	"clinicbook/services/reservation"
)

// CheckinCodec is the slice of the token codec the booking core consumes.
type CheckinCodec interface {
	Issue(booking *models.Booking) (string, error)
	Parse(tokenString string) (*models.CheckinTokenPayload, error)
	Verify(payload *models.CheckinTokenPayload, booking *models.Booking) bool
}

// BookingService is the surface exposed to handlers: orchestration,
// lifecycle transitions, check-in, and the reconciliation sweep.
type BookingService interface {
	SubmitBooking(ctx context.Context, candidate models.BookingCandidate, reservationID string) (*models.Booking, error)
	Confirm(ctx context.Context, bookingID string) (*models.Booking, error)
	CancelBySubject(ctx context.Context, bookingID, reason string) (*models.Booking, error)
	CheckInWithToken(ctx context.Context, tokenString string) (*models.Booking, error)
	CheckInManual(ctx context.Context, subjectID, date string) (*models.Booking, error)
	RunNoShowSweep(ctx context.Context) (*SweepResult, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, subjectID, fromDate, toDate string) ([]models.Booking, error)
}

// Policy carries the configured behavior knobs of the booking core. The
// initial status on creation is an explicit choice here, never inferred per
// call site.
type Policy struct {
	// AutoConfirm creates bookings directly in confirmed; otherwise they
	// start pending and await an explicit Confirm.
	AutoConfirm bool
	// NoShowGrace is how long past the appointment start the sweep waits.
	NoShowGrace time.Duration
	// MaxAttempts bounds orchestrator retries on infrastructure faults.
	MaxAttempts int
	// RetryBaseDelay seeds the exponential backoff (doubled per attempt).
	RetryBaseDelay time.Duration
	// LookaheadDays bounds the alternative-slot search window.
	LookaheadDays int
	// MaxAlternatives bounds the suggestion count.
	MaxAlternatives int
	// ClinicOpen/ClinicClose/SlotMinutes define the bookable slot grid.
	ClinicOpen  string
	ClinicClose string
	SlotMinutes int
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Repo         bookingRepo.BookingRepository
	Codec        CheckinCodec
	Reservations reservation.SlotReservationManager
	Notifier     notification.Dispatcher
	Policy       Policy

	now func() time.Time
}

// NewDefaultBookingService wires the service with its collaborators.
func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	codec CheckinCodec,
	reservations reservation.SlotReservationManager,
	notifier notification.Dispatcher,
	policy Policy,
) *DefaultBookingService {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 3
	}
	if policy.RetryBaseDelay <= 0 {
		policy.RetryBaseDelay = 500 * time.Millisecond
	}
	if policy.LookaheadDays <= 0 {
		policy.LookaheadDays = 7
	}
	if policy.MaxAlternatives <= 0 {
		policy.MaxAlternatives = 6
	}
	if policy.SlotMinutes <= 0 {
		policy.SlotMinutes = 30
	}
	if policy.ClinicOpen == "" {
		policy.ClinicOpen = "09:00"
	}
	if policy.ClinicClose == "" {
		policy.ClinicClose = "17:00"
	}
	if notifier == nil {
		notifier = notification.NoopDispatcher{}
	}
	return &DefaultBookingService{
		Repo:         repo,
		Codec:        codec,
		Reservations: reservations,
		Notifier:     notifier,
		Policy:       policy,
		now:          time.Now,
	}
}

// GetBooking returns one booking by ID, including its persisted token
// material for redisplay.
func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.Repo.GetByID(ctx, bookingID)
}

// ListBookings returns a subject's bookings within a date range.
func (s *DefaultBookingService) ListBookings(ctx context.Context, subjectID, fromDate, toDate string) ([]models.Booking, error) {
	return s.Repo.ListBySubject(ctx, subjectID, fromDate, toDate)
}

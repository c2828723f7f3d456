package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const slotTimeLayout = "2006-01-02 15:04"

// slotStart resolves a (date, timeSlot) pair to an instant in server time.
func slotStart(date, timeSlot string) (time.Time, error) {
	return time.ParseInLocation(slotTimeLayout, date+" "+timeSlot, time.Local)
}

func validateCandidate(c models.BookingCandidate) error {
	if c.SubjectID == "" {
		return &ValidationError{Message: "subjectId is required"}
	}
	if c.ResourceKey == "" {
		return &ValidationError{Message: "resourceKey is required"}
	}
	if _, err := slotStart(c.Date, c.TimeSlot); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid date/timeSlot %q %q", c.Date, c.TimeSlot)}
	}
	return nil
}

// Create persists a booking in the configured initial status and attaches
// its check-in credential. A slot already taken surfaces as SlotConflictError
// with no partial state left behind.
func (s *DefaultBookingService) Create(ctx context.Context, candidate models.BookingCandidate) (*models.Booking, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	now := s.now()
	startAt, _ := slotStart(candidate.Date, candidate.TimeSlot)
	booking := &models.Booking{
		ID:            uuid.New().String(),
		SubjectID:     candidate.SubjectID,
		ResourceKey:   candidate.ResourceKey,
		Date:          candidate.Date,
		TimeSlot:      candidate.TimeSlot,
		StartAt:       startAt,
		BookingStatus: models.BookingStatusPending,
		CheckinStatus: models.CheckinStatusNotArrived,
		CreatedAt:     now,
	}
	if s.Policy.AutoConfirm {
		booking.BookingStatus = models.BookingStatusConfirmed
		confirmedAt := now
		booking.ConfirmedAt = &confirmedAt
	}

	// Credential issuance failing is a signal to fall back to manual
	// check-in, never a reason to refuse the booking.
	if tokenMaterial, err := s.Codec.Issue(booking); err != nil {
		utils.GetLogger().Warn("check-in token issuance failed, booking proceeds without credential",
			zap.String("bookingId", booking.ID), zap.Error(err))
	} else {
		booking.TokenMaterial = tokenMaterial
	}

	if err := s.Repo.Insert(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, &SlotConflictError{Slot: models.SlotRef{
				ResourceKey: candidate.ResourceKey,
				Date:        candidate.Date,
				TimeSlot:    candidate.TimeSlot,
			}}
		}
		return nil, wrapInfra("create booking", err)
	}

	if booking.BookingStatus == models.BookingStatusConfirmed {
		s.notify(booking, models.NotifyBookingConfirmed)
	}
	return booking, nil
}

// Confirm flips a pending booking to confirmed, re-validating slot
// uniqueness immediately before the committing write. Confirming an
// already-confirmed booking returns the unchanged state.
func (s *DefaultBookingService) Confirm(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	if booking.BookingStatus == models.BookingStatusConfirmed {
		return booking, nil
	}
	if booking.BookingStatus != models.BookingStatusPending {
		return nil, &InvalidTransitionError{
			BookingID: bookingID,
			From:      booking.BookingStatus,
			Reason:    "only a pending booking can be confirmed",
		}
	}

	// Another booking may have claimed the slot since this one went pending.
	taken, err := s.Repo.ActiveExists(ctx, booking.ResourceKey, booking.Date, booking.TimeSlot, booking.ID)
	if err != nil {
		return nil, wrapInfra("confirm slot re-check", err)
	}
	if taken {
		return nil, &SlotConflictError{Slot: models.SlotRef{
			ResourceKey: booking.ResourceKey,
			Date:        booking.Date,
			TimeSlot:    booking.TimeSlot,
		}}
	}

	matched, err := s.Repo.ConfirmPending(ctx, bookingID, s.now())
	if err != nil {
		return nil, wrapInfra("confirm booking", err)
	}
	if !matched {
		// Lost a race since the fetch above; report whatever state won.
		return s.Confirm(ctx, bookingID)
	}

	confirmed, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	s.notify(confirmed, models.NotifyBookingConfirmed)
	return confirmed, nil
}

// CancelBySubject cancels a pending or confirmed booking on the patient's
// request. Refused once the patient has checked in or the status is terminal.
func (s *DefaultBookingService) CancelBySubject(ctx context.Context, bookingID, reason string) (*models.Booking, error) {
	matched, err := s.Repo.CancelActive(ctx, bookingID, reason, s.now())
	if err != nil {
		return nil, wrapInfra("cancel booking", err)
	}
	if !matched {
		booking, err := s.Repo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, s.fetchErr(bookingID, err)
		}
		reason := "booking is already " + booking.BookingStatus
		if booking.CheckinStatus == models.CheckinStatusCheckedIn {
			reason = "patient has already checked in"
		}
		return nil, &InvalidTransitionError{BookingID: bookingID, From: booking.BookingStatus, Reason: reason}
	}

	cancelled, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	s.notify(cancelled, models.NotifyBookingCancelled)
	return cancelled, nil
}

// MarkNoShow transitions an overdue confirmed booking to no_show/missed.
// Invoked exclusively by the reconciliation sweep.
func (s *DefaultBookingService) MarkNoShow(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	if booking.BookingStatus == models.BookingStatusNoShow {
		// A previous or overlapping sweep pass already got here.
		return booking, nil
	}
	if booking.BookingStatus != models.BookingStatusConfirmed ||
		booking.CheckinStatus != models.CheckinStatusNotArrived {
		return nil, &InvalidTransitionError{
			BookingID: bookingID,
			From:      booking.BookingStatus,
			Reason:    "only a confirmed, not-arrived booking can be marked no-show",
		}
	}
	if s.now().Before(booking.StartAt.Add(s.Policy.NoShowGrace)) {
		return nil, &InvalidTransitionError{
			BookingID: bookingID,
			From:      booking.BookingStatus,
			Reason:    "appointment is still within the grace period",
		}
	}

	matched, err := s.Repo.MarkNoShow(ctx, bookingID)
	if err != nil {
		return nil, wrapInfra("mark no-show", err)
	}
	if !matched {
		// Lost the race to a check-in or a concurrent sweep; either way the
		// current state stands.
		return s.Repo.GetByID(ctx, bookingID)
	}

	marked, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	s.notify(marked, models.NotifyBookingNoShow)
	return marked, nil
}

// CheckIn moves a confirmed, not-arrived booking to checked_in. Repeated
// calls on an already-checked-in booking return the unchanged state, never an
// error.
func (s *DefaultBookingService) CheckIn(ctx context.Context, bookingID string) (*models.Booking, error) {
	matched, err := s.Repo.SetCheckedIn(ctx, bookingID, s.now())
	if err != nil {
		return nil, wrapInfra("check in", err)
	}

	booking, err := s.Repo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, s.fetchErr(bookingID, err)
	}
	if matched {
		s.notify(booking, models.NotifyBookingCheckedIn)
		return booking, nil
	}
	if booking.CheckinStatus == models.CheckinStatusCheckedIn {
		return booking, nil
	}
	return nil, &InvalidTransitionError{
		BookingID: bookingID,
		From:      booking.BookingStatus,
		Reason:    "only a confirmed, not-arrived booking can check in",
	}
}

func (s *DefaultBookingService) fetchErr(bookingID string, err error) error {
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return err
	}
	return wrapInfra("fetch booking "+bookingID, err)
}

// notify dispatches fire-and-forget; delivery failure never rolls back or
// blocks the transition that triggered it.
func (s *DefaultBookingService) notify(b *models.Booking, event string) {
	n := models.BookingNotification{
		Event:     event,
		BookingID: b.ID,
		SubjectID: b.SubjectID,
		Date:      b.Date,
		TimeSlot:  b.TimeSlot,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Notifier.DispatchBookingEvent(ctx, n); err != nil {
			utils.GetLogger().Warn("notification dispatch failed",
				zap.String("bookingId", n.BookingID),
				zap.String("event", n.Event),
				zap.Error(err))
		}
	}()
}

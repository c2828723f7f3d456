package booking

import (
	"context"
	"errors"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// CheckInWithToken validates a presented credential and drives the check-in
// transition. Every token failure fails closed to TokenInvalidError so the
// front desk falls back to manual lookup. Token contents are never logged.
func (s *DefaultBookingService) CheckInWithToken(ctx context.Context, tokenString string) (*models.Booking, error) {
	logger := utils.GetLogger()

	payload, err := s.Codec.Parse(tokenString)
	if err != nil {
		logger.Info("check-in token rejected at decode")
		return nil, &TokenInvalidError{Reason: "token is corrupted or expired, use manual lookup"}
	}

	booking, err := s.Repo.GetByID(ctx, payload.BookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			// Fail closed without confirming whether the referenced booking
			// exists.
			logger.Info("check-in token referenced unknown booking")
			return nil, &TokenInvalidError{Reason: "token does not match a booking, use manual lookup"}
		}
		return nil, wrapInfra("check-in booking fetch", err)
	}

	if !s.Codec.Verify(payload, booking) {
		logger.Info("check-in token failed verification",
			zap.String("bookingId", booking.ID))
		return nil, &TokenInvalidError{Reason: "token is invalid or expired, use manual lookup"}
	}

	return s.CheckIn(ctx, booking.ID)
}

// CheckInManual is the front-desk fallback: lookup by subject identity and
// date, bypassing the token codec entirely, under the same idempotency
// guarantee.
func (s *DefaultBookingService) CheckInManual(ctx context.Context, subjectID, date string) (*models.Booking, error) {
	booking, err := s.Repo.FindActiveBySubjectAndDate(ctx, subjectID, date)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, err
		}
		return nil, wrapInfra("manual check-in lookup", err)
	}
	return s.CheckIn(ctx, booking.ID)
}

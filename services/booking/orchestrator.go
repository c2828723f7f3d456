package booking

import (
	"context"
	"errors"
	"time"

	"clinicbook/models"
	"clinicbook/utils"

	"go.uber.org/zap"
)

// SubmitBooking turns a raw candidate into a booking or a structured
// conflict with actionable alternatives. A held reservation is optional: its
// absence or expiry is tolerated, never required, because slot uniqueness is
// enforced at the store.
func (s *DefaultBookingService) SubmitBooking(ctx context.Context, candidate models.BookingCandidate, reservationID string) (*models.Booking, error) {
	if err := validateCandidate(candidate); err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	var lastErr error
	for attempt := 0; attempt < s.Policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			// Exponential backoff, base 2: delay doubles per attempt.
			delay := s.Policy.RetryBaseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, wrapInfra("submit booking", ctx.Err())
			}
		}

		booking, err := s.Create(ctx, candidate)
		if err == nil {
			s.releaseReservation(ctx, reservationID)
			return booking, nil
		}

		var conflict *SlotConflictError
		if errors.As(err, &conflict) {
			// Business conflict: retrying the same slot cannot succeed; go
			// straight to alternative suggestion.
			return nil, s.withAlternatives(ctx, conflict)
		}
		if !retriable(err) {
			return nil, err
		}

		lastErr = err
		logger.Warn("booking attempt failed on infrastructure error",
			zap.Int("attempt", attempt+1),
			zap.String("resourceKey", candidate.ResourceKey),
			zap.Error(err))
	}
	return nil, lastErr
}

func (s *DefaultBookingService) withAlternatives(ctx context.Context, conflict *SlotConflictError) error {
	alternatives, err := s.suggestAlternatives(ctx, conflict.Slot)
	if err != nil {
		// The conflict itself is still the right answer; suggestions are
		// best effort.
		utils.GetLogger().Warn("alternative computation failed",
			zap.String("resourceKey", conflict.Slot.ResourceKey), zap.Error(err))
		conflict.NoAlternatives = false
		return conflict
	}
	conflict.Alternatives = alternatives
	conflict.NoAlternatives = len(alternatives) == 0
	return conflict
}

func (s *DefaultBookingService) releaseReservation(ctx context.Context, reservationID string) {
	if reservationID == "" || s.Reservations == nil {
		return
	}
	if err := s.Reservations.Release(ctx, reservationID); err != nil {
		utils.GetLogger().Warn("failed to release reservation after booking",
			zap.String("reservationId", reservationID), zap.Error(err))
	}
}

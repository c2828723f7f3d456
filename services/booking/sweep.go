package booking

import (
	"context"

	"clinicbook/utils"

	"go.uber.org/zap"
)

// ReconciliationFailure records one booking the sweep could not transition.
type ReconciliationFailure struct {
	BookingID string `json:"bookingId"`
	Reason    string `json:"reason"`
}

// SweepResult summarizes one reconciliation pass.
type SweepResult struct {
	ProcessedCount int                     `json:"processedCount"`
	Failures       []ReconciliationFailure `json:"failures"`
}

// RunNoShowSweep reconciles bookings whose appointment time passed without a
// check-in. Safe under repeated or overlapping invocation: every transition
// is a conditional write, so a second pass changes nothing. A per-booking
// failure is logged and skipped; it never aborts the batch.
func (s *DefaultBookingService) RunNoShowSweep(ctx context.Context) (*SweepResult, error) {
	logger := utils.GetLogger()
	cutoff := s.now().Add(-s.Policy.NoShowGrace)

	overdue, err := s.Repo.FindOverdue(ctx, cutoff)
	if err != nil {
		return nil, wrapInfra("no-show sweep query", err)
	}

	result := &SweepResult{}
	for i := range overdue {
		b := &overdue[i]
		if _, err := s.MarkNoShow(ctx, b.ID); err != nil {
			logger.Warn("no-show sweep: booking skipped",
				zap.String("bookingId", b.ID), zap.Error(err))
			result.Failures = append(result.Failures, ReconciliationFailure{
				BookingID: b.ID,
				Reason:    err.Error(),
			})
			continue
		}
		result.ProcessedCount++
	}

	logger.Info("no-show sweep finished",
		zap.Int("processed", result.ProcessedCount),
		zap.Int("failed", len(result.Failures)))
	return result, nil
}

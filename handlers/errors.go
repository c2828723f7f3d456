package handlers

import (
	"errors"
	"net/http"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/services/booking"
	"clinicbook/services/reservation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError maps service-layer errors onto HTTP responses. Business
// results get their own status and payload shape; infrastructure faults are
// logged and surfaced as 503.
func respondServiceError(c *gin.Context, err error) {
	var conflict *booking.SlotConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":          "slot already taken",
			"slot":           conflict.Slot,
			"alternatives":   conflict.Alternatives,
			"noAlternatives": conflict.NoAlternatives,
		})
		return
	}

	var validation *booking.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
		return
	}

	var transition *booking.InvalidTransitionError
	if errors.As(err, &transition) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":         transition.Reason,
			"bookingId":     transition.BookingID,
			"currentStatus": transition.From,
		})
		return
	}

	var tokenErr *booking.TokenInvalidError
	if errors.As(err, &tokenErr) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": tokenErr.Reason})
		return
	}

	var denied *reservation.DeniedError
	if errors.As(err, &denied) {
		c.JSON(http.StatusConflict, gin.H{"error": denied.Message, "code": denied.Code})
		return
	}

	if errors.Is(err, bookingRepo.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	var infra *booking.InfrastructureError
	if errors.As(err, &infra) {
		zap.L().Error("Infrastructure fault surfaced to client", zap.String("op", infra.Op), zap.Error(infra.Err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, try again shortly"})
		return
	}

	zap.L().Error("Unhandled service error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

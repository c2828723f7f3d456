package handlers

import (
	"errors"
	"net/http"
	"time"

	"clinicbook/middleware"
	"clinicbook/models"
	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Bookings booking.BookingService
}

func NewBookingHandler(svc booking.BookingService) *BookingHandler {
	return &BookingHandler{Bookings: svc}
}

// SubmitBooking runs the full booking attempt. Slot conflicts come back as
// 409 with alternatives; when the primary store is down the request is parked
// in the fallback cache and answered 202.
func (bh *BookingHandler) SubmitBooking(c *gin.Context) {
	var input struct {
		ResourceKey   string `json:"resourceKey" binding:"required"`
		Date          string `json:"date" binding:"required"`
		TimeSlot      string `json:"timeSlot" binding:"required"`
		ReservationID string `json:"reservationId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	candidate := models.BookingCandidate{
		SubjectID:   middleware.SubjectFromContext(c),
		ResourceKey: input.ResourceKey,
		Date:        input.Date,
		TimeSlot:    input.TimeSlot,
	}

	created, err := bh.Bookings.SubmitBooking(c.Request.Context(), candidate, input.ReservationID)
	if err != nil {
		var infra *booking.InfrastructureError
		if errors.As(err, &infra) && !utils.MongoHealthy() {
			bh.parkInFallback(c, candidate)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// parkInFallback stashes the request in redis for later reconciliation so an
// outage of the primary store does not lose the patient's intent.
func (bh *BookingHandler) parkInFallback(c *gin.Context, candidate models.BookingCandidate) {
	parked := &models.Booking{
		ID:            uuid.New().String(),
		SubjectID:     candidate.SubjectID,
		ResourceKey:   candidate.ResourceKey,
		Date:          candidate.Date,
		TimeSlot:      candidate.TimeSlot,
		BookingStatus: models.BookingStatusPending,
		CheckinStatus: models.CheckinStatusNotArrived,
		CreatedAt:     time.Now().UTC(),
	}

	if err := utils.SaveFallbackBooking(utils.GetFallbackCacheClient(), parked); err != nil {
		zap.L().Error("Fallback cache write failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service temporarily unavailable, try again shortly"})
		return
	}

	zap.L().Warn("Booking parked in fallback cache",
		zap.String("bookingID", parked.ID),
		zap.String("resourceKey", parked.ResourceKey))
	c.JSON(http.StatusAccepted, gin.H{
		"id":          parked.ID,
		"pendingSync": true,
		"message":     "booking accepted, confirmation will follow once the system recovers",
	})
}

// CancelBooking cancels the subject's own active booking.
func (bh *BookingHandler) CancelBooking(c *gin.Context) {
	bookingID := c.Param("id")
	var input struct {
		Reason string `json:"reason"`
	}
	// Body is optional; a bare cancel carries no reason.
	_ = c.ShouldBindJSON(&input)

	existing, err := bh.Bookings.GetBooking(c.Request.Context(), bookingID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if existing.SubjectID != middleware.SubjectFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	cancelled, err := bh.Bookings.CancelBySubject(c.Request.Context(), bookingID, input.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

// ConfirmBooking promotes a pending booking to confirmed.
func (bh *BookingHandler) ConfirmBooking(c *gin.Context) {
	confirmed, err := bh.Bookings.Confirm(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmed)
}

// GetBooking returns one booking owned by the caller.
func (bh *BookingHandler) GetBooking(c *gin.Context) {
	b, err := bh.Bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if b.SubjectID != middleware.SubjectFromContext(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}

	c.JSON(http.StatusOK, b)
}

// ListBookings returns the caller's bookings, optionally bounded by
// ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (bh *BookingHandler) ListBookings(c *gin.Context) {
	subjectID := middleware.SubjectFromContext(c)
	bookings, err := bh.Bookings.ListBookings(c.Request.Context(), subjectID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

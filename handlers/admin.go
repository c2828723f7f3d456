package handlers

import (
	"net/http"

	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated operational endpoints.
type AdminHandler struct {
	Bookings booking.BookingService
}

func NewAdminHandler(svc booking.BookingService) *AdminHandler {
	return &AdminHandler{Bookings: svc}
}

// ListFallbackBookings returns bookings parked in the fallback cache while
// the primary store was down, awaiting staff reconciliation.
func (ah *AdminHandler) ListFallbackBookings(c *gin.Context) {
	parked, err := utils.ListFallbackBookings(c.Request.Context(), utils.GetFallbackCacheClient())
	if err != nil {
		zap.L().Error("Fallback cache listing failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fallback cache unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": parked, "count": len(parked)})
}

// DropFallbackBooking removes one reconciled record from the fallback cache.
func (ah *AdminHandler) DropFallbackBooking(c *gin.Context) {
	id := c.Param("id")
	if err := utils.DropFallbackBooking(c.Request.Context(), utils.GetFallbackCacheClient(), id); err != nil {
		zap.L().Error("Fallback cache drop failed", zap.String("bookingId", id), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "fallback cache unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dropped": id})
}

// TriggerSweep runs the no-show sweep on demand, outside its schedule.
func (ah *AdminHandler) TriggerSweep(c *gin.Context) {
	result, err := ah.Bookings.RunNoShowSweep(c.Request.Context())
	if err != nil {
		zap.L().Error("Manual sweep failed", zap.Error(err))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Health returns the current dependency health snapshot.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

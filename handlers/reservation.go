package handlers

import (
	"net/http"

	"clinicbook/middleware"
	"clinicbook/services/reservation"

	"github.com/gin-gonic/gin"
)

// ReservationHandler exposes advisory slot holds over HTTP.
type ReservationHandler struct {
	Reservations reservation.SlotReservationManager
}

func NewReservationHandler(mgr reservation.SlotReservationManager) *ReservationHandler {
	return &ReservationHandler{Reservations: mgr}
}

// ReserveSlot grants a TTL-bound hold on the requested slot.
func (rh *ReservationHandler) ReserveSlot(c *gin.Context) {
	var input struct {
		ResourceKey string `json:"resourceKey" binding:"required"`
		Date        string `json:"date" binding:"required"`
		TimeSlot    string `json:"timeSlot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	subjectID := middleware.SubjectFromContext(c)
	res, err := rh.Reservations.Reserve(c.Request.Context(), input.ResourceKey, input.Date, input.TimeSlot, subjectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

// ReleaseSlot drops a previously granted hold. Releasing an expired or
// unknown reservation is a no-op.
func (rh *ReservationHandler) ReleaseSlot(c *gin.Context) {
	reservationID := c.Param("id")
	if reservationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing reservation id"})
		return
	}

	if err := rh.Reservations.Release(c.Request.Context(), reservationID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"released": true})
}

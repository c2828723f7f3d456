package handlers

import (
	"net/http"

	"clinicbook/middleware"
	"clinicbook/services/booking"

	"github.com/gin-gonic/gin"
)

// CheckinHandler exposes arrival registration: token-based self check-in at
// the kiosk, plus the manual front-desk fallback.
type CheckinHandler struct {
	Bookings booking.BookingService
}

func NewCheckinHandler(svc booking.BookingService) *CheckinHandler {
	return &CheckinHandler{Bookings: svc}
}

// CheckInWithToken registers arrival from a presented check-in credential.
func (ch *CheckinHandler) CheckInWithToken(c *gin.Context) {
	var input struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	checked, err := ch.Bookings.CheckInWithToken(c.Request.Context(), input.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, checked)
}

// CheckInManual registers arrival by subject lookup when the token path
// fails. Staff supply the subject id and appointment date.
func (ch *CheckinHandler) CheckInManual(c *gin.Context) {
	var input struct {
		SubjectID string `json:"subjectId"`
		Date      string `json:"date" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	subjectID := input.SubjectID
	if subjectID == "" {
		subjectID = middleware.SubjectFromContext(c)
	}

	checked, err := ch.Bookings.CheckInManual(c.Request.Context(), subjectID, input.Date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, checked)
}

package routes

import (
	"time"

	"clinicbook/handlers"
	"clinicbook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterReservationRoutes registers the advisory slot-hold endpoints.
func RegisterReservationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reservations")
	{
		api.Use(middleware.SubjectAuthMiddleware())
		api.POST("", hb.Reservation.ReserveSlot)
		api.DELETE("/:id", hb.Reservation.ReleaseSlot)
	}
}

// RegisterBookingRoutes registers the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.SubjectAuthMiddleware())
		api.POST("", hb.Booking.SubmitBooking)
		api.POST("/:id/confirm", hb.Booking.ConfirmBooking)
		api.POST("/:id/cancel", hb.Booking.CancelBooking)
		api.GET("/:id", hb.Booking.GetBooking)
		api.GET("", hb.Booking.ListBookings)
	}
}

// RegisterCheckinRoutes registers arrival endpoints. The token path is
// unauthenticated so the kiosk can serve walk-ups; the manual path is for
// signed-in staff or subjects.
func RegisterCheckinRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/checkin")
	{
		api.POST("/token", hb.Checkin.CheckInWithToken)
		api.POST("/manual", middleware.SubjectAuthMiddleware(), hb.Checkin.CheckInManual)
	}
}

// RegisterAdminRoutes registers operational endpoints behind the static token.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	{
		api.Use(middleware.AdminAuthMiddleware())
		api.POST("/sweep", hb.Admin.TriggerSweep)
		api.GET("/fallback", hb.Admin.ListFallbackBookings)
		api.DELETE("/fallback/:id", hb.Admin.DropFallbackBooking)
	}
}

// RegisterHealthRoute registers the dependency health snapshot.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware())

	RegisterHealthRoute(r)
	RegisterReservationRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterCheckinRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}

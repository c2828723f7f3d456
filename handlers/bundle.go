package handlers

import (
	"clinicbook/services/booking"
	"clinicbook/services/reservation"
)

// HandlerBundle groups all endpoint handlers into one struct for route
// registration.
type HandlerBundle struct {
	Reservation *ReservationHandler
	Booking     *BookingHandler
	Checkin     *CheckinHandler
	Admin       *AdminHandler
}

// NewHandlerBundle wires every handler against the shared services.
func NewHandlerBundle(bookingSvc booking.BookingService, reservations reservation.SlotReservationManager) *HandlerBundle {
	return &HandlerBundle{
		Reservation: NewReservationHandler(reservations),
		Booking:     NewBookingHandler(bookingSvc),
		Checkin:     NewCheckinHandler(bookingSvc),
		Admin:       NewAdminHandler(bookingSvc),
	}
}

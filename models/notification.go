package models

// Booking lifecycle events that trigger a patient notification.
const (
	NotifyBookingConfirmed = "booking_confirmed"
	NotifyBookingCancelled = "booking_cancelled"
	NotifyBookingNoShow    = "booking_no_show"
	NotifyBookingCheckedIn = "booking_checked_in"
)

// BookingNotification is the fire-and-forget payload handed to the
// notification dispatcher on a lifecycle transition.
type BookingNotification struct {
	Event     string `json:"event"`
	BookingID string `json:"bookingId"`
	SubjectID string `json:"subjectId"`
	Date      string `json:"date"`
	TimeSlot  string `json:"timeSlot"`
}

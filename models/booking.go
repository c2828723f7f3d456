package models

import "time"

// Booking status values. Slot uniqueness applies to the active pair
// (pending, confirmed) only.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled_by_subject"
	BookingStatusNoShow    = "no_show"
	BookingStatusCompleted = "completed"
)

// Check-in status values. This axis moves independently of BookingStatus.
const (
	CheckinStatusNotArrived = "not_arrived"
	CheckinStatusCheckedIn  = "checked_in"
	CheckinStatusMissed     = "missed"
	CheckinStatusCompleted  = "completed"
)

// Booking is the durable record of a commitment to a slot.
type Booking struct {
	ID                 string     `bson:"id" json:"id"`                        // Unique booking identifier (UUID)
	SubjectID          string     `bson:"subject_id" json:"subjectId"`         // Patient identity from the identity provider
	ResourceKey        string     `bson:"resource_key" json:"resourceKey"`     // Practitioner/service + facility composite key
	Date               string     `bson:"date" json:"date"`                    // Appointment date in "YYYY-MM-DD" format
	TimeSlot           string     `bson:"time_slot" json:"timeSlot"`           // Slot start in "HH:MM" format, fixed granularity
	StartAt            time.Time  `bson:"start_at" json:"startAt"`             // Date+TimeSlot resolved to an instant, for range queries
	BookingStatus      string     `bson:"booking_status" json:"bookingStatus"` // pending | confirmed | cancelled_by_subject | no_show | completed
	CheckinStatus      string     `bson:"checkin_status" json:"checkinStatus"` // not_arrived | checked_in | missed | completed
	CreatedAt          time.Time  `bson:"created_at" json:"createdAt"`
	ConfirmedAt        *time.Time `bson:"confirmed_at,omitempty" json:"confirmedAt,omitempty"`
	CancelledAt        *time.Time `bson:"cancelled_at,omitempty" json:"cancelledAt,omitempty"`
	CheckinAt          *time.Time `bson:"checkin_at,omitempty" json:"checkinAt,omitempty"`
	CancellationReason string     `bson:"cancellation_reason,omitempty" json:"cancellationReason,omitempty"`
	TokenMaterial      string     `bson:"token_material,omitempty" json:"tokenMaterial,omitempty"` // Opaque check-in credential, persisted for redisplay
	PendingSync        bool       `bson:"pending_sync,omitempty" json:"pendingSync,omitempty"`     // Set on writes that went through the fallback cache
}

// Active reports whether the booking currently occupies its slot.
func (b *Booking) Active() bool {
	return b.BookingStatus == BookingStatusPending || b.BookingStatus == BookingStatusConfirmed
}

// Terminal reports whether the booking status can no longer change.
func (b *Booking) Terminal() bool {
	switch b.BookingStatus {
	case BookingStatusCancelled, BookingStatusNoShow, BookingStatusCompleted:
		return true
	}
	return false
}

// BookingCandidate carries the data needed to create a booking.
type BookingCandidate struct {
	SubjectID   string `json:"subjectId"`
	ResourceKey string `json:"resourceKey"`
	Date        string `json:"date"`
	TimeSlot    string `json:"timeSlot"`
}

// SlotRef identifies one bookable (resource, date, time) unit.
type SlotRef struct {
	ResourceKey string `json:"resourceKey"`
	Date        string `json:"date"`
	TimeSlot    string `json:"timeSlot"`
}

package models

import "time"

// SlotReservation is an advisory, time-limited first-refusal on a slot held
// while a patient completes the booking form. It is never a substitute for
// the slot-uniqueness invariant enforced at the store.
type SlotReservation struct {
	ReservationID string    `json:"reservationId"`
	SubjectID     string    `json:"subjectId"`
	ResourceKey   string    `json:"resourceKey"`
	Date          string    `json:"date"`
	TimeSlot      string    `json:"timeSlot"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Expired compares against the supplied instant so callers and the redis TTL
// agree on liveness even when the TTL has not fired yet.
func (r *SlotReservation) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

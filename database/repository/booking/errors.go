package bookingRepo

import "errors"

// ErrNotFound is returned when no booking matches the requested ID.
var ErrNotFound = errors.New("booking not found")

// ErrSlotTaken is returned when the slot-uniqueness index rejects an insert.
var ErrSlotTaken = errors.New("slot already taken by an active booking")

package booking

import (
	"context"
	"sync"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
)

// memRepo is an in-memory BookingRepository mirroring the store's
// conditional-write semantics: every transition checks the expected current
// state under one lock, the way the Mongo filters do atomically.
type memRepo struct {
	mu       sync.Mutex
	bookings map[string]*models.Booking

	// insertFaults injects transient failures: each Insert call consumes one
	// entry until the slice is empty.
	insertFaults []error
	insertCalls  int
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: make(map[string]*models.Booking)}
}

func (r *memRepo) seed(b models.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := b
	r.bookings[b.ID] = &copied
}

func (r *memRepo) Insert(_ context.Context, booking *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertCalls++
	if len(r.insertFaults) > 0 {
		err := r.insertFaults[0]
		r.insertFaults = r.insertFaults[1:]
		return err
	}
	for _, b := range r.bookings {
		if b.Active() && b.ResourceKey == booking.ResourceKey &&
			b.Date == booking.Date && b.TimeSlot == booking.TimeSlot {
			return bookingRepo.ErrSlotTaken
		}
	}
	copied := *booking
	r.bookings[booking.ID] = &copied
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memRepo) ActiveExists(_ context.Context, resourceKey, date, timeSlot, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == excludeID {
			continue
		}
		if b.Active() && b.ResourceKey == resourceKey && b.Date == date && b.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRepo) OccupiedSlots(_ context.Context, resourceKey, date string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	occupied := make(map[string]bool)
	for _, b := range r.bookings {
		if b.Active() && b.ResourceKey == resourceKey && b.Date == date {
			occupied[b.TimeSlot] = true
		}
	}
	return occupied, nil
}

func (r *memRepo) ConfirmPending(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.BookingStatus != models.BookingStatusPending {
		return false, nil
	}
	b.BookingStatus = models.BookingStatusConfirmed
	confirmedAt := at
	b.ConfirmedAt = &confirmedAt
	return true, nil
}

func (r *memRepo) CancelActive(_ context.Context, id, reason string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !b.Active() || b.CheckinStatus != models.CheckinStatusNotArrived {
		return false, nil
	}
	b.BookingStatus = models.BookingStatusCancelled
	cancelledAt := at
	b.CancelledAt = &cancelledAt
	b.CancellationReason = reason
	return true, nil
}

func (r *memRepo) MarkNoShow(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.BookingStatus != models.BookingStatusConfirmed ||
		b.CheckinStatus != models.CheckinStatusNotArrived {
		return false, nil
	}
	b.BookingStatus = models.BookingStatusNoShow
	b.CheckinStatus = models.CheckinStatusMissed
	return true, nil
}

func (r *memRepo) SetCheckedIn(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || b.BookingStatus != models.BookingStatusConfirmed ||
		b.CheckinStatus != models.CheckinStatusNotArrived {
		return false, nil
	}
	b.CheckinStatus = models.CheckinStatusCheckedIn
	checkinAt := at
	b.CheckinAt = &checkinAt
	return true, nil
}

func (r *memRepo) FindOverdue(_ context.Context, cutoff time.Time) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var overdue []models.Booking
	for _, b := range r.bookings {
		if b.BookingStatus == models.BookingStatusConfirmed &&
			b.CheckinStatus == models.CheckinStatusNotArrived &&
			b.StartAt.Before(cutoff) {
			overdue = append(overdue, *b)
		}
	}
	return overdue, nil
}

func (r *memRepo) FindActiveBySubjectAndDate(_ context.Context, subjectID, date string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Active() && b.SubjectID == subjectID && b.Date == date {
			copied := *b
			return &copied, nil
		}
	}
	return nil, bookingRepo.ErrNotFound
}

func (r *memRepo) ListBySubject(_ context.Context, subjectID, fromDate, toDate string) ([]models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Booking
	for _, b := range r.bookings {
		if b.SubjectID != subjectID {
			continue
		}
		if fromDate != "" && b.Date < fromDate {
			continue
		}
		if toDate != "" && b.Date > toDate {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

// Package reservation grants short-lived advisory first-refusal on a slot
// while a patient completes the booking form. Reservations are best-effort:
// slot uniqueness is enforced by the store, never by these holds.
package reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/models"
	"clinicbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DeniedError reports that the slot already carries a live reservation or an
// active booking. It is a business result, not a fault.
type DeniedError struct {
	Code    string
	Message string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newDeniedError(msg string) error {
	return &DeniedError{Code: "reservationDenied", Message: msg}
}

// SlotReservationManager hands out and releases advisory slot holds.
type SlotReservationManager interface {
	Reserve(ctx context.Context, resourceKey, date, timeSlot, subjectID string) (*models.SlotReservation, error)
	Release(ctx context.Context, reservationID string) error
	IsHeld(ctx context.Context, resourceKey, date, timeSlot string) (bool, error)
}

// DefaultSlotReservationManager is the redis-backed implementation.
type DefaultSlotReservationManager struct {
	Cache *redis.Client
	Repo  bookingRepo.BookingRepository
	TTL   time.Duration

	now func() time.Time
}

// NewDefaultSlotReservationManager wires the manager with its cache, the
// persistence gateway for occupancy checks, and the hold TTL.
func NewDefaultSlotReservationManager(cache *redis.Client, repo bookingRepo.BookingRepository, ttl time.Duration) *DefaultSlotReservationManager {
	return &DefaultSlotReservationManager{
		Cache: cache,
		Repo:  repo,
		TTL:   ttl,
		now:   time.Now,
	}
}

func slotKey(resourceKey, date, timeSlot string) string {
	return utils.SlotReservationPrefix + resourceKey + ":" + date + ":" + timeSlot
}

func reservationIDKey(reservationID string) string {
	return utils.SlotReservationIDPrefix + reservationID
}

// Reserve grants a TTL-bound hold on the slot, denied when a live
// reservation or an active booking already occupies the key.
func (m *DefaultSlotReservationManager) Reserve(ctx context.Context, resourceKey, date, timeSlot, subjectID string) (*models.SlotReservation, error) {
	booked, err := m.Repo.ActiveExists(ctx, resourceKey, date, timeSlot, "")
	if err != nil {
		return nil, fmt.Errorf("reservation occupancy check failed: %w", err)
	}
	if booked {
		return nil, newDeniedError("slot is already booked")
	}

	now := m.now()
	res := models.SlotReservation{
		ReservationID: uuid.New().String(),
		SubjectID:     subjectID,
		ResourceKey:   resourceKey,
		Date:          date,
		TimeSlot:      timeSlot,
		ExpiresAt:     now.Add(m.TTL),
	}
	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reservation: %w", err)
	}

	key := slotKey(resourceKey, date, timeSlot)
	acquired, err := m.Cache.SetNX(ctx, key, data, m.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to store reservation: %w", err)
	}
	if !acquired {
		// The key may belong to a hold whose TTL has not fired yet but whose
		// wall-clock expiry has passed. An expired hold never blocks.
		existing, err := m.readReservation(ctx, key)
		if err == nil && existing != nil && !existing.Expired(now) {
			return nil, newDeniedError("slot is currently reserved by another patient")
		}
		if err := m.Cache.Set(ctx, key, data, m.TTL).Err(); err != nil {
			return nil, fmt.Errorf("failed to supersede expired reservation: %w", err)
		}
	}

	if err := m.Cache.Set(ctx, reservationIDKey(res.ReservationID), key, m.TTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to index reservation by id",
			zap.String("reservationId", res.ReservationID), zap.Error(err))
	}
	return &res, nil
}

// Release drops a hold early. Releasing an expired or unknown reservation is
// a no-op.
func (m *DefaultSlotReservationManager) Release(ctx context.Context, reservationID string) error {
	key, err := m.Cache.Get(ctx, reservationIDKey(reservationID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve reservation %s: %w", reservationID, err)
	}

	// Only delete the hold if it still belongs to this reservation; a newer
	// hold on the same slot must survive.
	existing, err := m.readReservation(ctx, key)
	if err != nil || existing == nil || existing.ReservationID != reservationID {
		return m.Cache.Del(ctx, reservationIDKey(reservationID)).Err()
	}
	return m.Cache.Del(ctx, key, reservationIDKey(reservationID)).Err()
}

// IsHeld reports whether a non-expired reservation or an active booking
// occupies the slot.
func (m *DefaultSlotReservationManager) IsHeld(ctx context.Context, resourceKey, date, timeSlot string) (bool, error) {
	existing, err := m.readReservation(ctx, slotKey(resourceKey, date, timeSlot))
	if err != nil {
		return false, err
	}
	if existing != nil && !existing.Expired(m.now()) {
		return true, nil
	}
	return m.Repo.ActiveExists(ctx, resourceKey, date, timeSlot, "")
}

func (m *DefaultSlotReservationManager) readReservation(ctx context.Context, key string) (*models.SlotReservation, error) {
	data, err := m.Cache.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read reservation: %w", err)
	}
	var res models.SlotReservation
	if err := json.Unmarshal([]byte(data), &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reservation: %w", err)
	}
	return &res, nil
}

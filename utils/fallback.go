// File: utils/fallback.go
package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clinicbook/models"

	"github.com/go-redis/redis/v8"
)

// SaveFallbackBooking stores a booking candidate on the host-side fallback
// surface while the persistence gateway is unreachable. The record is tagged
// pendingSync and is never consulted for slot uniqueness.
func SaveFallbackBooking(client *redis.Client, b *models.Booking) error {
	b.PendingSync = true
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal fallback booking: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Set(ctx, FallbackBookingPrefix+b.ID, data, FallbackBookingTTL).Err(); err != nil {
		return fmt.Errorf("failed to save fallback booking: %w", err)
	}
	return nil
}

// ListFallbackBookings returns every booking still awaiting reconciliation.
func ListFallbackBookings(ctx context.Context, client *redis.Client) ([]models.Booking, error) {
	keys, err := client.Keys(ctx, FallbackBookingPrefix+"*").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list fallback bookings: %w", err)
	}
	bookings := make([]models.Booking, 0, len(keys))
	for _, key := range keys {
		data, err := client.Get(ctx, key).Result()
		if err != nil {
			continue
		}
		var b models.Booking
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			continue
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

// DropFallbackBooking removes a reconciled record from the fallback surface.
func DropFallbackBooking(ctx context.Context, client *redis.Client, bookingID string) error {
	return client.Del(ctx, FallbackBookingPrefix+bookingID).Err()
}

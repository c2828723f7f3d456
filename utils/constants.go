// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// SlotReservationPrefix keys an advisory reservation by its slot.
const SlotReservationPrefix = "slotres:"

// SlotReservationIDPrefix maps a reservation ID back to its slot key, so an
// explicit release does not need the slot coordinates.
const SlotReservationIDPrefix = "slotresid:"

// FallbackBookingPrefix keys bookings written through the fallback cache
// while the persistence gateway is unreachable.
const FallbackBookingPrefix = "fallbackBooking:"

// FallbackBookingTTL bounds how long an unreconciled fallback write survives.
const FallbackBookingTTL = 48 * time.Hour

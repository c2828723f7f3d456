// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"clinicbook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// ReservationCacheClient holds advisory slot reservations.
	ReservationCacheClient *redis.Client
	// AuthCacheClient is the dedicated client for authorization caching.
	AuthCacheClient *redis.Client
	// FallbackCacheClient is the host-side fallback surface used only when
	// the persistence gateway is unreachable.
	FallbackCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitReservationCache initializes the Redis client backing slot reservations.
func InitReservationCache() {
	ReservationCacheClient = newRedisClient(config.AppConfig.RedisReservationDB)
	mustPing(ReservationCacheClient, "Reservations")
}

// GetReservationCacheClient returns the reservation cache client.
func GetReservationCacheClient() *redis.Client {
	if ReservationCacheClient == nil {
		InitReservationCache()
	}
	return ReservationCacheClient
}

// InitAuthCache initializes the Redis client for authorization caching.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	mustPing(AuthCacheClient, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for authorization caching.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitFallbackCache initializes the Redis client for the offline fallback surface.
func InitFallbackCache() {
	FallbackCacheClient = newRedisClient(config.AppConfig.RedisFallbackDB)
	mustPing(FallbackCacheClient, "Fallback Cache")
}

// GetFallbackCacheClient returns the fallback cache client.
func GetFallbackCacheClient() *redis.Client {
	if FallbackCacheClient == nil {
		InitFallbackCache()
	}
	return FallbackCacheClient
}

// InitRedis brings up every Redis client the service uses.
func InitRedis() {
	InitReservationCache()
	InitAuthCache()
	InitFallbackCache()
}

package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Persistence gateway.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	RedisReservationDB int    `mapstructure:"REDIS_RESERVATION_DB"`
	RedisAuthDB        int    `mapstructure:"REDIS_AUTH_DB"`
	RedisFallbackDB    int    `mapstructure:"REDIS_FALLBACK_DB"`
	RedisSweepQueueDB  int    `mapstructure:"REDIS_SWEEP_QUEUE_DB"`

	// Identity and admin auth.
	JWTSecret  string `mapstructure:"JWT_SECRET"`
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	// Check-in token material.
	CheckinTokenSecret   string `mapstructure:"CHECKIN_TOKEN_SECRET"`
	CheckinTokenSealKey  string `mapstructure:"CHECKIN_TOKEN_SEAL_KEY"`
	TokenValidityHours   int    `mapstructure:"TOKEN_VALIDITY_HOURS"`
	TokenClockSkewMin    int    `mapstructure:"TOKEN_CLOCK_SKEW_MIN"`

	// Booking policy.
	AutoConfirm             bool `mapstructure:"AUTO_CONFIRM"`
	ReservationTTLMin       int  `mapstructure:"RESERVATION_TTL_MIN"`
	NoShowGraceMin          int  `mapstructure:"NOSHOW_GRACE_MIN"`
	SweepIntervalMin        int  `mapstructure:"SWEEP_INTERVAL_MIN"`
	BookingMaxRetries       int  `mapstructure:"BOOKING_MAX_RETRIES"`
	AlternativeLookaheadDays int `mapstructure:"ALTERNATIVE_LOOKAHEAD_DAYS"`
	AlternativeMaxCount     int  `mapstructure:"ALTERNATIVE_MAX_COUNT"`

	// Clinic slot grid.
	ClinicOpen      string `mapstructure:"CLINIC_OPEN"`
	ClinicClose     string `mapstructure:"CLINIC_CLOSE"`
	SlotMinutes     int    `mapstructure:"SLOT_MINUTES"`
	MaxRequestsPerMin int  `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Firebase push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "clinicbook")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_RESERVATION_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_FALLBACK_DB", 2)
	viper.SetDefault("REDIS_SWEEP_QUEUE_DB", 3)
	viper.SetDefault("TOKEN_VALIDITY_HOURS", 24)
	viper.SetDefault("TOKEN_CLOCK_SKEW_MIN", 2)
	viper.SetDefault("AUTO_CONFIRM", true)
	viper.SetDefault("RESERVATION_TTL_MIN", 5)
	viper.SetDefault("NOSHOW_GRACE_MIN", 30)
	viper.SetDefault("SWEEP_INTERVAL_MIN", 60)
	viper.SetDefault("BOOKING_MAX_RETRIES", 3)
	viper.SetDefault("ALTERNATIVE_LOOKAHEAD_DAYS", 7)
	viper.SetDefault("ALTERNATIVE_MAX_COUNT", 6)
	viper.SetDefault("CLINIC_OPEN", "09:00")
	viper.SetDefault("CLINIC_CLOSE", "17:00")
	viper.SetDefault("SLOT_MINUTES", 30)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// ReservationTTL returns the advisory slot-hold lifetime.
func ReservationTTL() time.Duration {
	return time.Duration(AppConfig.ReservationTTLMin) * time.Minute
}

// TokenValidity returns the check-in credential validity window.
func TokenValidity() time.Duration {
	return time.Duration(AppConfig.TokenValidityHours) * time.Hour
}

// NoShowGrace returns how long past the appointment start a booking may stay
// unattended before the sweep marks it a no-show.
func NoShowGrace() time.Duration {
	return time.Duration(AppConfig.NoShowGraceMin) * time.Minute
}

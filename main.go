package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinicbook/config"
	"clinicbook/cron"
	"clinicbook/database"
	bookingRepo "clinicbook/database/repository/booking"
	"clinicbook/handlers"
	"clinicbook/routes"
	"clinicbook/services/booking"
	"clinicbook/services/notification"
	"clinicbook/services/reservation"
	"clinicbook/services/token"
	"clinicbook/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()

	// Repositories.
	repo := bookingRepo.NewMongoBookingRepo()
	if err := repo.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}

	// Services.
	codec := token.NewCodec(
		config.AppConfig.CheckinTokenSecret,
		config.AppConfig.CheckinTokenSealKey,
		config.TokenValidity(),
		time.Duration(config.AppConfig.TokenClockSkewMin)*time.Minute,
	)

	reservationManager := reservation.NewDefaultSlotReservationManager(
		utils.GetReservationCacheClient(),
		repo,
		config.ReservationTTL(),
	)

	var notifier notification.Dispatcher = notification.NoopDispatcher{}
	if utils.FCMClient != nil {
		notifier = notification.NewFCMDispatcher()
	}

	bookingService := booking.NewDefaultBookingService(repo, codec, reservationManager, notifier, booking.Policy{
		AutoConfirm:     config.AppConfig.AutoConfirm,
		NoShowGrace:     config.NoShowGrace(),
		MaxAttempts:     config.AppConfig.BookingMaxRetries,
		LookaheadDays:   config.AppConfig.AlternativeLookaheadDays,
		MaxAlternatives: config.AppConfig.AlternativeMaxCount,
		ClinicOpen:      config.AppConfig.ClinicOpen,
		ClinicClose:     config.AppConfig.ClinicClose,
		SlotMinutes:     config.AppConfig.SlotMinutes,
	})

	// Background reconciliation.
	cron.InitSweepWorker(bookingService)
	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetReservationCacheClient(), utils.GetFallbackCacheClient()},
		database.MongoClient,
	)

	// HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(bookingService, reservationManager)
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}

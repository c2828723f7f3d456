package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"clinicbook/config"
	"clinicbook/services/booking"
	"clinicbook/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeNoShowSweep = "sweep:noshow"

// InitSweepWorker starts the async worker and the periodic scheduler that
// enqueues no-show sweep runs on the configured interval.
func InitSweepWorker(bookingSvc booking.BookingService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeNoShowSweep, handleSweepTask(bookingSvc))

	go func() {
		log.Println("[SweepWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[SweepWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[SweepWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go runSweepScheduler(redisOpts)
}

// runSweepScheduler registers the periodic sweep entry. Task uniqueness keeps
// overlapping runs out of the queue when a sweep outlasts the interval.
func runSweepScheduler(redisOpts asynq.RedisClientOpt) {
	interval := config.AppConfig.SweepIntervalMin
	if interval <= 0 {
		interval = 60
	}

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	spec := fmt.Sprintf("@every %dm", interval)
	task := asynq.NewTask(TypeNoShowSweep, nil)
	if _, err := scheduler.Register(spec, task, asynq.Unique(time.Duration(interval)*time.Minute)); err != nil {
		log.Fatalf("[SweepScheduler] ❗ Failed to register sweep entry: %v", err)
	}

	log.Printf("[SweepScheduler] ⏰ Sweep scheduled every %d minutes", interval)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("[SweepScheduler] ❗ Scheduler stopped: %v", err)
	}
}

func handleSweepTask(bookingSvc booking.BookingService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		result, err := bookingSvc.RunNoShowSweep(ctx)
		if err != nil {
			logger.Error("No-show sweep run failed", zap.Error(err))
			return err
		}

		if len(result.Failures) > 0 {
			logger.Warn("No-show sweep finished with partial failures",
				zap.Int("processed", result.ProcessedCount),
				zap.Int("failed", len(result.Failures)))
		}
		return nil
	}
}

// Command statussweep runs one check-in/check-out sweep and exits. It is
// meant for cron or a Kubernetes CronJob when the server's own ticker is off.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"hotel-ops/config"
	"hotel-ops/events"
	"hotel-ops/jobs"
	"hotel-ops/services"
)

func main() {
	config.LoadDotEnv()
	settings := config.Load()
	// A one-shot run must not re-seed a production database.
	settings.DBSeed = false

	store, db, err := config.ConnectDatabase(settings)
	if err != nil {
		log.Fatalf("❌ Database connect failed: %v", err)
	}
	defer config.CloseDatabase(db)

	publisher, closePublisher, err := events.Connect(settings.AMQPURL, settings.AMQPExchange)
	if err != nil {
		log.Fatalf("❌ Event publisher failed: %v", err)
	}
	defer closePublisher()

	var locker jobs.Locker
	redisClient, err := config.ConnectRedis(settings)
	if err != nil {
		log.Fatalf("❌ Redis connect failed: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = jobs.NewRedisLocker(redisClient, 10*time.Minute)
	}

	bookingService := services.NewBookingService(store, publisher)
	bookingService.DefaultLocation = settings.DefaultTimezone
	bookingService.SweepBatchSize = settings.SweepBatchSize

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	res, err := jobs.NewSweeper(bookingService, locker, 0).RunOnce(ctx)
	if err != nil {
		if errors.Is(err, jobs.ErrSweepBusy) {
			log.Println("ℹ️ another sweep holds the lock; nothing to do")
			return
		}
		log.Printf("❌ status sweep failed: %v", err)
		os.Exit(1)
	}

	out, _ := json.Marshal(res)
	log.Printf("✅ status sweep done: %s", out)
	if len(res.Failed) > 0 {
		os.Exit(2)
	}
}

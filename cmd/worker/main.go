package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n3on404/loauj-local-node-sub001/config"
	"github.com/n3on404/loauj-local-node-sub001/internal/cache"
	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
	"github.com/n3on404/loauj-local-node-sub001/internal/notify"
	"github.com/n3on404/loauj-local-node-sub001/internal/repository"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/transfer"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	schedule, err := transfer.ParseSchedule(cfg.Station.OpeningTime, cfg.Station.ClosingTime)
	if err != nil {
		log.Fatalf("station schedule: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	station := domain.StationContext{
		StationID:          cfg.Station.StationID,
		StationName:        cfg.Station.StationName,
		MaxSeatsPerBooking: cfg.Station.MaxSeatsPerBooking,
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Station.PriceCacheTTL)*time.Second)

	queueRepo := repository.NewQueueRepository(pool)
	transferService := transfer.NewTransferService(station, queueRepo, redisCache, producer, cfg.Kafka.EventsTopic)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.EventsTopic)
	defer consumer.Close()

	dashboard := notify.NewDashboardNotifier()

	go func() {
		if err := consumer.Consume(ctx, dashboard.Notify); err != nil {
			log.Printf("consumer stopped: %v", err)
		}
	}()

	// Two triggers feed the same guarded run: the opening-time check and
	// a safety-net sweep that catches a missed or skipped opening.
	checkTicker := time.NewTicker(time.Duration(cfg.Worker.TransferCheckMinutes) * time.Minute)
	defer checkTicker.Stop()
	sweepTicker := time.NewTicker(time.Duration(cfg.Worker.SafetySweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	var lastRun time.Time

	runTransfer := func(trigger string) {
		report, err := transferService.Run(ctx)
		if err != nil {
			if transfer.IsSoftSkip(err) {
				log.Printf("%s: transfer already running, skipped", trigger)
				return
			}
			log.Printf("%s: transfer error: %v", trigger, err)
			return
		}
		lastRun = time.Now()
		if report.Total > 0 {
			log.Printf("%s: transferred %d overnight vehicle(s) across %d destination(s)", trigger, report.Total, len(report.Transferred))
		}
		for _, dest := range report.Failed {
			log.Printf("%s: destination %s failed, next sweep will retry", trigger, dest)
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-checkTicker.C:
			if schedule.OpeningDue(time.Now(), lastRun) {
				runTransfer("opening-time transfer")
			}
		case <-sweepTicker.C:
			if schedule.WithinOperatingHours(time.Now()) {
				runTransfer("safety sweep")
			}
		case s := <-sig:
			log.Printf("received signal %v, shutting down", s)
			return
		}
	}
}

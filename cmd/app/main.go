package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/n3on404/loauj-local-node-sub001/api"
	"github.com/n3on404/loauj-local-node-sub001/config"
	"github.com/n3on404/loauj-local-node-sub001/internal/bootstrap"
	"github.com/n3on404/loauj-local-node-sub001/internal/cache"
	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
	"github.com/n3on404/loauj-local-node-sub001/internal/kafka"
	"github.com/n3on404/loauj-local-node-sub001/internal/repository"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/booking"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/pricing"
	"github.com/n3on404/loauj-local-node-sub001/internal/service/queue"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Station.PriceCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	queueRepo := repository.NewQueueRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	vehicleRepo := repository.NewVehicleRepository(pool)
	routeRepo := repository.NewRouteRepository(pool)

	pricingService := pricing.NewPricingService(routeRepo, redisCache)
	queueService := queue.NewQueueService(
		station,
		queueRepo,
		vehicleRepo,
		pricingService,
		producer,
		cfg.Kafka.EventsTopic,
		queue.WithTripsTopic(cfg.Kafka.TripsTopic),
	)
	bookingService := booking.NewBookingService(
		station,
		bookingRepo,
		queueRepo,
		producer,
		cfg.Kafka.EventsTopic,
		booking.WithTripsTopic(cfg.Kafka.TripsTopic),
	)

	queueHandler := api.NewQueueHandler(queueService)
	bookingHandler := api.NewBookingHandler(bookingService)
	routeHandler := api.NewRouteHandler(pricingService)
	vehicleHandler := api.NewVehicleHandler(vehicleRepo)

	if err := bootstrap.Run(ctx, cfg, queueHandler, bookingHandler, routeHandler, vehicleHandler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

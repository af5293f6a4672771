package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahirTaj/BashaLagbe-sub000/api"
	"github.com/mahirTaj/BashaLagbe-sub000/config"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/auth"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/bootstrap"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/cache"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/kafka"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/pkg/logger"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/repository"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/service/reservation"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/service/slots"
	"go.uber.org/zap"
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

	zlog := logger.New(cfg.Env)
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Slots.CacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	txManager := repository.NewTxManager(pool)
	listingDir := repository.NewListingDirectory(pool)

	slotService := slots.NewSlotService(
		slotRepo,
		bookingRepo,
		txManager,
		listingDir,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		zlog,
		slots.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)
	reservationService := reservation.NewReservationService(
		slotRepo,
		bookingRepo,
		txManager,
		redisCache,
		producer,
		cfg.Kafka.BookingEventsTopic,
		time.Duration(cfg.Reminder.WindowHours)*time.Hour,
		zlog,
		reservation.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	resolver := auth.NewHTTPResolver(cfg.Auth.VerifyURL)
	slotHandler := api.NewSlotHandler(slotService)
	bookingHandler := api.NewBookingHandler(reservationService)

	if err := bootstrap.Run(ctx, cfg, zlog, resolver, slotHandler, bookingHandler); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}

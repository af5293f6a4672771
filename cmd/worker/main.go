package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahirTaj/BashaLagbe-sub000/config"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/kafka"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/notify"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/pkg/logger"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/repository"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/service/reservation"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zlog.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	slotRepo := repository.NewSlotRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	txManager := repository.NewTxManager(pool)

	reservationService := reservation.NewReservationService(
		slotRepo,
		bookingRepo,
		txManager,
		nil,
		nil,
		"",
		time.Duration(cfg.Reminder.WindowHours)*time.Hour,
		zlog,
	)

	notifier := notify.NewEmailSender(zlog)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zlog)
	defer consumer.Close()

	go func() {
		if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
			return notifier.Notify(ctx, event.TenantContact, subjectFor(event), bodyFor(event))
		}); err != nil {
			zlog.Warn("consumer stopped", zap.Error(err))
		}
	}()

	sweepTicker := time.NewTicker(time.Duration(cfg.Reminder.SweepMinutes) * time.Minute)
	defer sweepTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sweepTicker.C:
			runReminderSweep(ctx, zlog, reservationService, notifier)
		case s := <-sig:
			zlog.Info("received signal, shutting down", zap.String("signal", s.String()))
			return
		}
	}
}

// runReminderSweep dispatches first and marks second: a crash in between
// leaves the flag unset and the next sweep retries the notification.
func runReminderSweep(ctx context.Context, zlog *zap.Logger, svc reservation.ReservationUseCase, notifier notify.Notifier) {
	items, err := svc.DueReminders(ctx, time.Now())
	if err != nil {
		zlog.Warn("reminder sweep query failed", zap.Error(err))
		return
	}

	sent := 0
	for _, item := range items {
		subject := "Move-in reminder"
		body := fmt.Sprintf("Reminder: your move-in appointment for listing %d starts at %s.",
			item.ListingID, item.SlotStart.Format(time.RFC1123))
		if err := notifier.Notify(ctx, item.TenantContact, subject, body); err != nil {
			zlog.Warn("reminder dispatch failed", zap.Int64("booking_id", item.BookingID), zap.Error(err))
			continue
		}
		if err := svc.MarkReminderSent(ctx, item.BookingID); err != nil {
			zlog.Warn("mark reminder failed", zap.Int64("booking_id", item.BookingID), zap.Error(err))
			continue
		}
		sent++
	}
	if len(items) > 0 {
		zlog.Info("reminder sweep finished", zap.Int("due", len(items)), zap.Int("sent", sent))
	}
}

func subjectFor(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return "Move-in slot booked"
	case kafka.EventBookingCancelled:
		return "Move-in booking cancelled"
	case kafka.EventSlotDeleted:
		return "Move-in slot removed"
	case kafka.EventMoveInReminder:
		return "Move-in reminder"
	default:
		return "Move-in slot update"
	}
}

func bodyFor(event kafka.BookingEvent) string {
	return fmt.Sprintf("Booking %s on listing %d: slot %s - %s is now %s.",
		event.Reference, event.ListingID,
		event.Start.Format(time.RFC1123), event.End.Format(time.RFC1123),
		event.Status)
}

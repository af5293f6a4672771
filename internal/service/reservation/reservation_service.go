package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/kafka"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/repository"
	"go.uber.org/zap"
)

type ReservationUseCase interface {
	BookSlot(ctx context.Context, input BookSlotInput) (*domain.Booking, error)
	CancelBooking(ctx context.Context, reference string, requesterID int64) (*domain.Booking, error)
	DueReminders(ctx context.Context, now time.Time) ([]domain.ReminderItem, error)
	MarkReminderSent(ctx context.Context, bookingID int64) error
}

type Cache interface {
	InvalidateSlotViews(ctx context.Context, listingID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReservationService struct {
	slots              repository.SlotRepository
	bookings           repository.BookingRepository
	tx                 repository.TxManager
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	reminderWindow     time.Duration
	log                *zap.Logger
}

type ReservationServiceOption func(*ReservationService)

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

func NewReservationService(
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	tx repository.TxManager,
	cache Cache,
	producer Producer,
	eventsTopic string,
	reminderWindow time.Duration,
	log *zap.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &ReservationService{
		slots:          slots,
		bookings:       bookings,
		tx:             tx,
		cache:          cache,
		producer:       producer,
		eventsTopic:    eventsTopic,
		reminderWindow: reminderWindow,
		log:            log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type BookSlotInput struct {
	SlotID        int64  `json:"slot_id"`
	TenantID      int64  `json:"tenant_id"`
	TenantName    string `json:"tenant_name"`
	TenantContact string `json:"tenant_contact"`
}

// BookSlot validates and commits a booking in one serializable unit of work.
// The slot row is locked before any read the decision depends on, so
// competing requests for the same slot queue up behind the lock; tenant
// reads always happen after the slot lock, keeping the lock order constant
// across transactions. Serialization conflicts retry the whole unit.
func (s *ReservationService) BookSlot(ctx context.Context, input BookSlotInput) (*domain.Booking, error) {
	booking := &domain.Booking{
		Reference:     uuid.NewString(),
		SlotID:        input.SlotID,
		TenantID:      input.TenantID,
		TenantName:    input.TenantName,
		TenantContact: input.TenantContact,
	}

	var slot *domain.Slot
	err := s.tx.Serializable(ctx, func(tx pgx.Tx) error {
		var err error
		slot, err = s.slots.GetByIDForUpdate(ctx, tx, input.SlotID)
		if err != nil {
			return err
		}
		if input.TenantID == slot.LandlordID {
			return domain.ErrSelfBookingForbidden
		}

		count, err := s.bookings.CountActiveTx(ctx, tx, slot.ID)
		if err != nil {
			return err
		}
		if count >= slot.Capacity {
			return domain.ErrSlotFull
		}

		exists, err := s.bookings.ActiveExistsTx(ctx, tx, slot.ID, input.TenantID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateBooking
		}

		others, err := s.bookings.ListActiveIntervalsTx(ctx, tx, input.TenantID)
		if err != nil {
			return err
		}
		for _, iv := range others {
			if domain.Overlaps(slot.Start, slot.End, iv.Start, iv.End) {
				return domain.ErrOverlappingBooking
			}
		}

		booking.ListingID = slot.ListingID
		return s.bookings.InsertActiveTx(ctx, tx, booking)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateSlotViews(ctx, slot.ListingID)
	}
	s.publish(ctx, kafka.EventBookingCreated, booking, slot)
	s.log.Info("slot booked",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("tenant_id", input.TenantID),
		zap.String("reference", booking.Reference),
	)
	return booking, nil
}

// CancelBooking flips an active booking to cancelled. Only the booking's
// tenant or the slot's landlord may cancel; anyone else gets not-found so
// booking existence is never leaked to non-participants.
func (s *ReservationService) CancelBooking(ctx context.Context, reference string, requesterID int64) (*domain.Booking, error) {
	// References are UUIDs; anything else cannot match a booking and would
	// only trip the column's type check.
	if _, err := uuid.Parse(reference); err != nil {
		return nil, domain.ErrBookingNotFound
	}

	var booking *domain.Booking
	var slot *domain.Slot

	err := s.tx.Serializable(ctx, func(tx pgx.Tx) error {
		var err error
		booking, err = s.bookings.GetByReferenceTx(ctx, tx, reference)
		if err != nil {
			return err
		}

		allowed := booking.TenantID == requesterID
		slot, err = s.slots.GetByIDForUpdate(ctx, tx, booking.SlotID)
		switch {
		case err == nil:
			allowed = allowed || slot.LandlordID == requesterID
		case errors.Is(err, domain.ErrSlotNotFound):
			// Slot already deleted; only the tenant remains a participant.
			slot = nil
		default:
			return err
		}
		if !allowed {
			return domain.ErrBookingNotFound
		}
		if booking.Status != domain.BookingStatusActive {
			return domain.ErrAlreadyCancelled
		}
		if err := s.bookings.CancelTx(ctx, tx, booking.ID); err != nil {
			return err
		}
		booking.Status = domain.BookingStatusCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateSlotViews(ctx, booking.ListingID)
	}
	s.publish(ctx, kafka.EventBookingCancelled, booking, slot)
	s.log.Info("booking cancelled",
		zap.String("reference", booking.Reference),
		zap.Int64("requester_id", requesterID),
	)
	return booking, nil
}

// DueReminders lists active bookings whose slot starts within the reminder
// window and which have not been notified yet. The sweep scheduler calls
// this, dispatches through the Notifier, then marks each booking.
func (s *ReservationService) DueReminders(ctx context.Context, now time.Time) ([]domain.ReminderItem, error) {
	return s.bookings.DueReminders(ctx, now, s.reminderWindow)
}

// MarkReminderSent must only be called after a dispatch attempt completed.
// A crash between dispatch and marking leaves the flag unset and the next
// sweep retries.
func (s *ReservationService) MarkReminderSent(ctx context.Context, bookingID int64) error {
	return s.bookings.MarkReminderSent(ctx, bookingID)
}

func (s *ReservationService) publish(ctx context.Context, eventType string, booking *domain.Booking, slot *domain.Slot) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:          eventType,
		Reference:     booking.Reference,
		SlotID:        booking.SlotID,
		ListingID:     booking.ListingID,
		TenantContact: booking.TenantContact,
		Status:        string(booking.Status),
	}
	if slot != nil {
		event.Start = slot.Start
		event.End = slot.End
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.Reference, event); err != nil {
		s.log.Warn("failed to publish booking event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, booking.Reference, event); err != nil {
			s.log.Warn("failed to publish notification event", zap.String("type", eventType), zap.Error(err))
		}
	}
}

var _ ReservationUseCase = (*ReservationService)(nil)

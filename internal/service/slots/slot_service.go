package slots

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/kafka"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/repository"
	"go.uber.org/zap"
)

type SlotUseCase interface {
	CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error)
	DeleteSlot(ctx context.Context, slotID, landlordID int64) error
	ListSlots(ctx context.Context, listingID int64) ([]domain.SlotView, error)
	ListBookings(ctx context.Context, slotID, requesterID int64) ([]domain.Booking, error)
}

// ListingDirectory resolves listing ownership. Listing CRUD lives in an
// external service; the engine only asks who owns a listing.
type ListingDirectory interface {
	OwnerOf(ctx context.Context, listingID int64) (int64, error)
}

type Cache interface {
	GetSlotViews(ctx context.Context, listingID int64) ([]domain.SlotView, error)
	SetSlotViews(ctx context.Context, listingID int64, views []domain.SlotView) error
	InvalidateSlotViews(ctx context.Context, listingID int64) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type SlotService struct {
	slots              repository.SlotRepository
	bookings           repository.BookingRepository
	tx                 repository.TxManager
	listings           ListingDirectory
	cache              Cache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	log                *zap.Logger
}

type SlotServiceOption func(*SlotService)

func WithNotificationsTopic(topic string) SlotServiceOption {
	return func(s *SlotService) {
		s.notificationsTopic = topic
	}
}

func NewSlotService(
	slots repository.SlotRepository,
	bookings repository.BookingRepository,
	tx repository.TxManager,
	listings ListingDirectory,
	cache Cache,
	producer Producer,
	eventsTopic string,
	log *zap.Logger,
	opts ...SlotServiceOption,
) *SlotService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &SlotService{
		slots:       slots,
		bookings:    bookings,
		tx:          tx,
		listings:    listings,
		cache:       cache,
		producer:    producer,
		eventsTopic: eventsTopic,
		log:         log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

type CreateSlotInput struct {
	ListingID  int64     `json:"listing_id"`
	LandlordID int64     `json:"landlord_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Capacity   int       `json:"capacity"`
}

func (s *SlotService) CreateSlot(ctx context.Context, input CreateSlotInput) (*domain.Slot, error) {
	if !input.Start.Before(input.End) {
		return nil, domain.ErrInvalidTimeRange
	}
	if input.Capacity < 1 {
		return nil, domain.ErrInvalidCapacity
	}

	owner, err := s.listings.OwnerOf(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}
	if owner != input.LandlordID {
		return nil, domain.ErrNotOwner
	}

	slot := &domain.Slot{
		ListingID:  input.ListingID,
		LandlordID: input.LandlordID,
		Start:      input.Start,
		End:        input.End,
		Capacity:   input.Capacity,
	}

	// The overlap check and the insert share one serializable unit so two
	// concurrent creates by the same landlord cannot both slip through.
	err = s.tx.Serializable(ctx, func(tx pgx.Tx) error {
		existing, err := s.slots.ListOwnedTx(ctx, tx, input.ListingID, input.LandlordID)
		if err != nil {
			return err
		}
		for _, other := range existing {
			if domain.Overlaps(slot.Start, slot.End, other.Start, other.End) {
				return domain.ErrSlotOverlap
			}
		}
		return s.slots.CreateTx(ctx, tx, slot)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateSlotViews(ctx, slot.ListingID)
	}
	s.log.Info("slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("listing_id", slot.ListingID),
		zap.Int("capacity", slot.Capacity),
	)
	return slot, nil
}

// DeleteSlot cascades as an explicit two-step operation inside one unit of
// work: cancel every active booking, then remove the slot. Events for the
// cancelled bookings go out only after the transaction commits.
func (s *SlotService) DeleteSlot(ctx context.Context, slotID, landlordID int64) error {
	var slot *domain.Slot
	var cancelled []domain.Booking

	err := s.tx.Serializable(ctx, func(tx pgx.Tx) error {
		var err error
		slot, err = s.slots.GetByIDForUpdate(ctx, tx, slotID)
		if err != nil {
			return err
		}
		if slot.LandlordID != landlordID {
			return domain.ErrNotOwner
		}
		cancelled, err = s.bookings.CancelAllForSlotTx(ctx, tx, slotID)
		if err != nil {
			return err
		}
		return s.slots.DeleteTx(ctx, tx, slotID)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		_ = s.cache.InvalidateSlotViews(ctx, slot.ListingID)
	}
	for i := range cancelled {
		s.publish(ctx, kafka.EventBookingCancelled, &cancelled[i], slot)
	}
	s.publish(ctx, kafka.EventSlotDeleted, nil, slot)
	s.log.Info("slot deleted",
		zap.Int64("slot_id", slotID),
		zap.Int("cancelled_bookings", len(cancelled)),
	)
	return nil
}

// ListSlots is the public view: slots plus committed booked counts, no
// tenant identities. Served cache-aside per listing.
func (s *SlotService) ListSlots(ctx context.Context, listingID int64) ([]domain.SlotView, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetSlotViews(ctx, listingID); err == nil && cached != nil {
			return cached, nil
		}
	}

	slots, err := s.slots.ListByListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	counts, err := s.bookings.CountActivePerSlot(ctx, listingID)
	if err != nil {
		return nil, err
	}

	views := make([]domain.SlotView, 0, len(slots))
	for _, slot := range slots {
		booked := counts[slot.ID]
		views = append(views, domain.SlotView{
			Slot:        slot,
			BookedCount: booked,
			Remaining:   slot.Capacity - booked,
		})
	}

	if s.cache != nil {
		_ = s.cache.SetSlotViews(ctx, listingID, views)
	}
	return views, nil
}

// ListBookings exposes tenant identity and contact data, so only the slot's
// landlord may call it.
func (s *SlotService) ListBookings(ctx context.Context, slotID, requesterID int64) ([]domain.Booking, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if slot.LandlordID != requesterID {
		return nil, domain.ErrNotOwner
	}
	return s.bookings.ListActiveForSlot(ctx, slotID)
}

func (s *SlotService) publish(ctx context.Context, eventType string, booking *domain.Booking, slot *domain.Slot) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:      eventType,
		SlotID:    slot.ID,
		ListingID: slot.ListingID,
		Start:     slot.Start,
		End:       slot.End,
	}
	key := strconv.FormatInt(slot.ID, 10)
	if booking != nil {
		event.Reference = booking.Reference
		event.TenantContact = booking.TenantContact
		event.Status = string(booking.Status)
		key = booking.Reference
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		s.log.Warn("failed to publish slot event", zap.String("type", eventType), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("failed to publish notification event", zap.String("type", eventType), zap.Error(err))
		}
	}
}

var _ SlotUseCase = (*SlotService)(nil)

package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) CreateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error {
	args := m.Called(ctx, tx, slot)
	return args.Error(0)
}

func (m *MockSlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Slot, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) ListByListing(ctx context.Context, listingID int64) ([]domain.Slot, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) ListOwnedTx(ctx context.Context, tx pgx.Tx, listingID, landlordID int64) ([]domain.Slot, error) {
	args := m.Called(ctx, tx, listingID, landlordID)
	return args.Get(0).([]domain.Slot), args.Error(1)
}

func (m *MockSlotRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	args := m.Called(ctx, tx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*domain.Booking, error) {
	args := m.Called(ctx, tx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountActiveTx(ctx context.Context, tx pgx.Tx, slotID int64) (int, error) {
	args := m.Called(ctx, tx, slotID)
	return args.Int(0), args.Error(1)
}

func (m *MockBookingRepository) ActiveExistsTx(ctx context.Context, tx pgx.Tx, slotID, tenantID int64) (bool, error) {
	args := m.Called(ctx, tx, slotID, tenantID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) ListActiveIntervalsTx(ctx context.Context, tx pgx.Tx, tenantID int64) ([]domain.SlotInterval, error) {
	args := m.Called(ctx, tx, tenantID)
	return args.Get(0).([]domain.SlotInterval), args.Error(1)
}

func (m *MockBookingRepository) CancelTx(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelAllForSlotTx(ctx context.Context, tx pgx.Tx, slotID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, tx, slotID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListActiveForSlot(ctx context.Context, slotID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, slotID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CountActivePerSlot(ctx context.Context, listingID int64) (map[int64]int, error) {
	args := m.Called(ctx, listingID)
	return args.Get(0).(map[int64]int), args.Error(1)
}

func (m *MockBookingRepository) DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]domain.ReminderItem, error) {
	args := m.Called(ctx, now, window)
	return args.Get(0).([]domain.ReminderItem), args.Error(1)
}

func (m *MockBookingRepository) MarkReminderSent(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) InvalidateSlotViews(ctx context.Context, listingID int64) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// passthroughTxManager runs the unit of work directly; the mocks stand in
// for the database state a real transaction would see.
type passthroughTxManager struct{}

func (passthroughTxManager) Serializable(ctx context.Context, fn func(pgx.Tx) error) error {
	return fn(nil)
}

const testReference = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"

func testSlot() *domain.Slot {
	return &domain.Slot{
		ID:         7,
		ListingID:  3,
		LandlordID: 100,
		Start:      time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC),
		Capacity:   2,
	}
}

func newTestService(slotRepo *MockSlotRepository, bookingRepo *MockBookingRepository, cache *MockCache, producer *MockProducer) *ReservationService {
	var c Cache
	if cache != nil {
		c = cache
	}
	var p Producer
	if producer != nil {
		p = producer
	}
	return NewReservationService(slotRepo, bookingRepo, passthroughTxManager{}, c, p, "booking-events", 24*time.Hour, nil)
}

func TestReservationService_BookSlot_Success(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(slotRepo, bookingRepo, cache, producer)

	ctx := context.Background()
	slot := testSlot()

	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CountActiveTx", ctx, mock.Anything, slot.ID).Return(0, nil).Once()
	bookingRepo.On("ActiveExistsTx", ctx, mock.Anything, slot.ID, int64(200)).Return(false, nil).Once()
	bookingRepo.On("ListActiveIntervalsTx", ctx, mock.Anything, int64(200)).Return([]domain.SlotInterval{}, nil).Once()
	bookingRepo.On("InsertActiveTx", ctx, mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	cache.On("InvalidateSlotViews", ctx, slot.ListingID).Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", mock.Anything, mock.Anything).Return(nil).Once()

	booking, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: 200, TenantContact: "tenant@example.com"})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusActive, booking.Status)
	assert.Equal(t, slot.ID, booking.SlotID)
	assert.Equal(t, slot.ListingID, booking.ListingID)
	assert.NotEmpty(t, booking.Reference)

	slotRepo.AssertExpectations(t)
	bookingRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestReservationService_BookSlot_SlotNotFound(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, int64(99)).Return(nil, domain.ErrSlotNotFound).Once()

	booking, err := service.BookSlot(ctx, BookSlotInput{SlotID: 99, TenantID: 200})

	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
	assert.Nil(t, booking)
	bookingRepo.AssertNotCalled(t, "InsertActiveTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_BookSlot_SelfBookingForbidden(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()

	_, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: slot.LandlordID})

	assert.ErrorIs(t, err, domain.ErrSelfBookingForbidden)
	bookingRepo.AssertNotCalled(t, "CountActiveTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_BookSlot_SlotFull(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CountActiveTx", ctx, mock.Anything, slot.ID).Return(slot.Capacity, nil).Once()

	_, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: 200})

	assert.ErrorIs(t, err, domain.ErrSlotFull)
	bookingRepo.AssertNotCalled(t, "InsertActiveTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_BookSlot_DuplicateBooking(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CountActiveTx", ctx, mock.Anything, slot.ID).Return(1, nil).Once()
	bookingRepo.On("ActiveExistsTx", ctx, mock.Anything, slot.ID, int64(200)).Return(true, nil).Once()

	_, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: 200})

	assert.ErrorIs(t, err, domain.ErrDuplicateBooking)
	bookingRepo.AssertNotCalled(t, "InsertActiveTx", mock.Anything, mock.Anything, mock.Anything)
}

// A tenant holding a booking on another listing whose slot interval clashes
// with the requested slot must be rejected.
func TestReservationService_BookSlot_OverlappingBooking(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	clashing := domain.SlotInterval{
		SlotID: 42,
		Start:  slot.Start.Add(30 * time.Minute),
		End:    slot.End.Add(30 * time.Minute),
	}

	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CountActiveTx", ctx, mock.Anything, slot.ID).Return(0, nil).Once()
	bookingRepo.On("ActiveExistsTx", ctx, mock.Anything, slot.ID, int64(200)).Return(false, nil).Once()
	bookingRepo.On("ListActiveIntervalsTx", ctx, mock.Anything, int64(200)).Return([]domain.SlotInterval{clashing}, nil).Once()

	_, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: 200})

	assert.ErrorIs(t, err, domain.ErrOverlappingBooking)
	bookingRepo.AssertNotCalled(t, "InsertActiveTx", mock.Anything, mock.Anything, mock.Anything)
}

// A booking on a back-to-back slot must not count as an overlap.
func TestReservationService_BookSlot_TouchingIntervalAllowed(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	adjacent := domain.SlotInterval{SlotID: 42, Start: slot.End, End: slot.End.Add(time.Hour)}

	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CountActiveTx", ctx, mock.Anything, slot.ID).Return(0, nil).Once()
	bookingRepo.On("ActiveExistsTx", ctx, mock.Anything, slot.ID, int64(200)).Return(false, nil).Once()
	bookingRepo.On("ListActiveIntervalsTx", ctx, mock.Anything, int64(200)).Return([]domain.SlotInterval{adjacent}, nil).Once()
	bookingRepo.On("InsertActiveTx", ctx, mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()

	_, err := service.BookSlot(ctx, BookSlotInput{SlotID: slot.ID, TenantID: 200})

	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
}

func TestReservationService_CancelBooking_ByTenant(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	cache := &MockCache{}
	producer := &MockProducer{}
	service := newTestService(slotRepo, bookingRepo, cache, producer)

	ctx := context.Background()
	slot := testSlot()
	booking := &domain.Booking{ID: 1, Reference: testReference, SlotID: slot.ID, ListingID: slot.ListingID, TenantID: 200, Status: domain.BookingStatusActive}

	bookingRepo.On("GetByReferenceTx", ctx, mock.Anything, testReference).Return(booking, nil).Once()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CancelTx", ctx, mock.Anything, booking.ID).Return(nil).Once()
	cache.On("InvalidateSlotViews", ctx, slot.ListingID).Return(nil).Once()
	producer.On("Publish", ctx, "booking-events", testReference, mock.Anything).Return(nil).Once()

	cancelled, err := service.CancelBooking(ctx, testReference, 200)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
	bookingRepo.AssertExpectations(t)
}

func TestReservationService_CancelBooking_ByLandlord(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	booking := &domain.Booking{ID: 1, Reference: testReference, SlotID: slot.ID, ListingID: slot.ListingID, TenantID: 200, Status: domain.BookingStatusActive}

	bookingRepo.On("GetByReferenceTx", ctx, mock.Anything, testReference).Return(booking, nil).Once()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()
	bookingRepo.On("CancelTx", ctx, mock.Anything, booking.ID).Return(nil).Once()

	_, err := service.CancelBooking(ctx, testReference, slot.LandlordID)

	assert.NoError(t, err)
	bookingRepo.AssertExpectations(t)
}

// Non-participants get not-found, never a hint that the booking exists.
func TestReservationService_CancelBooking_NotParticipant(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	booking := &domain.Booking{ID: 1, Reference: testReference, SlotID: slot.ID, TenantID: 200, Status: domain.BookingStatusActive}

	bookingRepo.On("GetByReferenceTx", ctx, mock.Anything, testReference).Return(booking, nil).Once()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()

	_, err := service.CancelBooking(ctx, testReference, 999)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	bookingRepo.AssertNotCalled(t, "CancelTx", mock.Anything, mock.Anything, mock.Anything)
}

// A reference that is not even UUID-shaped reads as not found without
// touching the database.
func TestReservationService_CancelBooking_MalformedReference(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	_, err := service.CancelBooking(context.Background(), "not-a-reference", 200)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	bookingRepo.AssertNotCalled(t, "GetByReferenceTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestReservationService_CancelBooking_AlreadyCancelled(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	slot := testSlot()
	booking := &domain.Booking{ID: 1, Reference: testReference, SlotID: slot.ID, TenantID: 200, Status: domain.BookingStatusCancelled}

	bookingRepo.On("GetByReferenceTx", ctx, mock.Anything, testReference).Return(booking, nil).Once()
	slotRepo.On("GetByIDForUpdate", ctx, mock.Anything, slot.ID).Return(slot, nil).Once()

	_, err := service.CancelBooking(ctx, testReference, 200)

	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestReservationService_DueReminders(t *testing.T) {
	slotRepo := &MockSlotRepository{}
	bookingRepo := &MockBookingRepository{}
	service := newTestService(slotRepo, bookingRepo, nil, nil)

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := []domain.ReminderItem{{BookingID: 5, Reference: "ref-5", TenantContact: "tenant@example.com"}}

	bookingRepo.On("DueReminders", ctx, now, 24*time.Hour).Return(due, nil).Once()

	items, err := service.DueReminders(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, due, items)
	bookingRepo.AssertExpectations(t)
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
)

type BookingRepository interface {
	InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	GetByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*domain.Booking, error)
	CountActiveTx(ctx context.Context, tx pgx.Tx, slotID int64) (int, error)
	ActiveExistsTx(ctx context.Context, tx pgx.Tx, slotID, tenantID int64) (bool, error)
	ListActiveIntervalsTx(ctx context.Context, tx pgx.Tx, tenantID int64) ([]domain.SlotInterval, error)
	CancelTx(ctx context.Context, tx pgx.Tx, id int64) error
	CancelAllForSlotTx(ctx context.Context, tx pgx.Tx, slotID int64) ([]domain.Booking, error)
	ListActiveForSlot(ctx context.Context, slotID int64) ([]domain.Booking, error)
	CountActivePerSlot(ctx context.Context, listingID int64) (map[int64]int, error)
	DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]domain.ReminderItem, error)
	MarkReminderSent(ctx context.Context, bookingID int64) error
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, reference, slot_id, listing_id, tenant_id, tenant_name, tenant_contact, status, reminder_sent, created_at`

func (r *PGBookingRepository) InsertActiveTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusActive
	return tx.QueryRow(ctx, `INSERT INTO bookings (reference, slot_id, listing_id, tenant_id, tenant_name, tenant_contact, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		booking.Reference, booking.SlotID, booking.ListingID, booking.TenantID, booking.TenantName, booking.TenantContact, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt)
}

func (r *PGBookingRepository) GetByReferenceTx(ctx context.Context, tx pgx.Tx, reference string) (*domain.Booking, error) {
	row := tx.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE reference=$1`, reference)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) CountActiveTx(ctx context.Context, tx pgx.Tx, slotID int64) (int, error) {
	var count int
	err := tx.QueryRow(ctx, `SELECT count(*) FROM bookings WHERE slot_id=$1 AND status=$2`, slotID, domain.BookingStatusActive).Scan(&count)
	return count, err
}

func (r *PGBookingRepository) ActiveExistsTx(ctx context.Context, tx pgx.Tx, slotID, tenantID int64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE slot_id=$1 AND tenant_id=$2 AND status=$3)`,
		slotID, tenantID, domain.BookingStatusActive).Scan(&exists)
	return exists, err
}

func (r *PGBookingRepository) ListActiveIntervalsTx(ctx context.Context, tx pgx.Tx, tenantID int64) ([]domain.SlotInterval, error) {
	rows, err := tx.Query(ctx, `SELECT b.slot_id, s.start_at, s.end_at
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.tenant_id=$1 AND b.status=$2`, tenantID, domain.BookingStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	intervals := make([]domain.SlotInterval, 0)
	for rows.Next() {
		var iv domain.SlotInterval
		if err := rows.Scan(&iv.SlotID, &iv.Start, &iv.End); err != nil {
			return nil, err
		}
		intervals = append(intervals, iv)
	}
	return intervals, rows.Err()
}

func (r *PGBookingRepository) CancelTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmd, err := tx.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2 AND status=$3`,
		domain.BookingStatusCancelled, id, domain.BookingStatusActive)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrAlreadyCancelled
	}
	return nil
}

// CancelAllForSlotTx is the first half of the slot delete cascade: every
// active booking of the slot flips to cancelled and the cancelled rows are
// returned so the caller can publish events after commit.
func (r *PGBookingRepository) CancelAllForSlotTx(ctx context.Context, tx pgx.Tx, slotID int64) ([]domain.Booking, error) {
	rows, err := tx.Query(ctx, `UPDATE bookings SET status=$1 WHERE slot_id=$2 AND status=$3
		RETURNING `+bookingColumns, domain.BookingStatusCancelled, slotID, domain.BookingStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

func (r *PGBookingRepository) ListActiveForSlot(ctx context.Context, slotID int64) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE slot_id=$1 AND status=$2 ORDER BY created_at`,
		slotID, domain.BookingStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBookings(rows)
}

// CountActivePerSlot reads only committed rows; a booking still inside an
// uncommitted transaction is never counted.
func (r *PGBookingRepository) CountActivePerSlot(ctx context.Context, listingID int64) (map[int64]int, error) {
	rows, err := r.db.Query(ctx, `SELECT slot_id, count(*) FROM bookings WHERE listing_id=$1 AND status=$2 GROUP BY slot_id`,
		listingID, domain.BookingStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var slotID int64
		var count int
		if err := rows.Scan(&slotID, &count); err != nil {
			return nil, err
		}
		counts[slotID] = count
	}
	return counts, rows.Err()
}

func (r *PGBookingRepository) DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]domain.ReminderItem, error) {
	rows, err := r.db.Query(ctx, `SELECT b.id, b.reference, b.listing_id, b.tenant_id, b.tenant_name, b.tenant_contact, s.start_at, s.end_at
		FROM bookings b
		JOIN slots s ON s.id = b.slot_id
		WHERE b.status=$1 AND b.reminder_sent=FALSE AND s.start_at >= $2 AND s.start_at < $3
		ORDER BY s.start_at`, domain.BookingStatusActive, now, now.Add(window))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ReminderItem, 0)
	for rows.Next() {
		var it domain.ReminderItem
		if err := rows.Scan(&it.BookingID, &it.Reference, &it.ListingID, &it.TenantID, &it.TenantName, &it.TenantContact, &it.SlotStart, &it.SlotEnd); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// MarkReminderSent is idempotent: marking an already-marked booking is a
// no-op, so a crash between dispatch and marking only causes a repeat
// notification, never an error loop.
func (r *PGBookingRepository) MarkReminderSent(ctx context.Context, bookingID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE bookings SET reminder_sent=TRUE WHERE id=$1 AND reminder_sent=FALSE`, bookingID)
	return err
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.Reference, &b.SlotID, &b.ListingID, &b.TenantID, &b.TenantName, &b.TenantContact, &b.Status, &b.ReminderSent, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]domain.Booking, error) {
	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.Reference, &b.SlotID, &b.ListingID, &b.TenantID, &b.TenantName, &b.TenantContact, &b.Status, &b.ReminderSent, &b.CreatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)

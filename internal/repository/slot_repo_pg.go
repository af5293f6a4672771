package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
)

type SlotRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Slot, error)
	ListByListing(ctx context.Context, listingID int64) ([]domain.Slot, error)
	ListOwnedTx(ctx context.Context, tx pgx.Tx, listingID, landlordID int64) ([]domain.Slot, error)
	DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type PGSlotRepository struct {
	db *pgxpool.Pool
}

func NewSlotRepository(db *pgxpool.Pool) SlotRepository {
	return &PGSlotRepository{db: db}
}

const slotColumns = `id, listing_id, landlord_id, start_at, end_at, capacity, created_at`

func (r *PGSlotRepository) CreateTx(ctx context.Context, tx pgx.Tx, slot *domain.Slot) error {
	return tx.QueryRow(ctx, `INSERT INTO slots (listing_id, landlord_id, start_at, end_at, capacity)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`, slot.ListingID, slot.LandlordID, slot.Start, slot.End, slot.Capacity).
		Scan(&slot.ID, &slot.CreatedAt)
}

func (r *PGSlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	row := r.db.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id=$1`, id)
	return scanSlot(row)
}

// GetByIDForUpdate locks the slot row for the rest of the transaction. This
// is the per-slot serialization point: capacity and duplicate checks that
// follow cannot race with another booking on the same slot.
func (r *PGSlotRepository) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.Slot, error) {
	row := tx.QueryRow(ctx, `SELECT `+slotColumns+` FROM slots WHERE id=$1 FOR UPDATE`, id)
	return scanSlot(row)
}

func (r *PGSlotRepository) ListByListing(ctx context.Context, listingID int64) ([]domain.Slot, error) {
	rows, err := r.db.Query(ctx, `SELECT `+slotColumns+` FROM slots WHERE listing_id=$1 ORDER BY start_at`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func (r *PGSlotRepository) ListOwnedTx(ctx context.Context, tx pgx.Tx, listingID, landlordID int64) ([]domain.Slot, error) {
	rows, err := tx.Query(ctx, `SELECT `+slotColumns+` FROM slots WHERE listing_id=$1 AND landlord_id=$2 ORDER BY start_at`, listingID, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanSlots(rows)
}

func (r *PGSlotRepository) DeleteTx(ctx context.Context, tx pgx.Tx, id int64) error {
	cmd, err := tx.Exec(ctx, `DELETE FROM slots WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func scanSlot(row pgx.Row) (*domain.Slot, error) {
	var s domain.Slot
	if err := row.Scan(&s.ID, &s.ListingID, &s.LandlordID, &s.Start, &s.End, &s.Capacity, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSlotNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanSlots(rows pgx.Rows) ([]domain.Slot, error) {
	slots := make([]domain.Slot, 0)
	for rows.Next() {
		var s domain.Slot
		if err := rows.Scan(&s.ID, &s.ListingID, &s.LandlordID, &s.Start, &s.End, &s.Capacity, &s.CreatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

var _ SlotRepository = (*PGSlotRepository)(nil)

package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mahirTaj/BashaLagbe-sub000/internal/domain"
)

// PGListingDirectory answers listing ownership from the marketplace
// catalog's listings table. The catalog service owns that table; the engine
// only ever reads the owner column.
type PGListingDirectory struct {
	db *pgxpool.Pool
}

func NewListingDirectory(db *pgxpool.Pool) *PGListingDirectory {
	return &PGListingDirectory{db: db}
}

func (d *PGListingDirectory) OwnerOf(ctx context.Context, listingID int64) (int64, error) {
	var ownerID int64
	err := d.db.QueryRow(ctx, `SELECT owner_id FROM listings WHERE id=$1`, listingID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrListingNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

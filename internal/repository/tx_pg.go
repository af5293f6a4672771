package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTxAttempts = 3

// TxManager is the unit of work boundary for the reservation engine. Every
// mutation of a (slot, bookings) aggregate runs through Serializable so the
// reads a decision is based on stay consistent with the write that follows.
type TxManager interface {
	Serializable(ctx context.Context, fn func(pgx.Tx) error) error
}

type PGTxManager struct {
	db          *pgxpool.Pool
	maxAttempts int
}

func NewTxManager(db *pgxpool.Pool) *PGTxManager {
	return &PGTxManager{db: db, maxAttempts: defaultTxAttempts}
}

// Serializable runs fn in a SERIALIZABLE transaction. Serialization
// failures and deadlocks abort the whole unit and it is retried from the
// top, up to maxAttempts; any other error rolls back and is returned as-is.
func (m *PGTxManager) Serializable(ctx context.Context, fn func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		err = m.runOnce(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func (m *PGTxManager) runOnce(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SQLSTATE 40001 is serialization_failure, 40P01 is deadlock_detected.
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}

var _ TxManager = (*PGTxManager)(nil)

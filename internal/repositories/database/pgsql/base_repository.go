package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultHoldTimeout bounds how long a unit waits for a row lock.
const DefaultHoldTimeout = 5 * time.Second

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool        *pgxpool.Pool
	HoldTimeout time.Duration
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, mapError(err, "failed to begin transaction")
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewInternalError("failed to rollback transaction", err)
	}
	return nil
}

// RunInUnit runs fn inside one database transaction. Row locks taken with
// SELECT ... FOR UPDATE wait at most HoldTimeout before the unit fails with ErrBusy.
func (r *BaseRepository) RunInUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	// Rollback after a successful commit is a no-op.
	defer func() { _ = r.Rollback(context.WithoutCancel(ctx), tx) }()

	timeout := r.HoldTimeout
	if timeout <= 0 {
		timeout = DefaultHoldTimeout
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", timeout.Milliseconds())); err != nil {
		return mapError(err, "failed to set lock timeout")
	}

	if err := fn(ctx, &pgUnit{tx: tx}); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

var _ portsrepo.TransactionManager = (*BaseRepository)(nil)

// pgUnit binds the stores to one pgx.Tx.
type pgUnit struct {
	tx pgx.Tx
}

func (u *pgUnit) Accounts() portsrepo.AccountStore         { return txAccountStore{q: u.tx} }
func (u *pgUnit) Transactions() portsrepo.TransactionStore { return txTransactionStore{q: u.tx} }
func (u *pgUnit) Instruments() portsrepo.InstrumentReader  { return instrumentReader{q: u.tx} }

/*
Package sqlite provides a SQLite-backed implementation of the ledger stores.

CONCURRENCY:

	Every unit opens with BEGIN IMMEDIATE (the _txlock=immediate DSN option), which
	takes the database-wide write lock up front. That lock is the hold: units
	serialize, so GetForUpdate is a plain SELECT inside the unit. A unit that cannot
	get the lock within the busy timeout fails with ErrBusy and nothing is applied.

	WAL mode lets plain reads run while a unit holds the write lock.

STORAGE:

	Amounts are fixed-point decimal TEXT at two places ("900.00") and arithmetic
	happens in Go. Timestamps are
	fixed-width UTC TEXT so ORDER BY on them is chronological.

USAGE:

	store, err := sqlite.Open("./ledger.db", 5*time.Second)
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

The schema comes from the embedded migrations (see internal/platform/database).
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
)

// DefaultHoldTimeout bounds how long a unit waits for the write lock.
const DefaultHoldTimeout = 5 * time.Second

const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database at path. The schema must already be migrated.
func Open(path string, holdTimeout time.Duration) (*Store, error) {
	if holdTimeout <= 0 {
		holdTimeout = DefaultHoldTimeout
	}
	dsn := fmt.Sprintf("%s?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=%d",
		path, holdTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Provider exposes the store through every repository port.
func (s *Store) Provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     s,
		TransactionRepo: s,
		InstrumentRepo:  s,
		TxManager:       s,
	}
}

var (
	_ portsrepo.AccountRepositoryFacade    = (*Store)(nil)
	_ portsrepo.TransactionReader          = (*Store)(nil)
	_ portsrepo.InstrumentRepositoryFacade = (*Store)(nil)
	_ portsrepo.TransactionManager         = (*Store)(nil)
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// mapError translates driver errors into the apperrors taxonomy.
func mapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)

	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewNotFoundError(msg)
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) {
		switch {
		case sqErr.Code == sqlite3.ErrBusy, sqErr.Code == sqlite3.ErrLocked:
			return apperrors.NewAppError(apperrors.ErrBusy, msg, err)
		case sqErr.ExtendedCode == sqlite3.ErrConstraintUnique, sqErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey:
			return apperrors.NewAppError(apperrors.ErrConflict, msg, err)
		case sqErr.ExtendedCode == sqlite3.ErrConstraintForeignKey:
			return apperrors.NewAppError(apperrors.ErrNotFound, msg, err)
		}
	}
	return apperrors.NewInternalError(msg, err)
}

func formatAmount(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (sql.NullTime, error) {
	if !ns.Valid {
		return sql.NullTime{}, nil
	}
	t, err := parseTime(ns.String)
	if err != nil {
		return sql.NullTime{}, err
	}
	return sql.NullTime{Time: t, Valid: true}, nil
}

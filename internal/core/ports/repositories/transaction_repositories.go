package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CardSpendSummer sums completed card payments of an instrument created in [from, to).
type CardSpendSummer interface {
	SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error)
}

// TransactionReader defines read operations over the transaction log.
type TransactionReader interface {
	CardSpendSummer

	// FindTransactionByID retrieves a transaction by its ID.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// QueryTransactions returns transactions where accountID is source or destination,
	// newest first (created_at DESC, transaction_id DESC).
	QueryTransactions(ctx context.Context, accountID string, filter domain.HistoryFilter, query domain.HistoryQuery) ([]domain.Transaction, error)
}

// TransactionStore is the unit-bound view of the transaction log.
type TransactionStore interface {
	CardSpendSummer

	// Insert appends a transaction. A duplicate reference number yields apperrors.ErrConflict.
	Insert(ctx context.Context, txn domain.Transaction) error

	// UpdateStatus changes the status and completion time of an existing transaction.
	UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, completedAt *time.Time) error

	// GetForUpdate reads a transaction and holds it until the unit ends.
	GetForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

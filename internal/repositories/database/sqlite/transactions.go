package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION LOG
// =============================================================================

const transactionColumns = `transaction_id, transaction_type, source_account_id, destination_account_id, instrument_id,
	amount, currency_code, status, description, merchant_name, reference_number, reversal_of_id, created_at, completed_at`

func scanTransaction(row interface{ Scan(dest ...any) error }) (domain.Transaction, error) {
	var (
		m           models.Transaction
		createdAt   string
		completedAt sql.NullString
	)
	err := row.Scan(
		&m.TransactionID,
		&m.TransactionType,
		&m.SourceAccountID,
		&m.DestinationAccountID,
		&m.InstrumentID,
		&m.Amount,
		&m.CurrencyCode,
		&m.Status,
		&m.Description,
		&m.MerchantName,
		&m.ReferenceNumber,
		&m.ReversalOfID,
		&createdAt,
		&completedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Transaction{}, err
	}
	if m.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func findTransaction(ctx context.Context, q querier, transactionID string) (*domain.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = ?`, transactionID))
	if err != nil {
		return nil, mapError(err, "transaction %s", transactionID)
	}
	return &txn, nil
}

// sumCardPayments adds the amounts in Go; SQLite SUM over TEXT would go through floating point.
func sumCardPayments(ctx context.Context, q querier, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT amount
		FROM transactions
		WHERE instrument_id = ?
		  AND transaction_type = 'card_payment'
		  AND status = 'completed'
		  AND created_at >= ? AND created_at < ?`,
		instrumentID, formatTime(from), formatTime(to),
	)
	if err != nil {
		return decimal.Zero, mapError(err, "failed to sum card payments for instrument %s", instrumentID)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, mapError(err, "failed to scan card payment amount")
		}
		total = total.Add(amount)
	}
	if err := rows.Err(); err != nil {
		return decimal.Zero, mapError(err, "error iterating card payments")
	}
	return total, nil
}

func (s *Store) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, s.db, transactionID)
}

func (s *Store) SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	return sumCardPayments(ctx, s.db, instrumentID, from, to)
}

// QueryTransactions lists transactions touching accountID, newest first.
// Amount bounds compare numerically via CAST; stored TEXT would compare lexically.
func (s *Store) QueryTransactions(ctx context.Context, accountID string, filter domain.HistoryFilter, query domain.HistoryQuery) ([]domain.Transaction, error) {
	args := []any{accountID, accountID}
	conds := []string{"(source_account_id = ? OR destination_account_id = ?)"}
	add := func(cond string, arg ...any) {
		conds = append(conds, cond)
		args = append(args, arg...)
	}

	if filter.From != nil {
		add("created_at >= ?", formatTime(*filter.From))
	}
	if filter.To != nil {
		add("created_at <= ?", formatTime(*filter.To))
	}
	if filter.Type != nil {
		add("transaction_type = ?", string(*filter.Type))
	}
	if filter.MinAmount != nil {
		add("CAST(amount AS REAL) >= CAST(? AS REAL)", filter.MinAmount.String())
	}
	if filter.MaxAmount != nil {
		add("CAST(amount AS REAL) <= CAST(? AS REAL)", filter.MaxAmount.String())
	}
	if query.After != nil {
		at := formatTime(query.After.CreatedAt)
		add("(created_at < ? OR (created_at = ? AND transaction_id < ?))", at, at, query.After.TransactionID)
	}

	stmt := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, transaction_id DESC LIMIT ? OFFSET ?`
	args = append(args, query.Limit, query.Offset)

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, mapError(err, "failed to query transactions for account %s", accountID)
	}
	defer rows.Close()

	result := make([]domain.Transaction, 0, query.Limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan transaction row")
		}
		result = append(result, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating transaction rows")
	}
	return result, nil
}

type txTransactionStore struct {
	q querier
}

var _ portsrepo.TransactionStore = txTransactionStore{}

func (s txTransactionStore) Insert(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.TransactionID,
		m.TransactionType,
		m.SourceAccountID,
		m.DestinationAccountID,
		m.InstrumentID,
		formatAmount(m.Amount),
		m.CurrencyCode,
		m.Status,
		m.Description,
		m.MerchantName,
		m.ReferenceNumber,
		m.ReversalOfID,
		formatTime(m.CreatedAt),
		formatNullTime(txn.CompletedAt),
	)
	return mapError(err, "failed to insert transaction %s (reference %s)", m.TransactionID, m.ReferenceNumber)
}

func (s txTransactionStore) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, completedAt *time.Time) error {
	var current string
	err := s.q.QueryRowContext(ctx, `SELECT status FROM transactions WHERE transaction_id = ?`, transactionID).Scan(&current)
	if err != nil {
		return mapError(err, "transaction %s", transactionID)
	}
	if !domain.TransactionStatus(current).CanTransitionTo(status) {
		return fmt.Errorf("%w: transaction %s %s -> %s", apperrors.ErrInvalidTransition, transactionID, current, status)
	}

	_, err = s.q.ExecContext(ctx,
		`UPDATE transactions SET status = ?, completed_at = ? WHERE transaction_id = ?`,
		string(status), formatNullTime(completedAt), transactionID,
	)
	return mapError(err, "failed to update status of transaction %s", transactionID)
}

func (s txTransactionStore) GetForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, s.q, transactionID)
}

func (s txTransactionStore) SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	return sumCardPayments(ctx, s.q, instrumentID, from, to)
}

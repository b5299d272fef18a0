package pgsql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const transactionColumns = `transaction_id, transaction_type, source_account_id, destination_account_id, instrument_id,
	amount, currency_code, status, description, merchant_name, reference_number, reversal_of_id, created_at, completed_at`

type PgxTransactionRepository struct {
	pool *pgxpool.Pool
}

func newPgxTransactionRepository(pool *pgxpool.Pool) *PgxTransactionRepository {
	return &PgxTransactionRepository{pool: pool}
}

var _ portsrepo.TransactionReader = (*PgxTransactionRepository)(nil)

func scanTransaction(row interface{ Scan(dest ...any) error }) (domain.Transaction, error) {
	var m models.Transaction
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
		&m.CreatedAt,
		&m.CompletedAt,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func findTransaction(ctx context.Context, q querier, transactionID string, forUpdate bool) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	txn, err := scanTransaction(q.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapError(err, "transaction %s", transactionID)
	}
	return &txn, nil
}

func sumCardPayments(ctx context.Context, q querier, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := q.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE instrument_id = $1
		  AND transaction_type = 'card_payment'
		  AND status = 'completed'
		  AND created_at >= $2 AND created_at < $3`,
		instrumentID, from, to,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, mapError(err, "failed to sum card payments for instrument %s", instrumentID)
	}
	return total, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, r.pool, transactionID, false)
}

func (r *PgxTransactionRepository) SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	return sumCardPayments(ctx, r.pool, instrumentID, from, to)
}

// QueryTransactions lists transactions touching accountID, newest first.
func (r *PgxTransactionRepository) QueryTransactions(ctx context.Context, accountID string, filter domain.HistoryFilter, query domain.HistoryQuery) ([]domain.Transaction, error) {
	args := []any{accountID}
	conds := []string{"(source_account_id = $1 OR destination_account_id = $1)"}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}
	if filter.Type != nil {
		add("transaction_type = $%d", string(*filter.Type))
	}
	if filter.MinAmount != nil {
		add("amount >= $%d", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("amount <= $%d", *filter.MaxAmount)
	}
	if query.After != nil {
		args = append(args, query.After.CreatedAt, query.After.TransactionID)
		conds = append(conds, fmt.Sprintf("(created_at, transaction_id) < ($%d, $%d)", len(args)-1, len(args)))
	}

	sql := `SELECT ` + transactionColumns + ` FROM transactions WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY created_at DESC, transaction_id DESC`
	args = append(args, query.Limit, query.Offset)
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
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

// txTransactionStore is the unit-bound transaction store.
type txTransactionStore struct {
	q querier
}

var _ portsrepo.TransactionStore = txTransactionStore{}

func (s txTransactionStore) Insert(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	_, err := s.q.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.TransactionID,
		m.TransactionType,
		m.SourceAccountID,
		m.DestinationAccountID,
		m.InstrumentID,
		m.Amount,
		m.CurrencyCode,
		m.Status,
		m.Description,
		m.MerchantName,
		m.ReferenceNumber,
		m.ReversalOfID,
		m.CreatedAt,
		m.CompletedAt,
	)
	return mapError(err, "failed to insert transaction %s (reference %s)", m.TransactionID, m.ReferenceNumber)
}

func (s txTransactionStore) UpdateStatus(ctx context.Context, transactionID string, status domain.TransactionStatus, completedAt *time.Time) error {
	var current string
	err := s.q.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE`, transactionID).Scan(&current)
	if err != nil {
		return mapError(err, "transaction %s", transactionID)
	}
	if !domain.TransactionStatus(current).CanTransitionTo(status) {
		return fmt.Errorf("%w: transaction %s %s -> %s", apperrors.ErrInvalidTransition, transactionID, current, status)
	}

	_, err = s.q.Exec(ctx,
		`UPDATE transactions SET status = $2, completed_at = $3 WHERE transaction_id = $1`,
		transactionID, string(status), completedAt,
	)
	return mapError(err, "failed to update status of transaction %s", transactionID)
}

func (s txTransactionStore) GetForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return findTransaction(ctx, s.q, transactionID, true)
}

func (s txTransactionStore) SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	return sumCardPayments(ctx, s.q, instrumentID, from, to)
}

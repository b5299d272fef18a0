package sqlite

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

// =============================================================================
// ACCOUNTS
// =============================================================================

const accountColumns = `account_id, account_number, holder_id, currency_code, balance, status, created_at, updated_at`

func scanAccount(row interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var (
		m                    models.Account
		createdAt, updatedAt string
	)
	if err := row.Scan(
		&m.AccountID,
		&m.AccountNumber,
		&m.HolderID,
		&m.CurrencyCode,
		&m.Balance,
		&m.Status,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func findAccount(ctx context.Context, q querier, column, value string) (*domain.Account, error) {
	acc, err := scanAccount(q.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE `+column+` = ?`, value))
	if err != nil {
		return nil, mapError(err, "account %s %s", column, value)
	}
	return acc, nil
}

// CreateAccount inserts a new account.
func (s *Store) CreateAccount(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, s.db, account)
}

func insertAccount(ctx context.Context, q querier, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	_, err := q.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.AccountID,
		m.AccountNumber,
		m.HolderID,
		m.CurrencyCode,
		formatAmount(m.Balance),
		m.Status,
		formatTime(m.CreatedAt),
		formatTime(m.UpdatedAt),
	)
	return mapError(err, "failed to save account %s", m.AccountID)
}

// FindAccountByID retrieves an account by its ID.
func (s *Store) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, s.db, "account_id", accountID)
}

// FindAccountByNumber retrieves an account by its number.
func (s *Store) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return findAccount(ctx, s.db, "account_number", accountNumber)
}

type txAccountStore struct {
	q querier
}

var _ portsrepo.AccountStore = txAccountStore{}

// Create inserts inside the unit; the write lock already covers the new row.
func (s txAccountStore) Create(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, s.q, account)
}

// GetForUpdate is a plain read: the unit already holds the database write lock.
func (s txAccountStore) GetForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, s.q, "account_id", accountID)
}

func (s txAccountStore) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return findAccount(ctx, s.q, "account_number", accountNumber)
}

func (s txAccountStore) Save(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	res, err := s.q.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, status = ?, updated_at = ? WHERE account_id = ?`,
		formatAmount(m.Balance), m.Status, formatTime(m.UpdatedAt), m.AccountID,
	)
	if err != nil {
		return mapError(err, "failed to update account %s", m.AccountID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err, "failed to update account %s", m.AccountID)
	}
	if n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s", m.AccountID))
	}
	return nil
}

package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `account_id, account_number, holder_id, currency_code, balance, status, created_at, updated_at`

type PgxAccountRepository struct {
	pool *pgxpool.Pool
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{pool: pool}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row interface{ Scan(dest ...any) error }) (*domain.Account, error) {
	var m models.Account
	if err := row.Scan(
		&m.AccountID,
		&m.AccountNumber,
		&m.HolderID,
		&m.CurrencyCode,
		&m.Balance,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

func findAccount(ctx context.Context, q querier, column, value string, forUpdate bool) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	acc, err := scanAccount(q.QueryRow(ctx, query, value))
	if err != nil {
		return nil, mapError(err, "account %s %s", column, value)
	}
	return acc, nil
}

// CreateAccount inserts a new account.
func (r *PgxAccountRepository) CreateAccount(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, r.pool, account)
}

func insertAccount(ctx context.Context, q querier, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := q.Exec(ctx, query,
		m.AccountID,
		m.AccountNumber,
		m.HolderID,
		m.CurrencyCode,
		m.Balance,
		m.Status,
		m.CreatedAt,
		m.UpdatedAt,
	)
	return mapError(err, "failed to save account %s", m.AccountID)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, r.pool, "account_id", accountID, false)
}

// FindAccountByNumber retrieves an account by its number.
func (r *PgxAccountRepository) FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return findAccount(ctx, r.pool, "account_number", accountNumber, false)
}

// txAccountStore is the unit-bound account store.
type txAccountStore struct {
	q querier
}

var _ portsrepo.AccountStore = txAccountStore{}

// Create inserts the account; the new row stays locked until the transaction ends.
func (s txAccountStore) Create(ctx context.Context, account domain.Account) error {
	return insertAccount(ctx, s.q, account)
}

// GetForUpdate selects the account row and locks it until the transaction ends.
func (s txAccountStore) GetForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return findAccount(ctx, s.q, "account_id", accountID, true)
}

func (s txAccountStore) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return findAccount(ctx, s.q, "account_number", accountNumber, false)
}

// Save writes the mutable columns of a locked account.
func (s txAccountStore) Save(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	tag, err := s.q.Exec(ctx,
		`UPDATE accounts SET balance = $2, status = $3, updated_at = $4 WHERE account_id = $1`,
		m.AccountID, m.Balance, m.Status, m.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "failed to update account %s", m.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s", m.AccountID))
	}
	return nil
}

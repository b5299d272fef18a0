package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// AccountReader defines read operations for account data. No holds are taken.
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its human-presentable number.
	FindAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// AccountWriter seeds accounts. Account CRUD belongs to an outer collaborator;
// the engine itself never creates accounts.
type AccountWriter interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, account domain.Account) error
}

// AccountStore is the unit-bound view of accounts.
type AccountStore interface {
	// Create inserts a new account and holds it until the unit ends. A taken id or
	// number yields apperrors.ErrConflict.
	Create(ctx context.Context, account domain.Account) error

	// GetForUpdate reads an account and holds it exclusively until the unit ends.
	GetForUpdate(ctx context.Context, accountID string) (*domain.Account, error)

	// GetByNumber reads an account by number inside the unit without holding it.
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)

	// Save writes the mutable fields (balance, status, updated_at) of a held account.
	Save(ctx context.Context, account domain.Account) error
}

// AccountRepositoryFacade combines the account reader and writer.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}

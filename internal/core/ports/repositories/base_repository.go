package repositories

import (
	"context"
)

// UnitOfWork exposes the stores bound to one atomic unit. Everything done
// through it commits together or not at all.
type UnitOfWork interface {
	Accounts() AccountStore
	Transactions() TransactionStore
	Instruments() InstrumentReader
}

// UnitFunc is the body of an atomic unit.
type UnitFunc func(ctx context.Context, uow UnitOfWork) error

// TransactionManager defines methods for transaction management
type TransactionManager interface {
	// RunInUnit opens a unit, runs fn and commits when fn returns nil.
	// Any error, including a panic inside fn, rolls the unit back and releases every hold.
	RunInUnit(ctx context.Context, fn UnitFunc) error
}

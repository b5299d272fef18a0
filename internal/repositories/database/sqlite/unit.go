package sqlite

import (
	"context"
	"database/sql"

	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// =============================================================================
// UNIT OF WORK (portsrepo.TransactionManager)
// =============================================================================

// RunInUnit runs fn inside one BEGIN IMMEDIATE transaction.
func (s *Store) RunInUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(ctx, &txUnit{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError(err, "failed to commit transaction")
	}
	return nil
}

type txUnit struct {
	tx *sql.Tx
}

func (u *txUnit) Accounts() portsrepo.AccountStore         { return txAccountStore{q: u.tx} }
func (u *txUnit) Transactions() portsrepo.TransactionStore { return txTransactionStore{q: u.tx} }
func (u *txUnit) Instruments() portsrepo.InstrumentReader  { return instrumentReader{q: u.tx} }

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type statusChange struct {
	status      domain.TransactionStatus
	completedAt *time.Time
}

// unit stages writes until commit. It is used by one goroutine at a time.
type unit struct {
	store    *Store
	held     []string
	heldSet  map[string]bool
	accounts map[string]domain.Account
	created  []domain.Account
	inserts  []domain.Transaction
	statuses map[string]statusChange
}

func (s *Store) RunInUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	u := &unit{
		store:    s,
		heldSet:  make(map[string]bool),
		accounts: make(map[string]domain.Account),
		statuses: make(map[string]statusChange),
	}
	defer u.releaseAll()

	if err := fn(ctx, u); err != nil {
		return err
	}
	return u.commit()
}

func (u *unit) Accounts() portsrepo.AccountStore         { return unitAccounts{u} }
func (u *unit) Transactions() portsrepo.TransactionStore { return unitTransactions{u} }
func (u *unit) Instruments() portsrepo.InstrumentReader  { return u.store }

func (u *unit) hold(ctx context.Context, key string) error {
	if u.heldSet[key] {
		return nil
	}
	if err := u.store.acquire(ctx, key); err != nil {
		return err
	}
	u.held = append(u.held, key)
	u.heldSet[key] = true
	return nil
}

func (u *unit) releaseAll() {
	for i := len(u.held) - 1; i >= 0; i-- {
		u.store.release(u.held[i])
	}
	u.held = nil
}

// commit applies staged writes atomically. Reference uniqueness is re-checked
// under the data lock because references are not covered by account holds.
func (u *unit) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range u.created {
		if err := s.checkNewAccount(acc); err != nil {
			return err
		}
	}
	for _, txn := range u.inserts {
		if owner, ok := s.references[txn.ReferenceNumber]; ok && owner != txn.TransactionID {
			return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("reference %s already used", txn.ReferenceNumber), nil)
		}
	}

	for _, acc := range u.created {
		s.byNumber[acc.AccountNumber] = acc.AccountID
	}
	for id, acc := range u.accounts {
		s.accounts[id] = acc
	}
	for _, txn := range u.inserts {
		s.transactions[txn.TransactionID] = txn
		s.references[txn.ReferenceNumber] = txn.TransactionID
	}
	for id, change := range u.statuses {
		txn := s.transactions[id]
		txn.Status = change.status
		txn.CompletedAt = change.completedAt
		s.transactions[id] = txn
	}
	return nil
}

// lookupTransaction sees this unit's own staged writes over committed state.
func (u *unit) lookupTransaction(id string) (domain.Transaction, bool) {
	var txn domain.Transaction
	found := false
	for _, staged := range u.inserts {
		if staged.TransactionID == id {
			txn, found = staged, true
		}
	}
	if !found {
		u.store.mu.RLock()
		txn, found = u.store.transactions[id]
		u.store.mu.RUnlock()
	}
	if !found {
		return domain.Transaction{}, false
	}
	if change, ok := u.statuses[id]; ok {
		txn.Status = change.status
		txn.CompletedAt = change.completedAt
	}
	return txn, true
}

type unitAccounts struct{ u *unit }

func (a unitAccounts) Create(ctx context.Context, account domain.Account) error {
	u := a.u
	for _, staged := range u.created {
		if staged.AccountID == account.AccountID || staged.AccountNumber == account.AccountNumber {
			return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("account %s already staged", account.AccountID), nil)
		}
	}
	u.store.mu.RLock()
	err := u.store.checkNewAccount(account)
	u.store.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := u.hold(ctx, accountKey(account.AccountID)); err != nil {
		return err
	}
	u.created = append(u.created, account)
	u.accounts[account.AccountID] = account
	return nil
}

func (a unitAccounts) GetForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	if acc, ok := a.u.accounts[accountID]; ok {
		return &acc, nil
	}
	// Check existence first so a missing id does not leave an idle lock channel held.
	if _, err := a.u.store.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	if err := a.u.hold(ctx, accountKey(accountID)); err != nil {
		return nil, err
	}
	// Re-read after the hold; the value before it may be stale.
	return a.u.store.FindAccountByID(ctx, accountID)
}

func (a unitAccounts) GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	for _, staged := range a.u.created {
		if staged.AccountNumber == accountNumber {
			acc := a.u.accounts[staged.AccountID]
			return &acc, nil
		}
	}
	acc, err := a.u.store.FindAccountByNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if staged, ok := a.u.accounts[acc.AccountID]; ok {
		return &staged, nil
	}
	return acc, nil
}

func (a unitAccounts) Save(_ context.Context, account domain.Account) error {
	if !a.u.heldSet[accountKey(account.AccountID)] {
		return apperrors.NewInternalError(fmt.Sprintf("account %s saved without a hold", account.AccountID), nil)
	}
	a.u.accounts[account.AccountID] = account
	return nil
}

type unitTransactions struct{ u *unit }

func (t unitTransactions) Insert(_ context.Context, txn domain.Transaction) error {
	u := t.u
	if _, exists := u.lookupTransaction(txn.TransactionID); exists {
		return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("transaction %s already exists", txn.TransactionID), nil)
	}
	for _, staged := range u.inserts {
		if staged.ReferenceNumber == txn.ReferenceNumber {
			return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("reference %s already used", txn.ReferenceNumber), nil)
		}
	}
	u.store.mu.RLock()
	_, taken := u.store.references[txn.ReferenceNumber]
	u.store.mu.RUnlock()
	if taken {
		return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("reference %s already used", txn.ReferenceNumber), nil)
	}
	u.inserts = append(u.inserts, txn)
	return nil
}

func (t unitTransactions) UpdateStatus(_ context.Context, transactionID string, status domain.TransactionStatus, completedAt *time.Time) error {
	current, ok := t.u.lookupTransaction(transactionID)
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", transactionID))
	}
	if !current.Status.CanTransitionTo(status) {
		return fmt.Errorf("%w: transaction %s %s -> %s", apperrors.ErrInvalidTransition, transactionID, current.Status, status)
	}
	t.u.statuses[transactionID] = statusChange{status: status, completedAt: completedAt}
	return nil
}

func (t unitTransactions) GetForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	if _, ok := t.u.lookupTransaction(transactionID); !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", transactionID))
	}
	if err := t.u.hold(ctx, txnKey(transactionID)); err != nil {
		return nil, err
	}
	txn, _ := t.u.lookupTransaction(transactionID)
	return &txn, nil
}

func (t unitTransactions) SumCardPayments(ctx context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	total, err := t.u.store.SumCardPayments(ctx, instrumentID, from, to)
	if err != nil {
		return decimal.Zero, err
	}
	for _, txn := range t.u.inserts {
		if isCardSpend(txn, instrumentID, from, to) {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

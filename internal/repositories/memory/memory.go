// Package memory provides an in-process implementation of the ledger stores.
// Holds are per-key channel locks; staged writes are applied at commit under
// a single data lock, so readers never observe a partial unit.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// DefaultHoldTimeout bounds how long a unit waits for a hold.
const DefaultHoldTimeout = 5 * time.Second

// Store keeps accounts, instruments and the transaction log in maps.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]domain.Account
	byNumber     map[string]string
	transactions map[string]domain.Transaction
	references   map[string]string
	instruments  map[string]domain.Instrument

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	holdTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithHoldTimeout sets how long GetForUpdate waits before failing with ErrBusy.
func WithHoldTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.holdTimeout = d
		}
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		accounts:     make(map[string]domain.Account),
		byNumber:     make(map[string]string),
		transactions: make(map[string]domain.Transaction),
		references:   make(map[string]string),
		instruments:  make(map[string]domain.Instrument),
		locks:        make(map[string]chan struct{}),
		holdTimeout:  DefaultHoldTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
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

func (s *Store) lockFor(key string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[key]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[key] = ch
	}
	return ch
}

// acquire takes the exclusive hold on key, waiting at most holdTimeout.
func (s *Store) acquire(ctx context.Context, key string) error {
	ch := s.lockFor(key)
	timer := time.NewTimer(s.holdTimeout)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return apperrors.NewAppError(apperrors.ErrBusy, fmt.Sprintf("waited %s for %s", s.holdTimeout, key), nil)
	case <-ctx.Done():
		return apperrors.NewAppError(apperrors.ErrBusy, fmt.Sprintf("gave up waiting for %s", key), ctx.Err())
	}
}

func (s *Store) release(key string) {
	<-s.lockFor(key)
}

func accountKey(id string) string { return "account:" + id }
func txnKey(id string) string     { return "transaction:" + id }

// --- plain reads and seeding ---

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s", accountID))
	}
	return &acc, nil
}

func (s *Store) FindAccountByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byNumber[accountNumber]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account number %s", accountNumber))
	}
	acc := s.accounts[id]
	return &acc, nil
}

// checkNewAccount must be called with mu held.
func (s *Store) checkNewAccount(account domain.Account) error {
	if _, ok := s.accounts[account.AccountID]; ok {
		return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("account %s already exists", account.AccountID), nil)
	}
	if _, ok := s.byNumber[account.AccountNumber]; ok {
		return apperrors.NewAppError(apperrors.ErrConflict, fmt.Sprintf("account number %s already exists", account.AccountNumber), nil)
	}
	return nil
}

func (s *Store) CreateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkNewAccount(account); err != nil {
		return err
	}
	s.accounts[account.AccountID] = account
	s.byNumber[account.AccountNumber] = account.AccountID
	return nil
}

func (s *Store) FindInstrumentByID(_ context.Context, instrumentID string) (*domain.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inst, ok := s.instruments[instrumentID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("instrument %s", instrumentID))
	}
	return &inst, nil
}

func (s *Store) SaveInstrument(_ context.Context, instrument domain.Instrument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[instrument.AccountID]; !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("account %s", instrument.AccountID))
	}
	s.instruments[instrument.InstrumentID] = instrument
	return nil
}

func (s *Store) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("transaction %s", transactionID))
	}
	return &txn, nil
}

// compareNewestFirst orders by created_at DESC, then transaction_id DESC.
func compareNewestFirst(a, b domain.Transaction) int {
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.TransactionID, a.TransactionID)
}

// afterCursor reports whether txn sorts strictly after the cursor position.
func afterCursor(txn domain.Transaction, c *domain.HistoryCursor) bool {
	if c == nil {
		return true
	}
	if txn.CreatedAt.Equal(c.CreatedAt) {
		return txn.TransactionID < c.TransactionID
	}
	return txn.CreatedAt.Before(c.CreatedAt)
}

func (s *Store) QueryTransactions(_ context.Context, accountID string, filter domain.HistoryFilter, query domain.HistoryQuery) ([]domain.Transaction, error) {
	s.mu.RLock()
	matched := make([]domain.Transaction, 0)
	for _, txn := range s.transactions {
		if txn.Involves(accountID) && filter.Matches(txn) && afterCursor(txn, query.After) {
			matched = append(matched, txn)
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, compareNewestFirst)

	if query.Offset >= len(matched) {
		return []domain.Transaction{}, nil
	}
	matched = matched[query.Offset:]
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

func isCardSpend(txn domain.Transaction, instrumentID string, from, to time.Time) bool {
	return txn.Type == domain.TransactionCardPayment &&
		txn.Status == domain.TransactionCompleted &&
		txn.InstrumentID != nil && *txn.InstrumentID == instrumentID &&
		!txn.CreatedAt.Before(from) && txn.CreatedAt.Before(to)
}

func (s *Store) SumCardPayments(_ context.Context, instrumentID string, from, to time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, txn := range s.transactions {
		if isCardSpend(txn, instrumentID, from, to) {
			total = total.Add(txn.Amount)
		}
	}
	return total, nil
}

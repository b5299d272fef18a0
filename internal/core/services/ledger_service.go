package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// DefaultMaxReferenceAttempts bounds how often a unit is replayed after a reference collision.
const DefaultMaxReferenceAttempts = 3

var validate = validator.New(validator.WithRequiredStructEnabled())

// ledgerService implements the LedgerEngine interface.
type ledgerService struct {
	BaseService
	accountRepo    portsrepo.AccountReader
	txnRepo        portsrepo.TransactionReader
	instrumentRepo portsrepo.InstrumentReader
	txManager      portsrepo.TransactionManager

	refs                 ReferenceGenerator
	now                  func() time.Time
	maxReferenceAttempts int
	historyMaxLimit      int
}

// ServiceOption is a functional option for configuring the ledger service
type ServiceOption func(*ledgerService)

// WithReferenceGenerator replaces the default reference generator.
func WithReferenceGenerator(gen ReferenceGenerator) ServiceOption {
	return func(s *ledgerService) {
		s.refs = gen
	}
}

// WithClock replaces time.Now, mainly for tests pinned to a calendar day.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// WithMaxReferenceAttempts sets how many times a unit runs before a collision becomes ErrConflict.
func WithMaxReferenceAttempts(n int) ServiceOption {
	return func(s *ledgerService) {
		if n > 0 {
			s.maxReferenceAttempts = n
		}
	}
}

// WithHistoryMaxLimit caps the page size accepted by History.
func WithHistoryMaxLimit(n int) ServiceOption {
	return func(s *ledgerService) {
		if n > 0 {
			s.historyMaxLimit = n
		}
	}
}

// NewLedgerService creates a new ledger engine over the given repositories.
func NewLedgerService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.LedgerEngine {
	return newLedgerService(repos, options...)
}

func newLedgerService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *ledgerService {
	svc := &ledgerService{
		accountRepo:          repos.AccountRepo,
		txnRepo:              repos.TransactionRepo,
		instrumentRepo:       repos.InstrumentRepo,
		txManager:            repos.TxManager,
		refs:                 NewReferenceGenerator(),
		now:                  time.Now,
		maxReferenceAttempts: DefaultMaxReferenceAttempts,
		historyMaxLimit:      domain.MaxHistoryLimit,
	}

	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure ledgerService implements the LedgerEngine interface
var _ portssvc.LedgerEngine = (*ledgerService)(nil)

// timestamp returns the current time in UTC at the precision every store keeps.
func (s *ledgerService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// runUnit runs fn in one atomic unit, replaying it with a fresh reference when the
// store reports a reference collision.
func (s *ledgerService) runUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	var err error
	for attempt := 1; attempt <= s.maxReferenceAttempts; attempt++ {
		err = s.txManager.RunInUnit(ctx, fn)
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		s.LogDebug(ctx, "Reference collision, replaying unit", slog.Int("attempt", attempt))
	}
	return fmt.Errorf("giving up after %d attempts: %w", s.maxReferenceAttempts, err)
}

// logOutcome logs a failed operation at a level matching its error kind.
func (s *ledgerService) logOutcome(ctx context.Context, err error, msg string, keyvals ...any) {
	switch {
	case apperrors.IsClientError(err), apperrors.IsNotFound(err), apperrors.IsRetryable(err):
		s.LogRejection(ctx, err, msg, keyvals...)
	default:
		s.LogError(ctx, err, msg, keyvals...)
	}
}

// lockAccounts holds every distinct account in ascending id order.
func lockAccounts(ctx context.Context, store portsrepo.AccountStore, accountIDs ...string) (map[string]*domain.Account, error) {
	ids := slices.Clone(accountIDs)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	held := make(map[string]*domain.Account, len(ids))
	for _, id := range ids {
		acc, err := store.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		held[id] = acc
	}
	return held, nil
}

func validateRequest(req any) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return apperrors.NewAppError(apperrors.ErrValidation, strings.Join(fields, "; "), nil)
		}
		return apperrors.NewAppError(apperrors.ErrValidation, "invalid request", err)
	}
	return nil
}

// checkAmount requires a positive amount with at most two decimal places.
func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", apperrors.ErrInvalidAmount, amount.String())
	}
	if !amount.Equal(amount.Round(domain.MoneyScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", apperrors.ErrInvalidAmount, amount.String(), domain.MoneyScale)
	}
	return nil
}

func requireDebitable(acc *domain.Account) error {
	if !acc.Status.PermitsDebit() {
		return &apperrors.NotActiveError{Kind: "account", ID: acc.AccountID, Status: string(acc.Status)}
	}
	return nil
}

func requireCreditable(acc *domain.Account) error {
	if !acc.Status.PermitsCredit() {
		return &apperrors.NotActiveError{Kind: "account", ID: acc.AccountID, Status: string(acc.Status)}
	}
	return nil
}

func requireCurrency(acc *domain.Account, currencyCode string) error {
	if acc.CurrencyCode != currencyCode {
		return &apperrors.CurrencyMismatchError{Expected: acc.CurrencyCode, Actual: currencyCode}
	}
	return nil
}

// debit removes amount from a held account, refusing to go below zero.
func debit(acc *domain.Account, amount decimal.Decimal, now time.Time) error {
	if acc.Balance.LessThan(amount) {
		return &apperrors.InsufficientFundsError{AccountID: acc.AccountID, Available: acc.Balance, Requested: amount}
	}
	if err := acc.Debit(amount); err != nil {
		return apperrors.NewInternalError("debit", err)
	}
	acc.UpdatedAt = now
	return nil
}

func credit(acc *domain.Account, amount decimal.Decimal, now time.Time) {
	acc.Credit(amount)
	acc.UpdatedAt = now
}

// newCompleted builds a completed transaction stamped at now.
func (s *ledgerService) newCompleted(txType domain.TransactionType, amount decimal.Decimal, currencyCode string, now time.Time) domain.Transaction {
	completedAt := now
	return domain.Transaction{
		TransactionID:   newID(),
		Type:            txType,
		Amount:          amount,
		CurrencyCode:    currencyCode,
		Status:          domain.TransactionCompleted,
		ReferenceNumber: s.refs.Next(txType, now),
		CreatedAt:       now,
		CompletedAt:     &completedAt,
	}
}

// insert validates txn and appends it through the unit.
func insert(ctx context.Context, uow portsrepo.UnitOfWork, txn domain.Transaction) error {
	if err := txn.Validate(); err != nil {
		return apperrors.NewInternalError("malformed transaction", err)
	}
	return uow.Transactions().Insert(ctx, txn)
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// maxAccountNumberAttempts bounds retries when a generated account number is taken.
const maxAccountNumberAttempts = 5

// accountService seeds accounts and instruments on behalf of the CRUD layer.
type accountService struct {
	BaseService
	accountRepo    portsrepo.AccountRepositoryFacade
	instrumentRepo portsrepo.InstrumentRepositoryFacade
	engine         *ledgerService
}

// NewAccountService creates the provisioning service. Opening deposits are recorded
// by the same engine rules as any other deposit.
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) portssvc.ProvisioningSvc {
	return newAccountService(repos, newLedgerService(repos, options...))
}

func newAccountService(repos portsrepo.RepositoryProvider, engine *ledgerService) *accountService {
	return &accountService{
		accountRepo:    repos.AccountRepo,
		instrumentRepo: repos.InstrumentRepo,
		engine:         engine,
	}
}

// Ensure accountService implements the ProvisioningSvc interface
var _ portssvc.ProvisioningSvc = (*accountService)(nil)

// OpenAccount creates the account and books its initial deposit in one unit, so a
// failed deposit leaves no account behind.
func (s *accountService) OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	var deposit *decimal.Decimal
	if req.InitialDeposit != nil && !req.InitialDeposit.IsZero() {
		if err := checkAmount(*req.InitialDeposit); err != nil {
			return nil, err
		}
		deposit = req.InitialDeposit
	}
	currency := normalizeCurrency(req.CurrencyCode)

	var (
		acc         domain.Account
		numberTaken bool
	)
	open := func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		now := s.engine.timestamp()
		acc = domain.Account{
			AccountID:     newID(),
			AccountNumber: req.AccountNumber,
			HolderID:      req.HolderID,
			CurrencyCode:  currency,
			Balance:       decimal.Zero,
			Status:        domain.AccountActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if acc.AccountNumber == "" {
			acc.AccountNumber = NewAccountNumber()
		}
		if err := uow.Accounts().Create(ctx, acc); err != nil {
			numberTaken = req.AccountNumber != "" && errors.Is(err, apperrors.ErrConflict)
			return err
		}
		if deposit == nil {
			return nil
		}

		txn := s.engine.newCompleted(domain.TransactionDeposit, *deposit, currency, now)
		txn.DestinationAccountID = &acc.AccountID
		txn.Description = "Initial deposit"
		credit(&acc, *deposit, now)
		if err := uow.Accounts().Save(ctx, acc); err != nil {
			return err
		}
		return insert(ctx, uow, txn)
	}

	// Generated numbers and deposit references are redrawn on every run; a
	// caller-chosen number that is taken stays taken.
	var err error
	for attempt := 1; attempt <= maxAccountNumberAttempts; attempt++ {
		err = s.engine.txManager.RunInUnit(ctx, open)
		if !errors.Is(err, apperrors.ErrConflict) || numberTaken {
			break
		}
		s.LogDebug(ctx, "Account number or reference collision, replaying unit", slog.Int("attempt", attempt))
	}
	if err != nil {
		s.engine.logOutcome(ctx, err, "Failed to open account", slog.String("holder_id", req.HolderID))
		return nil, err
	}

	s.LogInfo(ctx, "Account opened",
		slog.String("account_id", acc.AccountID),
		slog.String("account_number", acc.AccountNumber),
		slog.String("initial_balance", acc.Balance.String()))
	return &acc, nil
}

// RegisterInstrument creates an instrument or updates an existing one. Updates keep
// unspecified fields and may not move the card against its status table, whether
// through the status itself or by reviving an expired card with a later expiry.
func (s *accountService) RegisterInstrument(ctx context.Context, req dto.RegisterInstrumentRequest) (*domain.Instrument, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	var existing *domain.Instrument
	if req.InstrumentID != "" {
		found, err := s.instrumentRepo.FindInstrumentByID(ctx, req.InstrumentID)
		switch {
		case err == nil:
			existing = found
		case !apperrors.IsNotFound(err):
			return nil, err
		}
	}

	var inst domain.Instrument
	if existing != nil {
		inst = *existing
		inst.AccountID = req.AccountID
	} else {
		inst = domain.Instrument{
			InstrumentID: req.InstrumentID,
			AccountID:    req.AccountID,
			Status:       domain.InstrumentInactive,
			DailyLimit:   domain.DefaultDailyLimit,
		}
		if inst.InstrumentID == "" {
			inst.InstrumentID = newID()
		}
	}

	if req.Status != "" {
		status, err := domain.ParseInstrumentStatus(req.Status)
		if err != nil {
			return nil, apperrors.NewAppError(apperrors.ErrValidation, "unknown instrument status", err)
		}
		inst.Status = status
	}
	if req.DailyLimit != nil {
		if err := checkDailyLimit(*req.DailyLimit); err != nil {
			return nil, err
		}
		inst.DailyLimit = *req.DailyLimit
	}
	if req.ExpiresAt != nil {
		expiresAt := req.ExpiresAt.UTC()
		inst.ExpiresAt = &expiresAt
	}

	if existing != nil {
		now := s.engine.timestamp()
		if err := checkInstrumentTransition(*existing, inst.EffectiveStatus(now), now); err != nil {
			s.LogRejection(ctx, err, "Instrument update rejected", slog.String("instrument_id", inst.InstrumentID))
			return nil, err
		}
	}
	return s.saveInstrument(ctx, inst, "Instrument registered")
}

// ChangeInstrumentStatus moves a card along its status table.
func (s *accountService) ChangeInstrumentStatus(ctx context.Context, instrumentID string, status domain.InstrumentStatus) (*domain.Instrument, error) {
	if _, err := domain.ParseInstrumentStatus(string(status)); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "unknown instrument status", err)
	}
	current, err := s.instrumentRepo.FindInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}

	if err := checkInstrumentTransition(*current, status, s.engine.timestamp()); err != nil {
		s.LogRejection(ctx, err, "Instrument status change rejected", slog.String("instrument_id", instrumentID))
		return nil, err
	}
	current.Status = status
	return s.saveInstrument(ctx, *current, "Instrument status changed")
}

// UpdateDailyLimit replaces a card's daily spend limit. Payments already made today
// count against the new limit.
func (s *accountService) UpdateDailyLimit(ctx context.Context, instrumentID string, limit decimal.Decimal) (*domain.Instrument, error) {
	if err := checkDailyLimit(limit); err != nil {
		return nil, err
	}
	inst, err := s.instrumentRepo.FindInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	inst.DailyLimit = limit
	return s.saveInstrument(ctx, *inst, "Instrument daily limit updated")
}

func (s *accountService) saveInstrument(ctx context.Context, inst domain.Instrument, msg string) (*domain.Instrument, error) {
	if err := s.instrumentRepo.SaveInstrument(ctx, inst); err != nil {
		s.LogError(ctx, err, "Failed to save instrument", slog.String("instrument_id", inst.InstrumentID))
		return nil, err
	}

	s.LogInfo(ctx, msg,
		slog.String("instrument_id", inst.InstrumentID),
		slog.String("account_id", inst.AccountID),
		slog.String("status", string(inst.Status)),
		slog.String("daily_limit", inst.DailyLimit.String()))
	return &inst, nil
}

func checkDailyLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return apperrors.NewAppError(apperrors.ErrValidation, "daily limit must not be negative", nil)
	}
	if !limit.Equal(limit.Round(domain.MoneyScale)) {
		return apperrors.NewAppError(apperrors.ErrValidation,
			fmt.Sprintf("daily limit %s has more than %d decimal places", limit.String(), domain.MoneyScale), nil)
	}
	return nil
}

// checkInstrumentTransition starts from the effective status, so a card past its
// expiry counts as expired.
func checkInstrumentTransition(current domain.Instrument, to domain.InstrumentStatus, now time.Time) error {
	from := current.EffectiveStatus(now)
	if from == to || from.CanTransitionTo(to) {
		return nil
	}
	return fmt.Errorf("%w: instrument %s %s -> %s", apperrors.ErrInvalidTransition, current.InstrumentID, from, to)
}

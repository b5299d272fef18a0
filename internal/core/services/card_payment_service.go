package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// Authorize reports whether a payment of amount would pass the spend-limit guard
// right now. It takes no hold, so a later PayWithCard may still be declined.
func (s *ledgerService) Authorize(ctx context.Context, instrumentID string, amount decimal.Decimal, limit decimal.Decimal) (*domain.Authorization, error) {
	if limit.IsNegative() {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "limit must not be negative", nil)
	}

	inst, err := s.instrumentRepo.FindInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	from, to := domain.SpendWindow(now)
	spent, err := s.txnRepo.SumCardPayments(ctx, instrumentID, from, to)
	if err != nil {
		return nil, err
	}

	auth := &domain.Authorization{
		Approved:   true,
		SpentToday: spent,
		Limit:      limit,
		Remaining:  domain.Remaining(limit, spent),
	}
	switch {
	case !inst.CanSpend(now):
		auth.Approved, auth.Reason = false, domain.DeclineInstrumentNotActive
	case checkAmount(amount) != nil:
		auth.Approved, auth.Reason = false, domain.DeclineInvalidAmount
	case spent.Add(amount).GreaterThan(limit):
		auth.Approved, auth.Reason = false, domain.DeclineLimitExceeded
	}

	s.LogDebug(ctx, "Card authorization evaluated",
		slog.String("instrument_id", instrumentID),
		slog.Bool("approved", auth.Approved),
		slog.String("reason", auth.Reason))
	return auth, nil
}

// PayWithCard debits the instrument's bound account. The spend window is recomputed
// under the account hold, so concurrent payments on one card cannot both pass the limit.
func (s *ledgerService) PayWithCard(ctx context.Context, req dto.CardPaymentRequest) (*domain.Transaction, error) {
	logAttrs := []any{
		slog.String("instrument_id", req.InstrumentID),
		slog.String("amount", req.Amount.String()),
		slog.String("merchant_name", req.MerchantName),
	}

	if err := validateRequest(req); err != nil {
		s.logOutcome(ctx, err, "Card payment rejected", logAttrs...)
		return nil, err
	}
	if err := checkAmount(req.Amount); err != nil {
		s.logOutcome(ctx, err, "Card payment rejected", logAttrs...)
		return nil, err
	}
	currency := normalizeCurrency(req.CurrencyCode)

	bound, err := s.instrumentRepo.FindInstrumentByID(ctx, req.InstrumentID)
	if err != nil {
		s.logOutcome(ctx, err, "Card payment rejected", logAttrs...)
		return nil, err
	}
	accountID := bound.AccountID

	var result *domain.Transaction
	err = s.runUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		held, err := lockAccounts(ctx, uow.Accounts(), accountID)
		if err != nil {
			return err
		}
		acc := held[accountID]

		inst, err := uow.Instruments().FindInstrumentByID(ctx, req.InstrumentID)
		if err != nil {
			return err
		}
		// The binding was read before the hold; a card moved since then needs a fresh read.
		if inst.AccountID != accountID {
			return apperrors.NewAppError(apperrors.ErrBusy,
				fmt.Sprintf("instrument %s moved to account %s while waiting for the hold", inst.InstrumentID, inst.AccountID), nil)
		}

		now := s.timestamp()
		if !inst.CanSpend(now) {
			return &apperrors.NotActiveError{Kind: "instrument", ID: inst.InstrumentID, Status: string(inst.EffectiveStatus(now))}
		}

		from, to := domain.SpendWindow(now)
		spent, err := uow.Transactions().SumCardPayments(ctx, inst.InstrumentID, from, to)
		if err != nil {
			return err
		}
		if spent.Add(req.Amount).GreaterThan(inst.DailyLimit) {
			return &apperrors.LimitExceededError{
				InstrumentID: inst.InstrumentID,
				Limit:        inst.DailyLimit,
				SpentToday:   spent,
				Requested:    req.Amount,
			}
		}

		if err := requireDebitable(acc); err != nil {
			return err
		}
		if currency != "" {
			if err := requireCurrency(acc, currency); err != nil {
				return err
			}
		}
		if err := debit(acc, req.Amount, now); err != nil {
			return err
		}
		if err := uow.Accounts().Save(ctx, *acc); err != nil {
			return err
		}

		txn := s.newCompleted(domain.TransactionCardPayment, req.Amount, acc.CurrencyCode, now)
		txn.SourceAccountID = &acc.AccountID
		txn.InstrumentID = &inst.InstrumentID
		txn.MerchantName = req.MerchantName
		txn.Description = req.Description
		if txn.Description == "" && req.MerchantName != "" {
			txn.Description = fmt.Sprintf("Card payment at %s", req.MerchantName)
		}
		if err := insert(ctx, uow, txn); err != nil {
			return err
		}
		result = &txn
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, err, "Card payment failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Card payment completed",
		slog.String("transaction_id", result.TransactionID),
		slog.String("instrument_id", req.InstrumentID),
		slog.String("amount", result.Amount.String()))
	return result, nil
}

// DailySpending reports how much of the instrument's limit is used in the current UTC day.
func (s *ledgerService) DailySpending(ctx context.Context, instrumentID string) (*domain.DailySpend, error) {
	inst, err := s.instrumentRepo.FindInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}

	from, to := domain.SpendWindow(s.timestamp())
	spent, err := s.txnRepo.SumCardPayments(ctx, instrumentID, from, to)
	if err != nil {
		return nil, err
	}

	return &domain.DailySpend{
		Date:      from.Format("2006-01-02"),
		Limit:     inst.DailyLimit,
		Spent:     spent,
		Remaining: domain.Remaining(inst.DailyLimit, spent),
	}, nil
}

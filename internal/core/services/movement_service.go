package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/dto"
)

// Deposit credits an account from outside the ledger.
func (s *ledgerService) Deposit(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error) {
	return s.applyMovement(ctx, domain.TransactionDeposit, req)
}

// Withdraw debits an account to outside the ledger.
func (s *ledgerService) Withdraw(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error) {
	return s.applyMovement(ctx, domain.TransactionWithdrawal, req)
}

// ChargeFee debits a fee from an account.
func (s *ledgerService) ChargeFee(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error) {
	return s.applyMovement(ctx, domain.TransactionFee, req)
}

func (s *ledgerService) applyMovement(ctx context.Context, txType domain.TransactionType, req dto.MovementRequest) (*domain.Transaction, error) {
	logAttrs := []any{
		slog.String("type", string(txType)),
		slog.String("account_id", req.AccountID),
		slog.String("amount", req.Amount.String()),
	}

	if err := validateRequest(req); err != nil {
		s.logOutcome(ctx, err, "Movement rejected", logAttrs...)
		return nil, err
	}
	if err := checkAmount(req.Amount); err != nil {
		s.logOutcome(ctx, err, "Movement rejected", logAttrs...)
		return nil, err
	}
	currency := normalizeCurrency(req.CurrencyCode)

	var result *domain.Transaction
	err := s.runUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		held, err := lockAccounts(ctx, uow.Accounts(), req.AccountID)
		if err != nil {
			return err
		}
		acc := held[req.AccountID]

		if err := requireCurrency(acc, currency); err != nil {
			return err
		}

		now := s.timestamp()
		txn := s.newCompleted(txType, req.Amount, currency, now)
		switch txType {
		case domain.TransactionDeposit:
			if err := requireCreditable(acc); err != nil {
				return err
			}
			credit(acc, req.Amount, now)
			txn.DestinationAccountID = &acc.AccountID
		case domain.TransactionWithdrawal, domain.TransactionFee:
			if err := requireDebitable(acc); err != nil {
				return err
			}
			if err := debit(acc, req.Amount, now); err != nil {
				return err
			}
			txn.SourceAccountID = &acc.AccountID
		default:
			return apperrors.NewInternalError(fmt.Sprintf("unsupported movement %s", txType), nil)
		}

		if err := uow.Accounts().Save(ctx, *acc); err != nil {
			return err
		}

		txn.Description = req.Description
		if txn.Description == "" {
			txn.Description = fmt.Sprintf("%s - %s", txType, txn.ReferenceNumber)
		}
		if err := insert(ctx, uow, txn); err != nil {
			return err
		}
		result = &txn
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, err, "Movement failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Movement completed",
		slog.String("type", string(txType)),
		slog.String("transaction_id", result.TransactionID),
		slog.String("amount", result.Amount.String()))
	return result, nil
}

// ChangeAccountStatus moves an account along its status table under a hold.
func (s *ledgerService) ChangeAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error) {
	if _, err := domain.ParseAccountStatus(string(status)); err != nil {
		return nil, apperrors.NewAppError(apperrors.ErrValidation, "unknown account status", err)
	}

	var result *domain.Account
	err := s.txManager.RunInUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		held, err := lockAccounts(ctx, uow.Accounts(), accountID)
		if err != nil {
			return err
		}
		acc := held[accountID]

		if !acc.Status.CanTransitionTo(status) {
			return fmt.Errorf("%w: account %s %s -> %s", apperrors.ErrInvalidTransition, accountID, acc.Status, status)
		}
		acc.Status = status
		acc.UpdatedAt = s.timestamp()
		if err := uow.Accounts().Save(ctx, *acc); err != nil {
			return err
		}
		result = acc
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, err, "Account status change failed",
			slog.String("account_id", accountID),
			slog.String("status", string(status)))
		return nil, err
	}

	s.LogInfo(ctx, "Account status changed",
		slog.String("account_id", accountID),
		slog.String("status", string(status)))
	return result, nil
}

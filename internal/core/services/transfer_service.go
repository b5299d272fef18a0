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

// Transfer moves funds from the source account to the account with the given number.
// Both balance changes and the transaction record commit together.
func (s *ledgerService) Transfer(ctx context.Context, req dto.TransferRequest) (*domain.Transaction, error) {
	logAttrs := []any{
		slog.String("source_account_id", req.SourceAccountID),
		slog.String("destination_account_number", req.DestinationAccountNumber),
		slog.String("amount", req.Amount.String()),
	}

	if err := validateRequest(req); err != nil {
		s.logOutcome(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}
	if err := checkAmount(req.Amount); err != nil {
		s.logOutcome(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}
	currency := normalizeCurrency(req.CurrencyCode)

	// Plain read; the hold below re-reads the row.
	dest, err := s.accountRepo.FindAccountByNumber(ctx, req.DestinationAccountNumber)
	if err != nil {
		err = fmt.Errorf("destination account %s: %w", req.DestinationAccountNumber, err)
		s.logOutcome(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}
	if dest.AccountID == req.SourceAccountID {
		err := apperrors.NewAppError(apperrors.ErrValidation, "source and destination must differ", nil)
		s.logOutcome(ctx, err, "Transfer rejected", logAttrs...)
		return nil, err
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Transfer to %s", dest.AccountNumber)
	}

	var result *domain.Transaction
	err = s.runUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		held, err := lockAccounts(ctx, uow.Accounts(), req.SourceAccountID, dest.AccountID)
		if err != nil {
			return err
		}
		src, dst := held[req.SourceAccountID], held[dest.AccountID]

		if err := requireDebitable(src); err != nil {
			return err
		}
		if err := requireCreditable(dst); err != nil {
			return err
		}
		if err := requireCurrency(src, currency); err != nil {
			return err
		}
		if err := requireCurrency(dst, currency); err != nil {
			return err
		}

		now := s.timestamp()
		if err := debit(src, req.Amount, now); err != nil {
			return err
		}
		credit(dst, req.Amount, now)
		if err := uow.Accounts().Save(ctx, *src); err != nil {
			return err
		}
		if err := uow.Accounts().Save(ctx, *dst); err != nil {
			return err
		}

		txn := s.newCompleted(domain.TransactionTransfer, req.Amount, currency, now)
		txn.SourceAccountID = &src.AccountID
		txn.DestinationAccountID = &dst.AccountID
		txn.Description = description
		if err := insert(ctx, uow, txn); err != nil {
			return err
		}
		result = &txn
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, err, "Transfer failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Transfer completed",
		slog.String("transaction_id", result.TransactionID),
		slog.String("reference_number", result.ReferenceNumber),
		slog.String("amount", result.Amount.String()))
	return result, nil
}

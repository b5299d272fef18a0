package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
)

// checkReversible decides whether txn may be compensated.
func checkReversible(txn *domain.Transaction) error {
	if txn.Type != domain.TransactionTransfer {
		return fmt.Errorf("%w: %s is a %s", apperrors.ErrNotReversible, txn.TransactionID, txn.Type)
	}
	if txn.IsReversal() {
		return fmt.Errorf("%w: %s is itself a reversal", apperrors.ErrNotReversible, txn.TransactionID)
	}

	switch txn.Status {
	case domain.TransactionCompleted:
		return nil
	case domain.TransactionReversed:
		return fmt.Errorf("%w: %s", apperrors.ErrAlreadyReversed, txn.TransactionID)
	case domain.TransactionPending, domain.TransactionFailed:
		return fmt.Errorf("%w: %s is %s", apperrors.ErrNotReversible, txn.TransactionID, txn.Status)
	default:
		return fmt.Errorf("%w: %s has unknown status %q", apperrors.ErrNotReversible, txn.TransactionID, txn.Status)
	}
}

// Reverse compensates a completed transfer with a new transfer in the opposite
// direction and marks the original reversed in the same unit.
func (s *ledgerService) Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	logAttrs := []any{slog.String("original_transaction_id", transactionID)}

	original, err := s.txnRepo.FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.logOutcome(ctx, err, "Reversal rejected", logAttrs...)
		return nil, err
	}
	if err := checkReversible(original); err != nil {
		s.logOutcome(ctx, err, "Reversal rejected", logAttrs...)
		return nil, err
	}
	srcID, dstID := *original.SourceAccountID, *original.DestinationAccountID

	var result *domain.Transaction
	err = s.runUnit(ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		held, err := lockAccounts(ctx, uow.Accounts(), srcID, dstID)
		if err != nil {
			return err
		}

		// Another reversal may have committed between the plain read and the hold.
		current, err := uow.Transactions().GetForUpdate(ctx, transactionID)
		if err != nil {
			return err
		}
		if err := checkReversible(current); err != nil {
			return err
		}

		// The original destination pays back the original source.
		payer, payee := held[dstID], held[srcID]
		if err := requireDebitable(payer); err != nil {
			return err
		}
		if err := requireCreditable(payee); err != nil {
			return err
		}

		now := s.timestamp()
		if err := debit(payer, current.Amount, now); err != nil {
			return err
		}
		credit(payee, current.Amount, now)
		if err := uow.Accounts().Save(ctx, *payer); err != nil {
			return err
		}
		if err := uow.Accounts().Save(ctx, *payee); err != nil {
			return err
		}

		reversal := s.newCompleted(domain.TransactionTransfer, current.Amount, current.CurrencyCode, now)
		reversal.SourceAccountID = &payer.AccountID
		reversal.DestinationAccountID = &payee.AccountID
		reversal.Description = fmt.Sprintf("Reversal of %s", current.ReferenceNumber)
		reversal.ReversalOfID = &current.TransactionID
		if err := insert(ctx, uow, reversal); err != nil {
			return err
		}

		if !current.Status.CanTransitionTo(domain.TransactionReversed) {
			return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current.Status, domain.TransactionReversed)
		}
		if err := uow.Transactions().UpdateStatus(ctx, current.TransactionID, domain.TransactionReversed, current.CompletedAt); err != nil {
			return err
		}

		result = &reversal
		return nil
	})
	if err != nil {
		s.logOutcome(ctx, err, "Reversal failed", logAttrs...)
		return nil, err
	}

	s.LogInfo(ctx, "Transfer reversed",
		slog.String("original_transaction_id", transactionID),
		slog.String("reversal_transaction_id", result.TransactionID),
		slog.String("amount", result.Amount.String()))
	return result, nil
}

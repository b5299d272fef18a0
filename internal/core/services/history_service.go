package services

import (
	"context"
	"fmt"
	"iter"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/utils/pagination"
)

// GetAccount returns the current state of an account without holding it.
func (s *ledgerService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

// GetAccountByNumber returns an account by its presentable number.
func (s *ledgerService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByNumber(ctx, accountNumber)
}

// GetBalance returns a snapshot of the account balance. It may be stale by the time
// the caller sees it and must not be used as a precondition for a later write.
func (s *ledgerService) GetBalance(ctx context.Context, accountID string) (*domain.Money, error) {
	acc, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balance := acc.BalanceMoney()
	return &balance, nil
}

// GetTransaction returns a single transaction.
func (s *ledgerService) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

func (s *ledgerService) normalizePage(page domain.Page) (domain.HistoryQuery, error) {
	if page.Limit < 0 || page.Offset < 0 {
		return domain.HistoryQuery{}, apperrors.NewAppError(apperrors.ErrValidation, "limit and offset must not be negative", nil)
	}

	q := domain.HistoryQuery{Limit: page.Limit, Offset: page.Offset}
	if q.Limit == 0 {
		q.Limit = domain.DefaultHistoryLimit
	}
	if q.Limit > s.historyMaxLimit {
		q.Limit = s.historyMaxLimit
	}

	if page.Cursor != "" {
		createdAt, id, err := pagination.DecodeToken(page.Cursor)
		if err != nil {
			return domain.HistoryQuery{}, apperrors.NewAppError(apperrors.ErrValidation, "invalid cursor", err)
		}
		q.After = &domain.HistoryCursor{CreatedAt: createdAt, TransactionID: id}
		q.Offset = 0
	}
	return q, nil
}

func checkFilter(f domain.HistoryFilter) error {
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperrors.NewAppError(apperrors.ErrValidation, "start date is after end date", nil)
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.GreaterThan(*f.MaxAmount) {
		return apperrors.NewAppError(apperrors.ErrValidation, "minimum amount is above maximum amount", nil)
	}
	if f.Type != nil {
		if _, err := domain.ParseTransactionType(string(*f.Type)); err != nil {
			return apperrors.NewAppError(apperrors.ErrValidation, "unknown transaction type", err)
		}
	}
	return nil
}

// History returns one page of transactions where the account is source or destination,
// newest first. NextCursor is empty on the last page.
func (s *ledgerService) History(ctx context.Context, accountID string, filter domain.HistoryFilter, page domain.Page) (*domain.HistoryPage, error) {
	if err := checkFilter(filter); err != nil {
		return nil, err
	}
	q, err := s.normalizePage(page)
	if err != nil {
		return nil, err
	}
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	// One extra row tells whether another page exists.
	fetch := q
	fetch.Limit = q.Limit + 1
	rows, err := s.txnRepo.QueryTransactions(ctx, accountID, filter, fetch)
	if err != nil {
		return nil, fmt.Errorf("querying history of account %s: %w", accountID, err)
	}

	result := &domain.HistoryPage{Transactions: rows}
	if len(rows) > q.Limit {
		result.Transactions = rows[:q.Limit]
		last := result.Transactions[q.Limit-1]
		result.NextCursor = pagination.EncodeToken(last.CreatedAt, last.TransactionID)
	}
	if result.Transactions == nil {
		result.Transactions = []domain.Transaction{}
	}
	return result, nil
}

// HistorySeq lazily walks the full history, one page per fetch. Each call starts over
// from the newest transaction. An error is yielded once and ends the sequence.
func (s *ledgerService) HistorySeq(ctx context.Context, accountID string, filter domain.HistoryFilter, pageSize int) iter.Seq2[domain.Transaction, error] {
	return func(yield func(domain.Transaction, error) bool) {
		page := domain.Page{Limit: pageSize}
		for {
			if err := ctx.Err(); err != nil {
				yield(domain.Transaction{}, err)
				return
			}

			hp, err := s.History(ctx, accountID, filter, page)
			if err != nil {
				yield(domain.Transaction{}, err)
				return
			}
			for _, txn := range hp.Transactions {
				if !yield(txn, nil) {
					return
				}
			}
			if hp.NextCursor == "" {
				return
			}
			page = domain.Page{Limit: pageSize, Cursor: hp.NextCursor}
		}
	}
}

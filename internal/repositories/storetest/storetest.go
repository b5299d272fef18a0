// Package storetest holds the behaviour every ledger store adapter must share.
// Adapters run StoreSuite from their own tests with a factory for a fresh, empty store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// Factory returns a provider over an empty, migrated store whose holds time out after holdTimeout.
type Factory func(t *testing.T, holdTimeout time.Duration) portsrepo.RepositoryProvider

// StoreSuite is a testify suite exercising the repository ports.
type StoreSuite struct {
	suite.Suite
	NewProvider Factory

	ctx   context.Context
	repos portsrepo.RepositoryProvider
	base  time.Time
	seq   int
}

// Run executes the suite against the stores built by factory.
func Run(t *testing.T, factory Factory) {
	suite.Run(t, &StoreSuite{NewProvider: factory})
}

func (s *StoreSuite) SetupTest() {
	s.ctx = context.Background()
	s.repos = s.NewProvider(s.T(), 200*time.Millisecond)
	s.base = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	s.seq = 0
}

func (s *StoreSuite) requireDecimal(want string, got decimal.Decimal) {
	s.T().Helper()
	s.Require().True(decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func (s *StoreSuite) seedAccount(number, balance string) domain.Account {
	acc := domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: number,
		HolderID:      "holder-" + number,
		CurrencyCode:  "USD",
		Balance:       decimal.RequireFromString(balance),
		Status:        domain.AccountActive,
		CreatedAt:     s.base,
		UpdatedAt:     s.base,
	}
	s.Require().NoError(s.repos.AccountRepo.CreateAccount(s.ctx, acc))
	return acc
}

func (s *StoreSuite) seedInstrument(accountID, limit string) domain.Instrument {
	inst := domain.Instrument{
		InstrumentID: uuid.NewString(),
		AccountID:    accountID,
		Status:       domain.InstrumentActive,
		DailyLimit:   decimal.RequireFromString(limit),
	}
	s.Require().NoError(s.repos.InstrumentRepo.SaveInstrument(s.ctx, inst))
	return inst
}

func (s *StoreSuite) transfer(src, dst, amount string, at time.Time) domain.Transaction {
	s.seq++
	completed := at
	return domain.Transaction{
		TransactionID:        uuid.NewString(),
		Type:                 domain.TransactionTransfer,
		SourceAccountID:      &src,
		DestinationAccountID: &dst,
		Amount:               decimal.RequireFromString(amount),
		CurrencyCode:         "USD",
		Status:               domain.TransactionCompleted,
		Description:          "test transfer",
		ReferenceNumber:      fmt.Sprintf("TXN-%s-%06d", at.Format("20060102150405"), s.seq),
		CreatedAt:            at,
		CompletedAt:          &completed,
	}
}

func (s *StoreSuite) cardPayment(accountID, instrumentID, amount string, at time.Time) domain.Transaction {
	txn := s.transfer(accountID, accountID, amount, at)
	txn.Type = domain.TransactionCardPayment
	txn.DestinationAccountID = nil
	txn.InstrumentID = &instrumentID
	txn.MerchantName = "Corner Shop"
	return txn
}

func (s *StoreSuite) insert(txns ...domain.Transaction) {
	s.T().Helper()
	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		for _, txn := range txns {
			if err := uow.Transactions().Insert(ctx, txn); err != nil {
				return err
			}
		}
		return nil
	})
	s.Require().NoError(err)
}

func (s *StoreSuite) TestAccounts_CreateAndFind() {
	acc := s.seedAccount("100000000001", "250.50")

	byID, err := s.repos.AccountRepo.FindAccountByID(s.ctx, acc.AccountID)
	s.Require().NoError(err)
	s.Equal(acc.AccountNumber, byID.AccountNumber)
	s.Equal(domain.AccountActive, byID.Status)
	s.True(acc.CreatedAt.Equal(byID.CreatedAt))
	s.requireDecimal("250.50", byID.Balance)

	byNumber, err := s.repos.AccountRepo.FindAccountByNumber(s.ctx, "100000000001")
	s.Require().NoError(err)
	s.Equal(acc.AccountID, byNumber.AccountID)
}

func (s *StoreSuite) TestAccounts_MissingIsNotFound() {
	_, err := s.repos.AccountRepo.FindAccountByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, apperrors.ErrNotFound)

	_, err = s.repos.AccountRepo.FindAccountByNumber(s.ctx, "999999999999")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestAccounts_DuplicateNumberIsConflict() {
	s.seedAccount("100000000001", "0")

	dup := domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: "100000000001",
		HolderID:      "someone-else",
		CurrencyCode:  "USD",
		Status:        domain.AccountActive,
		CreatedAt:     s.base,
		UpdatedAt:     s.base,
	}
	s.ErrorIs(s.repos.AccountRepo.CreateAccount(s.ctx, dup), apperrors.ErrConflict)
}

func (s *StoreSuite) newAccount(number string) domain.Account {
	return domain.Account{
		AccountID:     uuid.NewString(),
		AccountNumber: number,
		HolderID:      "holder-" + number,
		CurrencyCode:  "USD",
		Balance:       decimal.Zero,
		Status:        domain.AccountActive,
		CreatedAt:     s.base,
		UpdatedAt:     s.base,
	}
}

func (s *StoreSuite) TestUnit_CreateWithOpeningDeposit() {
	acc := s.newAccount("100000000001")
	deposit := s.transfer(acc.AccountID, acc.AccountID, "75", s.base)
	deposit.Type = domain.TransactionDeposit
	deposit.SourceAccountID = nil

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		if err := uow.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		byNumber, err := uow.Accounts().GetByNumber(ctx, acc.AccountNumber)
		if err != nil {
			return err
		}
		byNumber.Balance = decimal.RequireFromString("75")
		if err := uow.Accounts().Save(ctx, *byNumber); err != nil {
			return err
		}
		return uow.Transactions().Insert(ctx, deposit)
	})
	s.Require().NoError(err)

	stored, err := s.repos.AccountRepo.FindAccountByNumber(s.ctx, acc.AccountNumber)
	s.Require().NoError(err)
	s.Equal(acc.AccountID, stored.AccountID)
	s.requireDecimal("75", stored.Balance)

	_, err = s.repos.TransactionRepo.FindTransactionByID(s.ctx, deposit.TransactionID)
	s.NoError(err)
}

func (s *StoreSuite) TestUnit_CreateRolledBackLeavesNoAccount() {
	acc := s.newAccount("100000000001")
	boom := errors.New("deposit failed")

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		if err := uow.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.repos.AccountRepo.FindAccountByID(s.ctx, acc.AccountID)
	s.ErrorIs(err, apperrors.ErrNotFound)
	_, err = s.repos.AccountRepo.FindAccountByNumber(s.ctx, acc.AccountNumber)
	s.ErrorIs(err, apperrors.ErrNotFound)

	// The number is free again.
	s.seedAccount(acc.AccountNumber, "0")
}

func (s *StoreSuite) TestUnit_CreateDuplicateNumberIsConflict() {
	s.seedAccount("100000000001", "0")

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Accounts().Create(ctx, s.newAccount("100000000001"))
	})
	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *StoreSuite) TestUnit_CommitAppliesEverything() {
	a := s.seedAccount("100000000001", "100")
	b := s.seedAccount("100000000002", "0")
	txn := s.transfer(a.AccountID, b.AccountID, "40", s.base)

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		src, err := uow.Accounts().GetForUpdate(ctx, a.AccountID)
		if err != nil {
			return err
		}
		dst, err := uow.Accounts().GetForUpdate(ctx, b.AccountID)
		if err != nil {
			return err
		}
		src.Balance = src.Balance.Sub(txn.Amount)
		dst.Balance = dst.Balance.Add(txn.Amount)
		if err := uow.Accounts().Save(ctx, *src); err != nil {
			return err
		}
		if err := uow.Accounts().Save(ctx, *dst); err != nil {
			return err
		}
		return uow.Transactions().Insert(ctx, txn)
	})
	s.Require().NoError(err)

	src, err := s.repos.AccountRepo.FindAccountByID(s.ctx, a.AccountID)
	s.Require().NoError(err)
	s.requireDecimal("60", src.Balance)
	dst, err := s.repos.AccountRepo.FindAccountByID(s.ctx, b.AccountID)
	s.Require().NoError(err)
	s.requireDecimal("40", dst.Balance)

	stored, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(txn.ReferenceNumber, stored.ReferenceNumber)
	s.Equal(domain.TransactionCompleted, stored.Status)
	s.Require().NotNil(stored.CompletedAt)
	s.True(txn.CompletedAt.Equal(*stored.CompletedAt))
	s.Nil(stored.InstrumentID)
	s.Nil(stored.ReversalOfID)
}

func (s *StoreSuite) TestUnit_ErrorRollsBack() {
	a := s.seedAccount("100000000001", "100")
	b := s.seedAccount("100000000002", "0")
	txn := s.transfer(a.AccountID, b.AccountID, "40", s.base)
	boom := errors.New("boom")

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		src, err := uow.Accounts().GetForUpdate(ctx, a.AccountID)
		if err != nil {
			return err
		}
		src.Balance = decimal.Zero
		if err := uow.Accounts().Save(ctx, *src); err != nil {
			return err
		}
		if err := uow.Transactions().Insert(ctx, txn); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	src, err := s.repos.AccountRepo.FindAccountByID(s.ctx, a.AccountID)
	s.Require().NoError(err)
	s.requireDecimal("100", src.Balance)

	_, err = s.repos.TransactionRepo.FindTransactionByID(s.ctx, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestUnit_PanicRollsBackAndReleasesHolds() {
	a := s.seedAccount("100000000001", "100")

	s.Panics(func() {
		_ = s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
			src, err := uow.Accounts().GetForUpdate(ctx, a.AccountID)
			if err != nil {
				return err
			}
			src.Balance = decimal.Zero
			if err := uow.Accounts().Save(ctx, *src); err != nil {
				return err
			}
			panic("unit body failed")
		})
	})

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := uow.Accounts().GetForUpdate(ctx, a.AccountID)
		if err != nil {
			return err
		}
		s.requireDecimal("100", acc.Balance)
		return nil
	})
	s.NoError(err)
}

func (s *StoreSuite) TestUnit_HeldAccountIsBusy() {
	a := s.seedAccount("100000000001", "100")

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		if _, err := uow.Accounts().GetForUpdate(ctx, a.AccountID); err != nil {
			return err
		}

		done := make(chan error, 1)
		go func() {
			done <- s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, other portsrepo.UnitOfWork) error {
				_, err := other.Accounts().GetForUpdate(ctx, a.AccountID)
				return err
			})
		}()

		select {
		case err := <-done:
			s.ErrorIs(err, apperrors.ErrBusy)
			s.True(apperrors.IsRetryable(err))
		case <-time.After(5 * time.Second):
			s.Fail("second unit did not give up on the held account")
		}
		return nil
	})
	s.NoError(err)
}

func (s *StoreSuite) TestUnit_MissingAccountIsNotFound() {
	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		_, err := uow.Accounts().GetForUpdate(ctx, uuid.NewString())
		return err
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestUnit_GetByNumberInsideUnit() {
	a := s.seedAccount("100000000001", "10")

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		acc, err := uow.Accounts().GetByNumber(ctx, "100000000001")
		if err != nil {
			return err
		}
		s.Equal(a.AccountID, acc.AccountID)
		return nil
	})
	s.NoError(err)
}

func (s *StoreSuite) TestTransactions_DuplicateReferenceIsConflict() {
	a := s.seedAccount("100000000001", "100")
	b := s.seedAccount("100000000002", "0")
	first := s.transfer(a.AccountID, b.AccountID, "1", s.base)
	s.insert(first)

	second := s.transfer(a.AccountID, b.AccountID, "2", s.base)
	second.ReferenceNumber = first.ReferenceNumber
	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Transactions().Insert(ctx, second)
	})
	s.ErrorIs(err, apperrors.ErrConflict)

	_, err = s.repos.TransactionRepo.FindTransactionByID(s.ctx, second.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestTransactions_UpdateStatusFollowsTransitions() {
	a := s.seedAccount("100000000001", "100")
	b := s.seedAccount("100000000002", "0")
	txn := s.transfer(a.AccountID, b.AccountID, "5", s.base)
	s.insert(txn)

	err := s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		locked, err := uow.Transactions().GetForUpdate(ctx, txn.TransactionID)
		if err != nil {
			return err
		}
		return uow.Transactions().UpdateStatus(ctx, locked.TransactionID, domain.TransactionReversed, locked.CompletedAt)
	})
	s.Require().NoError(err)

	stored, err := s.repos.TransactionRepo.FindTransactionByID(s.ctx, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.TransactionReversed, stored.Status)
	s.Require().NotNil(stored.CompletedAt)

	err = s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Transactions().UpdateStatus(ctx, txn.TransactionID, domain.TransactionCompleted, stored.CompletedAt)
	})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	err = s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		return uow.Transactions().UpdateStatus(ctx, uuid.NewString(), domain.TransactionReversed, nil)
	})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *StoreSuite) TestQueryTransactions_NewestFirstWithTieBreak() {
	a := s.seedAccount("100000000001", "100")
	b := s.seedAccount("100000000002", "0")
	c := s.seedAccount("100000000003", "0")

	older := s.transfer(a.AccountID, b.AccountID, "1", s.base)
	tieLow := s.transfer(b.AccountID, a.AccountID, "2", s.base.Add(time.Minute))
	tieHigh := s.transfer(a.AccountID, c.AccountID, "3", s.base.Add(time.Minute))
	tieLow.TransactionID = "00000000-0000-0000-0000-000000000001"
	tieHigh.TransactionID = "ffffffff-0000-0000-0000-000000000001"
	unrelated := s.transfer(b.AccountID, c.AccountID, "4", s.base.Add(2*time.Minute))
	s.insert(older, tieLow, tieHigh, unrelated)

	got, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{}, domain.HistoryQuery{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(got, 3)
	s.Equal(tieHigh.TransactionID, got[0].TransactionID)
	s.Equal(tieLow.TransactionID, got[1].TransactionID)
	s.Equal(older.TransactionID, got[2].TransactionID)
}

func (s *StoreSuite) TestQueryTransactions_Filters() {
	a := s.seedAccount("100000000001", "1000")
	b := s.seedAccount("100000000002", "0")
	inst := s.seedInstrument(a.AccountID, "500")

	small := s.transfer(a.AccountID, b.AccountID, "9.99", s.base)
	large := s.transfer(a.AccountID, b.AccountID, "120.00", s.base.Add(time.Hour))
	card := s.cardPayment(a.AccountID, inst.InstrumentID, "45.50", s.base.Add(2*time.Hour))
	s.insert(small, large, card)

	from := s.base.Add(30 * time.Minute)
	to := s.base.Add(2 * time.Hour)
	minAmount := decimal.RequireFromString("10")
	maxAmount := decimal.RequireFromString("100")
	cardType := domain.TransactionCardPayment

	tests := []struct {
		name   string
		filter domain.HistoryFilter
		want   []string
	}{
		{"date range is inclusive", domain.HistoryFilter{From: &from, To: &to}, []string{card.TransactionID, large.TransactionID}},
		{"type", domain.HistoryFilter{Type: &cardType}, []string{card.TransactionID}},
		{"min amount compares numerically", domain.HistoryFilter{MinAmount: &minAmount}, []string{card.TransactionID, large.TransactionID}},
		{"max amount", domain.HistoryFilter{MaxAmount: &maxAmount}, []string{card.TransactionID, small.TransactionID}},
		{"combined", domain.HistoryFilter{From: &from, MaxAmount: &maxAmount}, []string{card.TransactionID}},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			got, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, tt.filter, domain.HistoryQuery{Limit: 10})
			s.Require().NoError(err)
			ids := make([]string, 0, len(got))
			for _, txn := range got {
				ids = append(ids, txn.TransactionID)
			}
			s.Equal(tt.want, ids)
		})
	}

	got, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{Type: &cardType}, domain.HistoryQuery{Limit: 10})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Corner Shop", got[0].MerchantName)
	s.Require().NotNil(got[0].InstrumentID)
	s.Equal(inst.InstrumentID, *got[0].InstrumentID)
	s.Nil(got[0].DestinationAccountID)
}

func (s *StoreSuite) TestQueryTransactions_CursorAndOffset() {
	a := s.seedAccount("100000000001", "1000")
	b := s.seedAccount("100000000002", "0")

	var all []domain.Transaction
	for i := range 5 {
		all = append(all, s.transfer(a.AccountID, b.AccountID, "1", s.base.Add(time.Duration(i)*time.Second)))
	}
	s.insert(all...)

	first, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{}, domain.HistoryQuery{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(first, 2)
	s.Equal(all[4].TransactionID, first[0].TransactionID)
	s.Equal(all[3].TransactionID, first[1].TransactionID)

	last := first[1]
	next, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{}, domain.HistoryQuery{
		Limit: 10,
		After: &domain.HistoryCursor{CreatedAt: last.CreatedAt, TransactionID: last.TransactionID},
	})
	s.Require().NoError(err)
	s.Require().Len(next, 3)
	s.Equal(all[2].TransactionID, next[0].TransactionID)
	s.Equal(all[0].TransactionID, next[2].TransactionID)

	offset, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{}, domain.HistoryQuery{Limit: 2, Offset: 4})
	s.Require().NoError(err)
	s.Require().Len(offset, 1)
	s.Equal(all[0].TransactionID, offset[0].TransactionID)

	empty, err := s.repos.TransactionRepo.QueryTransactions(s.ctx, a.AccountID, domain.HistoryFilter{}, domain.HistoryQuery{Limit: 2, Offset: 10})
	s.Require().NoError(err)
	s.Empty(empty)
}

func (s *StoreSuite) TestSumCardPayments_WindowIsHalfOpen() {
	a := s.seedAccount("100000000001", "1000")
	b := s.seedAccount("100000000002", "0")
	inst := s.seedInstrument(a.AccountID, "500")
	other := s.seedInstrument(a.AccountID, "500")

	start, end := domain.SpendWindow(s.base)
	s.insert(
		s.cardPayment(a.AccountID, inst.InstrumentID, "10.25", start),
		s.cardPayment(a.AccountID, inst.InstrumentID, "4.75", end.Add(-time.Microsecond)),
		s.cardPayment(a.AccountID, inst.InstrumentID, "100", end),
		s.cardPayment(a.AccountID, inst.InstrumentID, "100", start.Add(-time.Microsecond)),
		s.cardPayment(a.AccountID, other.InstrumentID, "100", s.base),
		s.transfer(a.AccountID, b.AccountID, "100", s.base),
	)

	total, err := s.repos.TransactionRepo.SumCardPayments(s.ctx, inst.InstrumentID, start, end)
	s.Require().NoError(err)
	s.requireDecimal("15.00", total)

	err = s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		inUnit, err := uow.Transactions().SumCardPayments(ctx, inst.InstrumentID, start, end)
		if err != nil {
			return err
		}
		s.requireDecimal("15.00", inUnit)
		return nil
	})
	s.NoError(err)

	none, err := s.repos.TransactionRepo.SumCardPayments(s.ctx, uuid.NewString(), start, end)
	s.Require().NoError(err)
	s.True(none.IsZero())
}

func (s *StoreSuite) TestInstruments_SaveAndRebind() {
	a := s.seedAccount("100000000001", "0")
	b := s.seedAccount("100000000002", "0")
	expires := s.base.Add(30 * 24 * time.Hour)

	inst := domain.Instrument{
		InstrumentID: uuid.NewString(),
		AccountID:    a.AccountID,
		Status:       domain.InstrumentInactive,
		DailyLimit:   decimal.RequireFromString("1000.00"),
		ExpiresAt:    &expires,
	}
	s.Require().NoError(s.repos.InstrumentRepo.SaveInstrument(s.ctx, inst))

	got, err := s.repos.InstrumentRepo.FindInstrumentByID(s.ctx, inst.InstrumentID)
	s.Require().NoError(err)
	s.Equal(domain.InstrumentInactive, got.Status)
	s.requireDecimal("1000", got.DailyLimit)
	s.Require().NotNil(got.ExpiresAt)
	s.True(expires.Equal(*got.ExpiresAt))

	inst.AccountID = b.AccountID
	inst.Status = domain.InstrumentActive
	inst.ExpiresAt = nil
	s.Require().NoError(s.repos.InstrumentRepo.SaveInstrument(s.ctx, inst))

	err = s.repos.TxManager.RunInUnit(s.ctx, func(ctx context.Context, uow portsrepo.UnitOfWork) error {
		got, err := uow.Instruments().FindInstrumentByID(ctx, inst.InstrumentID)
		if err != nil {
			return err
		}
		s.Equal(b.AccountID, got.AccountID)
		s.Equal(domain.InstrumentActive, got.Status)
		s.Nil(got.ExpiresAt)
		return nil
	})
	s.NoError(err)
}

func (s *StoreSuite) TestInstruments_UnknownAccountIsNotFound() {
	inst := domain.Instrument{
		InstrumentID: uuid.NewString(),
		AccountID:    uuid.NewString(),
		Status:       domain.InstrumentActive,
		DailyLimit:   decimal.RequireFromString("10"),
	}
	s.ErrorIs(s.repos.InstrumentRepo.SaveInstrument(s.ctx, inst), apperrors.ErrNotFound)

	_, err := s.repos.InstrumentRepo.FindInstrumentByID(s.ctx, inst.InstrumentID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

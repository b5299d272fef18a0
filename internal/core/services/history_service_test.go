package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// seedHistory records n deposits of 1..n into acc, one second apart.
func (suite *LedgerServiceTestSuite) seedHistory(acc *domain.Account, n int) []*domain.Transaction {
	txns := make([]*domain.Transaction, 0, n)
	for i := 1; i <= n; i++ {
		txn, err := suite.ledger.Deposit(suite.ctx, dto.MovementRequest{
			AccountID:    acc.AccountID,
			Amount:       decimal.NewFromInt(int64(i)),
			CurrencyCode: acc.CurrencyCode,
		})
		suite.Require().NoError(err)
		txns = append(txns, txn)
	}
	return txns
}

func ids(txns []domain.Transaction) []string {
	out := make([]string, len(txns))
	for i, txn := range txns {
		out[i] = txn.TransactionID
	}
	return out
}

func (suite *LedgerServiceTestSuite) TestHistory_CursorPagesCoverEverythingOnce() {
	acc := suite.openAccount("USD", "0")
	seeded := suite.seedHistory(acc, 7)

	var (
		seen   []string
		cursor string
		pages  int
	)
	for {
		page, err := suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{Limit: 3, Cursor: cursor})
		suite.Require().NoError(err)
		pages++
		seen = append(seen, ids(page.Transactions)...)
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	suite.Equal(3, pages)
	suite.Require().Len(seen, 7)
	for i, txn := range seeded {
		suite.Equal(txn.TransactionID, seen[len(seen)-1-i], "newest first")
	}
}

func (suite *LedgerServiceTestSuite) TestHistory_LastFullPageHasNoCursor() {
	acc := suite.openAccount("USD", "0")
	suite.seedHistory(acc, 4)

	page, err := suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{Limit: 4})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, 4)
	suite.Empty(page.NextCursor)
}

func (suite *LedgerServiceTestSuite) TestHistory_OffsetAndDefaults() {
	acc := suite.openAccount("USD", "0")
	seeded := suite.seedHistory(acc, 25)

	page, err := suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, domain.DefaultHistoryLimit)
	suite.NotEmpty(page.NextCursor)

	page, err = suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{Limit: 10, Offset: 20})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, 5)
	suite.Equal(seeded[0].TransactionID, page.Transactions[4].TransactionID)

	page, err = suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{Limit: 10, Offset: 500})
	suite.Require().NoError(err)
	suite.NotNil(page.Transactions)
	suite.Empty(page.Transactions)
}

func (suite *LedgerServiceTestSuite) TestHistory_Filters() {
	alice := suite.openAccount("USD", "0")
	bob := suite.openAccount("USD", "0")
	suite.seedHistory(alice, 5)
	start := suite.clock.Now()
	xfer, err := suite.ledger.Transfer(suite.ctx, suite.transferReq(alice, bob, "4"))
	suite.Require().NoError(err)

	transferType := domain.TransactionTransfer
	page, err := suite.ledger.History(suite.ctx, alice.AccountID, domain.HistoryFilter{Type: &transferType}, domain.Page{})
	suite.Require().NoError(err)
	suite.Equal([]string{xfer.TransactionID}, ids(page.Transactions))

	page, err = suite.ledger.History(suite.ctx, bob.AccountID, domain.HistoryFilter{From: &start}, domain.Page{})
	suite.Require().NoError(err)
	suite.Equal([]string{xfer.TransactionID}, ids(page.Transactions))

	minAmount, maxAmount := amount("2"), amount("4")
	page, err = suite.ledger.History(suite.ctx, alice.AccountID, domain.HistoryFilter{MinAmount: &minAmount, MaxAmount: &maxAmount}, domain.Page{})
	suite.Require().NoError(err)
	suite.Len(page.Transactions, 4) // deposits of 2, 3, 4 and the transfer of 4
}

func (suite *LedgerServiceTestSuite) TestHistory_Rejections() {
	acc := suite.openAccount("USD", "0")
	later := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	earlier := later.Add(-time.Hour)
	low, high := amount("1"), amount("10")
	bogus := domain.TransactionType("refund")

	tests := []struct {
		name   string
		filter domain.HistoryFilter
		page   domain.Page
		want   error
	}{
		{"from after to", domain.HistoryFilter{From: &later, To: &earlier}, domain.Page{}, apperrors.ErrValidation},
		{"min above max", domain.HistoryFilter{MinAmount: &high, MaxAmount: &low}, domain.Page{}, apperrors.ErrValidation},
		{"unknown type", domain.HistoryFilter{Type: &bogus}, domain.Page{}, apperrors.ErrValidation},
		{"negative limit", domain.HistoryFilter{}, domain.Page{Limit: -1}, apperrors.ErrValidation},
		{"garbage cursor", domain.HistoryFilter{}, domain.Page{Cursor: "not-a-cursor"}, apperrors.ErrValidation},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			_, err := suite.ledger.History(suite.ctx, acc.AccountID, tt.filter, tt.page)
			suite.ErrorIs(err, tt.want)
		})
	}

	_, err := suite.ledger.History(suite.ctx, "missing", domain.HistoryFilter{}, domain.Page{})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestHistorySeq_WalksAllPages() {
	acc := suite.openAccount("USD", "0")
	seeded := suite.seedHistory(acc, 11)

	var got []string
	for txn, err := range suite.ledger.HistorySeq(suite.ctx, acc.AccountID, domain.HistoryFilter{}, 4) {
		suite.Require().NoError(err)
		got = append(got, txn.TransactionID)
	}
	suite.Require().Len(got, 11)
	suite.Equal(seeded[10].TransactionID, got[0])
	suite.Equal(seeded[0].TransactionID, got[10])

	count := 0
	for range suite.ledger.HistorySeq(suite.ctx, acc.AccountID, domain.HistoryFilter{}, 4) {
		count++
		if count == 5 {
			break
		}
	}
	suite.Equal(5, count)
}

func (suite *LedgerServiceTestSuite) TestHistorySeq_StopsOnError() {
	ctx, cancel := context.WithCancel(suite.ctx)
	cancel()

	var errs []error
	for _, err := range suite.ledger.HistorySeq(ctx, "any", domain.HistoryFilter{}, 4) {
		errs = append(errs, err)
	}
	suite.Require().Len(errs, 1)
	suite.ErrorIs(errs[0], context.Canceled)

	errs = nil
	for _, err := range suite.ledger.HistorySeq(suite.ctx, "missing", domain.HistoryFilter{}, 4) {
		errs = append(errs, err)
	}
	suite.Require().Len(errs, 1)
	suite.ErrorIs(errs[0], apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestHistory_SingleInstantWindowReturnsStoredTransfer() {
	alice := suite.openAccount("USD", "1000")
	bob := suite.openAccount("USD", "0")
	created, err := suite.ledger.Transfer(suite.ctx, suite.transferReq(alice, bob, "250.25"))
	suite.Require().NoError(err)

	at := created.CreatedAt
	for _, accountID := range []string{alice.AccountID, bob.AccountID} {
		page, err := suite.ledger.History(suite.ctx, accountID, domain.HistoryFilter{From: &at, To: &at}, domain.Page{})
		suite.Require().NoError(err)
		suite.Require().Len(page.Transactions, 1, "history of %s", accountID)
		suite.Empty(page.NextCursor)

		got := page.Transactions[0]
		suite.Equal(created.TransactionID, got.TransactionID)
		suite.Equal(created.Type, got.Type)
		suite.Equal(*created.SourceAccountID, *got.SourceAccountID)
		suite.Equal(*created.DestinationAccountID, *got.DestinationAccountID)
		suite.Nil(got.InstrumentID)
		suite.True(created.Amount.Equal(got.Amount), "amount: want %s, got %s", created.Amount, got.Amount)
		suite.Equal(created.CurrencyCode, got.CurrencyCode)
		suite.Equal(created.Status, got.Status)
		suite.Equal(created.Description, got.Description)
		suite.Equal(created.MerchantName, got.MerchantName)
		suite.Equal(created.ReferenceNumber, got.ReferenceNumber)
		suite.Nil(got.ReversalOfID)
		suite.True(created.CreatedAt.Equal(got.CreatedAt))
		suite.Require().NotNil(got.CompletedAt)
		suite.True(created.CompletedAt.Equal(*got.CompletedAt))
	}

	// One microsecond either side excludes it.
	before, after := at.Add(-time.Microsecond), at.Add(time.Microsecond)
	page, err := suite.ledger.History(suite.ctx, bob.AccountID, domain.HistoryFilter{From: &after}, domain.Page{})
	suite.Require().NoError(err)
	suite.Empty(page.Transactions)
	page, err = suite.ledger.History(suite.ctx, bob.AccountID, domain.HistoryFilter{To: &before}, domain.Page{})
	suite.Require().NoError(err)
	suite.Empty(page.Transactions)
}

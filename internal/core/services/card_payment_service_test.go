package services_test

import (
	"sync"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

func (suite *LedgerServiceTestSuite) registerCard(acc *domain.Account, status domain.InstrumentStatus, limit string) *domain.Instrument {
	dailyLimit := amount(limit)
	inst, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		AccountID:  acc.AccountID,
		Status:     string(status),
		DailyLimit: &dailyLimit,
	})
	suite.Require().NoError(err)
	return inst
}

func (suite *LedgerServiceTestSuite) pay(inst *domain.Instrument, amt string) (*domain.Transaction, error) {
	return suite.ledger.PayWithCard(suite.ctx, dto.CardPaymentRequest{
		InstrumentID: inst.InstrumentID,
		Amount:       amount(amt),
		MerchantName: "Corner Shop",
	})
}

func (suite *LedgerServiceTestSuite) TestPayWithCard_Success() {
	acc := suite.openAccount("USD", "500")
	card := suite.registerCard(acc, domain.InstrumentActive, "300")

	txn, err := suite.pay(card, "120.40")

	suite.Require().NoError(err)
	suite.Equal(domain.TransactionCardPayment, txn.Type)
	suite.Equal(acc.AccountID, *txn.SourceAccountID)
	suite.Nil(txn.DestinationAccountID)
	suite.Equal(card.InstrumentID, *txn.InstrumentID)
	suite.Equal("Corner Shop", txn.MerchantName)
	suite.Equal("Card payment at Corner Shop", txn.Description)
	suite.Equal("USD", txn.CurrencyCode)
	suite.requireBalance(acc.AccountID, "379.60")

	spend, err := suite.ledger.DailySpending(suite.ctx, card.InstrumentID)
	suite.Require().NoError(err)
	suite.Equal("2025-03-10", spend.Date)
	suite.True(amount("120.40").Equal(spend.Spent))
	suite.True(amount("179.60").Equal(spend.Remaining))
	suite.True(amount("300").Equal(spend.Limit))
}

// Limit 1000 with 100 already spent: 900 fits exactly, one more cent does not.
func (suite *LedgerServiceTestSuite) TestPayWithCard_LimitBoundary() {
	acc := suite.openAccount("USD", "5000")
	card := suite.registerCard(acc, domain.InstrumentActive, "1000")

	_, err := suite.pay(card, "100")
	suite.Require().NoError(err)

	_, err = suite.pay(card, "900.01")
	var exceeded *apperrors.LimitExceededError
	suite.Require().ErrorAs(err, &exceeded)
	suite.True(amount("100").Equal(exceeded.SpentToday))
	suite.True(amount("1000").Equal(exceeded.Limit))
	suite.requireBalance(acc.AccountID, "4900")

	_, err = suite.pay(card, "900")
	suite.Require().NoError(err)

	_, err = suite.pay(card, "0.01")
	suite.ErrorIs(err, apperrors.ErrLimitExceeded)
	suite.requireBalance(acc.AccountID, "4000")
}

func (suite *LedgerServiceTestSuite) TestPayWithCard_WindowResetsAtUTCMidnight() {
	acc := suite.openAccount("USD", "5000")
	card := suite.registerCard(acc, domain.InstrumentActive, "100")

	suite.clock.Set(time.Date(2025, time.March, 10, 23, 59, 0, 0, time.UTC))
	_, err := suite.pay(card, "100")
	suite.Require().NoError(err)
	_, err = suite.pay(card, "1")
	suite.ErrorIs(err, apperrors.ErrLimitExceeded)

	suite.clock.Set(time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC))
	_, err = suite.pay(card, "100")
	suite.NoError(err)
}

func (suite *LedgerServiceTestSuite) TestPayWithCard_ConcurrentPaymentsCannotBothPassLimit() {
	acc := suite.openAccount("USD", "5000")
	card := suite.registerCard(acc, domain.InstrumentActive, "1000")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = suite.pay(card, "600")
		}()
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			suite.ErrorIs(err, apperrors.ErrLimitExceeded)
			failures++
		}
	}
	suite.Equal(1, failures)
	suite.requireBalance(acc.AccountID, "4400")

	spend, err := suite.ledger.DailySpending(suite.ctx, card.InstrumentID)
	suite.Require().NoError(err)
	suite.True(amount("600").Equal(spend.Spent))
}

func (suite *LedgerServiceTestSuite) TestPayWithCard_Rejections() {
	acc := suite.openAccount("USD", "50")
	active := suite.registerCard(acc, domain.InstrumentActive, "1000")
	blocked := suite.registerCard(acc, domain.InstrumentBlocked, "1000")
	inactive := suite.registerCard(acc, domain.InstrumentInactive, "1000")

	_, err := suite.pay(blocked, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)

	_, err = suite.pay(inactive, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)

	_, err = suite.pay(active, "50.01")
	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)

	_, err = suite.ledger.PayWithCard(suite.ctx, dto.CardPaymentRequest{InstrumentID: active.InstrumentID, Amount: amount("10"), CurrencyCode: "EUR"})
	suite.ErrorIs(err, apperrors.ErrCurrencyMismatch)

	_, err = suite.pay(active, "0")
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)

	_, err = suite.pay(&domain.Instrument{InstrumentID: "missing"}, "10")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.ledger.ChangeAccountStatus(suite.ctx, acc.AccountID, domain.AccountFrozen)
	suite.Require().NoError(err)
	_, err = suite.pay(active, "10")
	suite.ErrorIs(err, apperrors.ErrAccountNotActive)

	suite.requireBalance(acc.AccountID, "50")
}

func (suite *LedgerServiceTestSuite) TestPayWithCard_ExpiredCard() {
	acc := suite.openAccount("USD", "50")
	expires := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	limit := amount("1000")
	card, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		AccountID:  acc.AccountID,
		Status:     "active",
		DailyLimit: &limit,
		ExpiresAt:  &expires,
	})
	suite.Require().NoError(err)

	_, err = suite.pay(card, "10")
	suite.Require().NoError(err)

	suite.clock.Set(expires)
	_, err = suite.pay(card, "10")
	var notActive *apperrors.NotActiveError
	suite.Require().ErrorAs(err, &notActive)
	suite.Equal("expired", notActive.Status)
}

// --- Authorize ---

func (suite *LedgerServiceTestSuite) TestAuthorize_Reasons() {
	acc := suite.openAccount("USD", "5000")
	card := suite.registerCard(acc, domain.InstrumentActive, "1000")
	blocked := suite.registerCard(acc, domain.InstrumentBlocked, "1000")
	_, err := suite.pay(card, "400")
	suite.Require().NoError(err)

	tests := []struct {
		name     string
		inst     *domain.Instrument
		amount   string
		limit    string
		approved bool
		reason   string
	}{
		{"within limit", card, "600", "1000", true, ""},
		{"over limit", card, "600.01", "1000", false, domain.DeclineLimitExceeded},
		{"explicit lower limit", card, "100", "450", false, domain.DeclineLimitExceeded},
		{"zero amount", card, "0", "1000", false, domain.DeclineInvalidAmount},
		{"not active wins over amount", blocked, "0", "1000", false, domain.DeclineInstrumentNotActive},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			auth, err := suite.ledger.Authorize(suite.ctx, tt.inst.InstrumentID, amount(tt.amount), amount(tt.limit))
			suite.Require().NoError(err)
			suite.Equal(tt.approved, auth.Approved)
			suite.Equal(tt.reason, auth.Reason)
		})
	}

	auth, err := suite.ledger.Authorize(suite.ctx, card.InstrumentID, amount("1"), amount("300"))
	suite.Require().NoError(err)
	suite.True(amount("400").Equal(auth.SpentToday))
	suite.True(auth.Remaining.IsZero())

	_, err = suite.ledger.Authorize(suite.ctx, card.InstrumentID, amount("1"), decimal.NewFromInt(-1))
	suite.ErrorIs(err, apperrors.ErrValidation)

	// Authorization takes no money.
	suite.requireBalance(acc.AccountID, "4600")
}

package services_test

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

func (suite *LedgerServiceTestSuite) TestOpenAccount_GeneratesNumberAndRecordsDeposit() {
	deposit := amount("75.00")

	acc, err := suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		HolderID:       "holder-9",
		CurrencyCode:   "eur",
		InitialDeposit: &deposit,
	})

	suite.Require().NoError(err)
	suite.Regexp(`^\d{12}$`, acc.AccountNumber)
	suite.Equal("EUR", acc.CurrencyCode)
	suite.Equal(domain.AccountActive, acc.Status)
	suite.requireBalance(acc.AccountID, "75")

	page, err := suite.ledger.History(suite.ctx, acc.AccountID, domain.HistoryFilter{}, domain.Page{})
	suite.Require().NoError(err)
	suite.Require().Len(page.Transactions, 1)
	suite.Equal(domain.TransactionDeposit, page.Transactions[0].Type)
	suite.Equal("Initial deposit", page.Transactions[0].Description)

	byNumber, err := suite.ledger.GetAccountByNumber(suite.ctx, acc.AccountNumber)
	suite.Require().NoError(err)
	suite.Equal(acc.AccountID, byNumber.AccountID)
}

func (suite *LedgerServiceTestSuite) TestOpenAccount_Rejections() {
	_, err := suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		AccountNumber: "123456789012",
		HolderID:      "holder-1",
		CurrencyCode:  "USD",
	})
	suite.Require().NoError(err)

	_, err = suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		AccountNumber: "123456789012",
		HolderID:      "holder-2",
		CurrencyCode:  "USD",
	})
	suite.ErrorIs(err, apperrors.ErrConflict)

	_, err = suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{HolderID: "holder-3", CurrencyCode: "DOLLARS"})
	suite.ErrorIs(err, apperrors.ErrValidation)

	negative := amount("-1")
	_, err = suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{HolderID: "holder-4", CurrencyCode: "USD", InitialDeposit: &negative})
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
}

func (suite *LedgerServiceTestSuite) TestRegisterInstrument_Defaults() {
	acc := suite.openAccount("USD", "0")

	inst, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{AccountID: acc.AccountID})

	suite.Require().NoError(err)
	suite.NotEmpty(inst.InstrumentID)
	suite.Equal(domain.InstrumentInactive, inst.Status)
	suite.True(decimal.RequireFromString("1000.00").Equal(inst.DailyLimit))

	spend, err := suite.ledger.DailySpending(suite.ctx, inst.InstrumentID)
	suite.Require().NoError(err)
	suite.True(spend.Spent.IsZero())
	suite.True(inst.DailyLimit.Equal(spend.Remaining))
}

func (suite *LedgerServiceTestSuite) TestRegisterInstrument_Rejections() {
	acc := suite.openAccount("USD", "0")
	negative := amount("-10")
	expires := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{AccountID: "missing", ExpiresAt: &expires})
	suite.ErrorIs(err, apperrors.ErrNotFound)

	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{AccountID: acc.AccountID, DailyLimit: &negative})
	suite.ErrorIs(err, apperrors.ErrValidation)

	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{AccountID: acc.AccountID, Status: "lost"})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestOpenAccount_DepositFailureLeavesNoAccount() {
	gen := new(MockReferenceGenerator)
	gen.On("Next", domain.TransactionDeposit, mock.Anything).Return("DEP-20250310090000-000001")
	provisioning := services.NewAccountService(suite.repos,
		services.WithReferenceGenerator(gen),
		services.WithClock(suite.clock.Now))
	deposit := amount("10")

	_, err := provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		AccountNumber:  "200000000001",
		HolderID:       "holder-1",
		CurrencyCode:   "USD",
		InitialDeposit: &deposit,
	})
	suite.Require().NoError(err)

	_, err = provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		AccountNumber:  "200000000002",
		HolderID:       "holder-2",
		CurrencyCode:   "USD",
		InitialDeposit: &deposit,
	})
	suite.ErrorIs(err, apperrors.ErrConflict)

	_, err = suite.ledger.GetAccountByNumber(suite.ctx, "200000000002")
	suite.ErrorIs(err, apperrors.ErrNotFound)

	// The number was never taken, so a clean retry gets it.
	acc, err := suite.container.Provisioning.OpenAccount(suite.ctx, dto.OpenAccountRequest{
		AccountNumber:  "200000000002",
		HolderID:       "holder-2",
		CurrencyCode:   "USD",
		InitialDeposit: &deposit,
	})
	suite.Require().NoError(err)
	suite.requireBalance(acc.AccountID, "10")
}

func (suite *LedgerServiceTestSuite) TestOpenAccount_TakenNumberIsNotRetried() {
	gen := new(MockReferenceGenerator)
	gen.On("Next", domain.TransactionDeposit, mock.Anything).Return("DEP-20250310090000-000001").Once()
	provisioning := services.NewAccountService(suite.repos, services.WithReferenceGenerator(gen))
	deposit := amount("10")
	req := dto.OpenAccountRequest{AccountNumber: "200000000003", HolderID: "holder-1", CurrencyCode: "USD", InitialDeposit: &deposit}

	_, err := provisioning.OpenAccount(suite.ctx, req)
	suite.Require().NoError(err)

	_, err = provisioning.OpenAccount(suite.ctx, req)
	suite.ErrorIs(err, apperrors.ErrConflict)
	gen.AssertNumberOfCalls(suite.T(), "Next", 1)
}

func (suite *LedgerServiceTestSuite) TestRegisterInstrument_UpdateKeepsStoredFields() {
	acc := suite.openAccount("USD", "0")
	limit := amount("250")
	card, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-1",
		AccountID:    acc.AccountID,
		Status:       "active",
		DailyLimit:   &limit,
	})
	suite.Require().NoError(err)
	suite.Equal("card-1", card.InstrumentID)

	updated, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-1",
		AccountID:    acc.AccountID,
	})
	suite.Require().NoError(err)
	suite.Equal(domain.InstrumentActive, updated.Status)
	suite.True(limit.Equal(updated.DailyLimit))
}

func (suite *LedgerServiceTestSuite) TestRegisterInstrument_CannotReviveBlockedCard() {
	acc := suite.openAccount("USD", "100")
	_, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-1",
		AccountID:    acc.AccountID,
		Status:       "blocked",
	})
	suite.Require().NoError(err)

	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-1",
		AccountID:    acc.AccountID,
		Status:       "active",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = suite.pay(&domain.Instrument{InstrumentID: "card-1"}, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)
	suite.requireBalance(acc.AccountID, "100")

	// Staying blocked is not a transition.
	limit := amount("50")
	blocked, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-1",
		AccountID:    acc.AccountID,
		Status:       "blocked",
		DailyLimit:   &limit,
	})
	suite.Require().NoError(err)
	suite.Equal(domain.InstrumentBlocked, blocked.Status)
}

func (suite *LedgerServiceTestSuite) TestRegisterInstrument_CannotReviveExpiredCard() {
	acc := suite.openAccount("USD", "100")
	later := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)

	_, err := suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-expired",
		AccountID:    acc.AccountID,
		Status:       "expired",
	})
	suite.Require().NoError(err)
	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-expired",
		AccountID:    acc.AccountID,
		Status:       "active",
	})
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	// Active in storage but past its expiry date.
	past := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-lapsed",
		AccountID:    acc.AccountID,
		Status:       "active",
		ExpiresAt:    &past,
	})
	suite.Require().NoError(err)
	_, err = suite.container.Provisioning.RegisterInstrument(suite.ctx, dto.RegisterInstrumentRequest{
		InstrumentID: "card-lapsed",
		AccountID:    acc.AccountID,
		ExpiresAt:    &later,
	})
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, "card-lapsed", domain.InstrumentActive)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = suite.pay(&domain.Instrument{InstrumentID: "card-lapsed"}, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)
	suite.requireBalance(acc.AccountID, "100")
}

func (suite *LedgerServiceTestSuite) TestChangeInstrumentStatus_Transitions() {
	acc := suite.openAccount("USD", "100")
	card := suite.registerCard(acc, domain.InstrumentInactive, "1000")

	_, err := suite.pay(card, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)

	active, err := suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, card.InstrumentID, domain.InstrumentActive)
	suite.Require().NoError(err)
	suite.Equal(domain.InstrumentActive, active.Status)
	_, err = suite.pay(card, "10")
	suite.Require().NoError(err)

	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, card.InstrumentID, domain.InstrumentInactive)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, card.InstrumentID, domain.InstrumentBlocked)
	suite.Require().NoError(err)
	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, card.InstrumentID, domain.InstrumentActive)
	suite.ErrorIs(err, apperrors.ErrInvalidTransition)
	_, err = suite.pay(card, "10")
	suite.ErrorIs(err, apperrors.ErrInstrumentNotActive)
	suite.requireBalance(acc.AccountID, "90")

	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, card.InstrumentID, domain.InstrumentStatus("lost"))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.container.Provisioning.ChangeInstrumentStatus(suite.ctx, "missing", domain.InstrumentBlocked)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestUpdateDailyLimit() {
	acc := suite.openAccount("USD", "500")
	card := suite.registerCard(acc, domain.InstrumentActive, "1000")
	_, err := suite.pay(card, "40")
	suite.Require().NoError(err)

	updated, err := suite.container.Provisioning.UpdateDailyLimit(suite.ctx, card.InstrumentID, amount("50"))
	suite.Require().NoError(err)
	suite.True(amount("50").Equal(updated.DailyLimit))
	suite.Equal(domain.InstrumentActive, updated.Status)

	spend, err := suite.ledger.DailySpending(suite.ctx, card.InstrumentID)
	suite.Require().NoError(err)
	suite.True(amount("10").Equal(spend.Remaining))
	_, err = suite.pay(card, "10.01")
	suite.ErrorIs(err, apperrors.ErrLimitExceeded)

	_, err = suite.container.Provisioning.UpdateDailyLimit(suite.ctx, card.InstrumentID, amount("-1"))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.container.Provisioning.UpdateDailyLimit(suite.ctx, card.InstrumentID, amount("0.001"))
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = suite.container.Provisioning.UpdateDailyLimit(suite.ctx, "missing", amount("10"))
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

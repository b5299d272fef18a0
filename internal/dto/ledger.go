package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest moves funds from an account (by id) to another (by number).
type TransferRequest struct {
	SourceAccountID          string          `json:"sourceAccountID" validate:"required"`
	DestinationAccountNumber string          `json:"destinationAccountNumber" validate:"required,len=12,numeric"`
	Amount                   decimal.Decimal `json:"amount"`
	CurrencyCode             string          `json:"currencyCode" validate:"required,len=3,alpha"`
	Description              string          `json:"description" validate:"max=255"` // Optional, defaults to "Transfer to <number>"
}

// MovementRequest drives a single-account movement: deposit, withdrawal or fee.
type MovementRequest struct {
	AccountID    string          `json:"accountID" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode" validate:"required,len=3,alpha"`
	Description  string          `json:"description" validate:"max=255"`
}

// CardPaymentRequest debits the account bound to an instrument.
type CardPaymentRequest struct {
	InstrumentID string          `json:"instrumentID" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode" validate:"omitempty,len=3,alpha"` // Optional, defaults to the account currency
	MerchantName string          `json:"merchantName" validate:"max=255"`
	Description  string          `json:"description" validate:"max=255"`
}

// OpenAccountRequest seeds a new account, optionally with an initial deposit.
type OpenAccountRequest struct {
	AccountNumber  string           `json:"accountNumber" validate:"omitempty,len=12,numeric"` // Generated when empty
	HolderID       string           `json:"holderID" validate:"required"`
	CurrencyCode   string           `json:"currencyCode" validate:"required,len=3,alpha"`
	InitialDeposit *decimal.Decimal `json:"initialDeposit,omitempty"`
}

// RegisterInstrumentRequest seeds card metadata for an account.
type RegisterInstrumentRequest struct {
	InstrumentID string           `json:"instrumentID"` // Generated when empty
	AccountID    string           `json:"accountID" validate:"required"`
	Status       string           `json:"status" validate:"omitempty,oneof=inactive active blocked expired"`
	DailyLimit   *decimal.Decimal `json:"dailyLimit,omitempty"` // Defaults to 1000.00
	ExpiresAt    *time.Time       `json:"expiresAt,omitempty"`
}

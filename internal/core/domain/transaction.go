package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the kind of balance movement a transaction records.
type TransactionType string

const (
	TransactionTransfer    TransactionType = "transfer"
	TransactionDeposit     TransactionType = "deposit"
	TransactionWithdrawal  TransactionType = "withdrawal"
	TransactionCardPayment TransactionType = "card_payment"
	TransactionFee         TransactionType = "fee"
)

// ParseTransactionType converts a stored or user-supplied value into a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(s); t {
	case TransactionTransfer, TransactionDeposit, TransactionWithdrawal, TransactionCardPayment, TransactionFee:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// ReferencePrefix is the prefix used for reference numbers of this type.
func (t TransactionType) ReferencePrefix() string {
	switch t {
	case TransactionDeposit:
		return "DEP"
	case TransactionTransfer, TransactionWithdrawal, TransactionCardPayment, TransactionFee:
		return "TXN"
	default:
		return "TXN"
	}
}

// TransactionStatus is the lifecycle state of a transaction.
type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionReversed  TransactionStatus = "reversed"
)

// ParseTransactionStatus converts a stored value into a TransactionStatus.
func ParseTransactionStatus(s string) (TransactionStatus, error) {
	switch st := TransactionStatus(s); st {
	case TransactionPending, TransactionCompleted, TransactionFailed, TransactionReversed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown transaction status %q", s)
	}
}

// CanTransitionTo reports whether a transaction may move from s to next.
// A transaction never returns to pending.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TransactionPending:
		return next == TransactionCompleted || next == TransactionFailed
	case TransactionCompleted:
		return next == TransactionReversed
	case TransactionFailed, TransactionReversed:
		return false
	default:
		return false
	}
}

// Transaction is an append-only record of one balance movement.
// Only Status and CompletedAt change after insertion.
type Transaction struct {
	TransactionID        string            `json:"transactionID"`                  // Primary Key (UUID)
	Type                 TransactionType   `json:"type"`                           // Not Null
	SourceAccountID      *string           `json:"sourceAccountID,omitempty"`      // Debited account, nil for deposits
	DestinationAccountID *string           `json:"destinationAccountID,omitempty"` // Credited account, nil for outflows
	InstrumentID         *string           `json:"instrumentID,omitempty"`         // Card payments only
	Amount               decimal.Decimal   `json:"amount"`                         // Always positive
	CurrencyCode         string            `json:"currencyCode"`
	Status               TransactionStatus `json:"status"`
	Description          string            `json:"description"`
	MerchantName         string            `json:"merchantName,omitempty"`
	ReferenceNumber      string            `json:"referenceNumber"` // Unique
	ReversalOfID         *string           `json:"reversalOfID,omitempty"`
	CreatedAt            time.Time         `json:"createdAt"`
	CompletedAt          *time.Time        `json:"completedAt,omitempty"`
}

// IsReversal reports whether this transaction compensates an earlier one.
func (t Transaction) IsReversal() bool {
	return t.ReversalOfID != nil
}

// Involves reports whether accountID is the source or destination.
func (t Transaction) Involves(accountID string) bool {
	return (t.SourceAccountID != nil && *t.SourceAccountID == accountID) ||
		(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
}

// Validate checks the structural rules every stored transaction obeys.
func (t Transaction) Validate() error {
	if !t.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if t.ReferenceNumber == "" {
		return errors.New("reference number is required")
	}
	if t.CurrencyCode == "" {
		return errors.New("currency code is required")
	}

	hasSrc, hasDst := t.SourceAccountID != nil, t.DestinationAccountID != nil
	switch t.Type {
	case TransactionTransfer:
		if !hasSrc || !hasDst {
			return errors.New("transfer requires source and destination accounts")
		}
		if *t.SourceAccountID == *t.DestinationAccountID {
			return errors.New("transfer source and destination must differ")
		}
	case TransactionDeposit:
		if hasSrc || !hasDst {
			return errors.New("deposit requires only a destination account")
		}
	case TransactionWithdrawal, TransactionFee:
		if !hasSrc || hasDst {
			return fmt.Errorf("%s requires only a source account", t.Type)
		}
	case TransactionCardPayment:
		if !hasSrc || hasDst {
			return errors.New("card payment requires only a source account")
		}
		if t.InstrumentID == nil {
			return errors.New("card payment requires an instrument")
		}
	default:
		return fmt.Errorf("unknown transaction type %q", t.Type)
	}

	if t.Status == TransactionCompleted && t.CompletedAt == nil {
		return errors.New("completed transaction requires completion time")
	}
	return nil
}

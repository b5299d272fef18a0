package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountFrozen AccountStatus = "frozen"
	AccountClosed AccountStatus = "closed"
)

// ParseAccountStatus converts a stored or user-supplied value into an AccountStatus.
func ParseAccountStatus(s string) (AccountStatus, error) {
	switch st := AccountStatus(s); st {
	case AccountActive, AccountFrozen, AccountClosed:
		return st, nil
	default:
		return "", fmt.Errorf("unknown account status %q", s)
	}
}

// CanTransitionTo reports whether the account may move from s to next.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	switch s {
	case AccountActive:
		return next == AccountFrozen || next == AccountClosed
	case AccountFrozen:
		return next == AccountActive || next == AccountClosed
	case AccountClosed:
		return false
	default:
		return false
	}
}

// PermitsDebit reports whether funds may leave an account in this status.
func (s AccountStatus) PermitsDebit() bool {
	switch s {
	case AccountActive:
		return true
	case AccountFrozen, AccountClosed:
		return false
	default:
		return false
	}
}

// PermitsCredit reports whether funds may enter an account in this status.
// Frozen accounts still receive credits; closed accounts receive nothing.
func (s AccountStatus) PermitsCredit() bool {
	switch s {
	case AccountActive, AccountFrozen:
		return true
	case AccountClosed:
		return false
	default:
		return false
	}
}

// Account is the ledger state of a single account.
type Account struct {
	AccountID     string          `json:"accountID"`     // Primary Key (UUID)
	AccountNumber string          `json:"accountNumber"` // Unique, human-presentable
	HolderID      string          `json:"holderID"`      // Owning account holder, opaque here
	CurrencyCode  string          `json:"currencyCode"`
	Balance       decimal.Decimal `json:"balance"`
	Status        AccountStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// BalanceMoney returns the balance as a Money value.
func (a Account) BalanceMoney() Money {
	return NewMoney(a.Balance, a.CurrencyCode)
}

// Debit subtracts amount from the balance. It never lets an account go negative.
func (a *Account) Debit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return fmt.Errorf("account %s balance %s below %s", a.AccountID, a.Balance.StringFixed(MoneyScale), amount.StringFixed(MoneyScale))
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

// Credit adds amount to the balance.
func (a *Account) Credit(amount decimal.Decimal) {
	a.Balance = a.Balance.Add(amount)
}

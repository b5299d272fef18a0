package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits amounts are displayed with.
const MoneyScale = 2

// Money is an exact decimal amount in a single currency.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// NewMoney creates a Money value. The currency code is upper-cased.
func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{Amount: amount, CurrencyCode: strings.ToUpper(currencyCode)}
}

// ParseMoney parses a decimal string such as "100.00".
func ParseMoney(amount string, currencyCode string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return NewMoney(d, currencyCode), nil
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// SameCurrency reports whether both values share a currency.
func (m Money) SameCurrency(other Money) bool {
	return m.CurrencyCode == other.CurrencyCode
}

// Add returns m + other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("currency mismatch: cannot add %s to %s", other.CurrencyCode, m.CurrencyCode)
	}
	return Money{Amount: m.Amount.Add(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Sub returns m - other. Both must share a currency. The result may be negative;
// callers enforce their own floor.
func (m Money) Sub(other Money) (Money, error) {
	if !m.SameCurrency(other) {
		return Money{}, fmt.Errorf("currency mismatch: cannot subtract %s from %s", other.CurrencyCode, m.CurrencyCode)
	}
	return Money{Amount: m.Amount.Sub(other.Amount), CurrencyCode: m.CurrencyCode}, nil
}

// Covers reports whether m is at least other.
func (m Money) Covers(other Money) bool {
	return m.SameCurrency(other) && m.Amount.GreaterThanOrEqual(other.Amount)
}

func (m Money) String() string {
	return m.Amount.StringFixed(MoneyScale) + " " + m.CurrencyCode
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// HistoryFilter narrows a history query. Zero values mean "no bound".
// All bounds are inclusive and combine conjunctively.
type HistoryFilter struct {
	From      *time.Time
	To        *time.Time
	Type      *TransactionType
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// Matches reports whether tx satisfies every bound of the filter.
func (f HistoryFilter) Matches(tx Transaction) bool {
	if f.From != nil && tx.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && tx.CreatedAt.After(*f.To) {
		return false
	}
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if f.MinAmount != nil && tx.Amount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && tx.Amount.GreaterThan(*f.MaxAmount) {
		return false
	}
	return true
}

// Page selects a slice of history. Cursor takes precedence over Offset.
type Page struct {
	Limit  int
	Offset int
	Cursor string
}

// HistoryCursor is the decoded position after which the next page starts.
type HistoryCursor struct {
	CreatedAt     time.Time
	TransactionID string
}

// HistoryQuery is a normalized page request handed to the stores.
type HistoryQuery struct {
	Limit  int
	Offset int
	After  *HistoryCursor
}

// HistoryPage is one page of transactions, newest first.
type HistoryPage struct {
	Transactions []Transaction `json:"transactions"`
	NextCursor   string        `json:"nextCursor,omitempty"`
}

// Authorization is the outcome of a spend-limit check.
type Authorization struct {
	Approved   bool            `json:"approved"`
	Reason     string          `json:"reason,omitempty"`
	SpentToday decimal.Decimal `json:"spentToday"`
	Limit      decimal.Decimal `json:"limit"`
	Remaining  decimal.Decimal `json:"remaining"`
}

// Authorization decline reasons.
const (
	DeclineInstrumentNotActive = "InstrumentNotActive"
	DeclineInvalidAmount       = "InvalidAmount"
	DeclineLimitExceeded       = "LimitExceeded"
)

// DailySpend reports an instrument's spend window for one UTC day.
type DailySpend struct {
	Date      string          `json:"date"`
	Limit     decimal.Decimal `json:"limit"`
	Spent     decimal.Decimal `json:"spent"`
	Remaining decimal.Decimal `json:"remaining"`
}

// SpendWindow returns the UTC calendar day containing t as [start, end).
func SpendWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// Remaining returns limit minus spent, floored at zero.
func Remaining(limit, spent decimal.Decimal) decimal.Decimal {
	r := limit.Sub(spent)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

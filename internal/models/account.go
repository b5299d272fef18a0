package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is the persisted row of the accounts table.
type Account struct {
	AccountID     string          `db:"account_id"`
	AccountNumber string          `db:"account_number"`
	HolderID      string          `db:"holder_id"`
	CurrencyCode  string          `db:"currency_code"`
	Balance       decimal.Decimal `db:"balance"` // NUMERIC(19,4) in PostgreSQL, canonical TEXT in SQLite
	Status        string          `db:"status"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

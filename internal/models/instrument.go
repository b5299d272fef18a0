package models

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// Instrument is the persisted row of the instruments table.
type Instrument struct {
	InstrumentID string          `db:"instrument_id"`
	AccountID    string          `db:"account_id"`
	Status       string          `db:"status"`
	DailyLimit   decimal.Decimal `db:"daily_limit"`
	ExpiresAt    sql.NullTime    `db:"expires_at"`
}

package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the persisted row of the append-only transactions table.
type Transaction struct {
	TransactionID        string          `db:"transaction_id"`
	TransactionType      string          `db:"transaction_type"`
	SourceAccountID      sql.NullString  `db:"source_account_id"`
	DestinationAccountID sql.NullString  `db:"destination_account_id"`
	InstrumentID         sql.NullString  `db:"instrument_id"`
	Amount               decimal.Decimal `db:"amount"`
	CurrencyCode         string          `db:"currency_code"`
	Status               string          `db:"status"`
	Description          string          `db:"description"`
	MerchantName         sql.NullString  `db:"merchant_name"`
	ReferenceNumber      string          `db:"reference_number"`
	ReversalOfID         sql.NullString  `db:"reversal_of_id"`
	CreatedAt            time.Time       `db:"created_at"`
	CompletedAt          sql.NullTime    `db:"completed_at"`
}

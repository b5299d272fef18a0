package services

import (
	"context"
	"iter"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/shopspring/decimal"
)

// TransferSvc moves funds between two accounts.
type TransferSvc interface {
	Transfer(ctx context.Context, req dto.TransferRequest) (*domain.Transaction, error)
}

// ReversalSvc compensates a completed transfer.
type ReversalSvc interface {
	Reverse(ctx context.Context, transactionID string) (*domain.Transaction, error)
}

// CardPaymentSvc guards and executes card payments.
type CardPaymentSvc interface {
	// Authorize is a read-only decision against an explicit limit. No hold is taken.
	Authorize(ctx context.Context, instrumentID string, amount decimal.Decimal, limit decimal.Decimal) (*domain.Authorization, error)

	// PayWithCard re-checks the limit under the account hold and debits.
	PayWithCard(ctx context.Context, req dto.CardPaymentRequest) (*domain.Transaction, error)

	// DailySpending reports today's UTC spend window.
	DailySpending(ctx context.Context, instrumentID string) (*domain.DailySpend, error)
}

// MovementSvc applies single-account movements and status changes.
type MovementSvc interface {
	Deposit(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error)
	Withdraw(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error)
	ChargeFee(ctx context.Context, req dto.MovementRequest) (*domain.Transaction, error)
	ChangeAccountStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error)
}

// LedgerReaderSvc exposes lookups and history. Reads never block on holds and may
// observe a balance that is about to change.
type LedgerReaderSvc interface {
	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetBalance(ctx context.Context, accountID string) (*domain.Money, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// History returns one page of transactions touching the account, newest first.
	History(ctx context.Context, accountID string, filter domain.HistoryFilter, page domain.Page) (*domain.HistoryPage, error)

	// HistorySeq walks every matching transaction, fetching pageSize rows at a time.
	HistorySeq(ctx context.Context, accountID string, filter domain.HistoryFilter, pageSize int) iter.Seq2[domain.Transaction, error]
}

// LedgerEngine is the full inbound capability surface. Identifiers passed in are
// trusted; the engine performs no identity or ownership checks.
type LedgerEngine interface {
	TransferSvc
	ReversalSvc
	CardPaymentSvc
	MovementSvc
	LedgerReaderSvc
}

// ProvisioningSvc seeds accounts and instruments for the operator CLI and tests.
type ProvisioningSvc interface {
	OpenAccount(ctx context.Context, req dto.OpenAccountRequest) (*domain.Account, error)

	// RegisterInstrument creates or updates card metadata. Updating an existing
	// card may not move it against the instrument status table.
	RegisterInstrument(ctx context.Context, req dto.RegisterInstrumentRequest) (*domain.Instrument, error)

	ChangeInstrumentStatus(ctx context.Context, instrumentID string, status domain.InstrumentStatus) (*domain.Instrument, error)
	UpdateDailyLimit(ctx context.Context, instrumentID string, limit decimal.Decimal) (*domain.Instrument, error)
}

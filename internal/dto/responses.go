package dto

import (
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Amount renders money at the ledger's fixed scale, so 900 prints as "900.00".
type Amount string

// ToAmount formats d with domain.MoneyScale decimal places.
func ToAmount(d decimal.Decimal) Amount {
	return Amount(d.StringFixed(domain.MoneyScale))
}

// AccountResponse defines the data returned for an account.
// Mirrors domain.Account.
type AccountResponse struct {
	AccountID     string               `json:"accountID"`
	AccountNumber string               `json:"accountNumber"`
	HolderID      string               `json:"holderID"`
	CurrencyCode  string               `json:"currencyCode"`
	Balance       Amount               `json:"balance"`
	Status        domain.AccountStatus `json:"status"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		AccountNumber: acc.AccountNumber,
		HolderID:      acc.HolderID,
		CurrencyCode:  acc.CurrencyCode,
		Balance:       ToAmount(acc.Balance),
		Status:        acc.Status,
		CreatedAt:     acc.CreatedAt,
		UpdatedAt:     acc.UpdatedAt,
	}
}

// MoneyResponse is an amount with its currency.
type MoneyResponse struct {
	Amount       Amount `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

func ToMoneyResponse(m *domain.Money) MoneyResponse {
	return MoneyResponse{Amount: ToAmount(m.Amount), CurrencyCode: m.CurrencyCode}
}

// TransactionResponse defines the data returned for a transaction.
// Mirrors domain.Transaction.
type TransactionResponse struct {
	TransactionID        string                   `json:"transactionID"`
	Type                 domain.TransactionType   `json:"type"`
	SourceAccountID      *string                  `json:"sourceAccountID,omitempty"`
	DestinationAccountID *string                  `json:"destinationAccountID,omitempty"`
	InstrumentID         *string                  `json:"instrumentID,omitempty"`
	Amount               Amount                   `json:"amount"`
	CurrencyCode         string                   `json:"currencyCode"`
	Status               domain.TransactionStatus `json:"status"`
	Description          string                   `json:"description"`
	MerchantName         string                   `json:"merchantName,omitempty"`
	ReferenceNumber      string                   `json:"referenceNumber"`
	ReversalOfID         *string                  `json:"reversalOfID,omitempty"`
	CreatedAt            time.Time                `json:"createdAt"`
	CompletedAt          *time.Time               `json:"completedAt,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:        txn.TransactionID,
		Type:                 txn.Type,
		SourceAccountID:      txn.SourceAccountID,
		DestinationAccountID: txn.DestinationAccountID,
		InstrumentID:         txn.InstrumentID,
		Amount:               ToAmount(txn.Amount),
		CurrencyCode:         txn.CurrencyCode,
		Status:               txn.Status,
		Description:          txn.Description,
		MerchantName:         txn.MerchantName,
		ReferenceNumber:      txn.ReferenceNumber,
		ReversalOfID:         txn.ReversalOfID,
		CreatedAt:            txn.CreatedAt,
		CompletedAt:          txn.CompletedAt,
	}
}

// ToListTransactionResponse converts a slice of domain.Transaction to TransactionResponse DTOs
func ToListTransactionResponse(txns []domain.Transaction) []TransactionResponse {
	res := make([]TransactionResponse, len(txns))
	for i := range txns {
		res[i] = ToTransactionResponse(&txns[i])
	}
	return res
}

// HistoryPageResponse wraps one page of history.
type HistoryPageResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextCursor   string                `json:"nextCursor,omitempty"`
}

func ToHistoryPageResponse(page *domain.HistoryPage) HistoryPageResponse {
	return HistoryPageResponse{
		Transactions: ToListTransactionResponse(page.Transactions),
		NextCursor:   page.NextCursor,
	}
}

// InstrumentResponse defines the data returned for a card.
type InstrumentResponse struct {
	InstrumentID string                  `json:"instrumentID"`
	AccountID    string                  `json:"accountID"`
	Status       domain.InstrumentStatus `json:"status"`
	DailyLimit   Amount                  `json:"dailyLimit"`
	ExpiresAt    *time.Time              `json:"expiresAt,omitempty"`
}

func ToInstrumentResponse(inst *domain.Instrument) InstrumentResponse {
	return InstrumentResponse{
		InstrumentID: inst.InstrumentID,
		AccountID:    inst.AccountID,
		Status:       inst.Status,
		DailyLimit:   ToAmount(inst.DailyLimit),
		ExpiresAt:    inst.ExpiresAt,
	}
}

// AuthorizationResponse is the outcome of a limit check.
type AuthorizationResponse struct {
	Approved   bool   `json:"approved"`
	Reason     string `json:"reason,omitempty"`
	SpentToday Amount `json:"spentToday"`
	Limit      Amount `json:"limit"`
	Remaining  Amount `json:"remaining"`
}

func ToAuthorizationResponse(auth *domain.Authorization) AuthorizationResponse {
	return AuthorizationResponse{
		Approved:   auth.Approved,
		Reason:     auth.Reason,
		SpentToday: ToAmount(auth.SpentToday),
		Limit:      ToAmount(auth.Limit),
		Remaining:  ToAmount(auth.Remaining),
	}
}

// DailySpendResponse reports a card's spend for one UTC day.
type DailySpendResponse struct {
	Date      string `json:"date"`
	Limit     Amount `json:"limit"`
	Spent     Amount `json:"spent"`
	Remaining Amount `json:"remaining"`
}

func ToDailySpendResponse(spend *domain.DailySpend) DailySpendResponse {
	return DailySpendResponse{
		Date:      spend.Date,
		Limit:     ToAmount(spend.Limit),
		Spent:     ToAmount(spend.Spent),
		Remaining: ToAmount(spend.Remaining),
	}
}

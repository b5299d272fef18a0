package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelTransaction converts a domain Transaction to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:        d.TransactionID,
		TransactionType:      string(d.Type),
		SourceAccountID:      toNullString(d.SourceAccountID),
		DestinationAccountID: toNullString(d.DestinationAccountID),
		InstrumentID:         toNullString(d.InstrumentID),
		Amount:               d.Amount,
		CurrencyCode:         d.CurrencyCode,
		Status:               string(d.Status),
		Description:          d.Description,
		MerchantName:         nonEmpty(d.MerchantName),
		ReferenceNumber:      d.ReferenceNumber,
		ReversalOfID:         toNullString(d.ReversalOfID),
		CreatedAt:            d.CreatedAt,
		CompletedAt:          toNullTime(d.CompletedAt),
	}
}

// ToDomainTransaction converts a model Transaction to a domain Transaction
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:        m.TransactionID,
		Type:                 domain.TransactionType(m.TransactionType),
		SourceAccountID:      fromNullString(m.SourceAccountID),
		DestinationAccountID: fromNullString(m.DestinationAccountID),
		InstrumentID:         fromNullString(m.InstrumentID),
		Amount:               m.Amount,
		CurrencyCode:         m.CurrencyCode,
		Status:               domain.TransactionStatus(m.Status),
		Description:          m.Description,
		MerchantName:         m.MerchantName.String,
		ReferenceNumber:      m.ReferenceNumber,
		ReversalOfID:         fromNullString(m.ReversalOfID),
		CreatedAt:            m.CreatedAt.UTC(),
		CompletedAt:          fromNullTime(m.CompletedAt),
	}
}

// ToDomainTransactionSlice converts a slice of model Transactions to a slice of domain Transactions
func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

package mapping

import (
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
)

// ToModelInstrument converts a domain Instrument to a model Instrument
func ToModelInstrument(d domain.Instrument) models.Instrument {
	return models.Instrument{
		InstrumentID: d.InstrumentID,
		AccountID:    d.AccountID,
		Status:       string(d.Status),
		DailyLimit:   d.DailyLimit,
		ExpiresAt:    toNullTime(d.ExpiresAt),
	}
}

// ToDomainInstrument converts a model Instrument to a domain Instrument
func ToDomainInstrument(m models.Instrument) domain.Instrument {
	return domain.Instrument{
		InstrumentID: m.InstrumentID,
		AccountID:    m.AccountID,
		Status:       domain.InstrumentStatus(m.Status),
		DailyLimit:   m.DailyLimit,
		ExpiresAt:    fromNullTime(m.ExpiresAt),
	}
}

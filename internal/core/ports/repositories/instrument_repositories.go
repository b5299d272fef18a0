package repositories

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
)

// InstrumentReader reads card metadata.
type InstrumentReader interface {
	FindInstrumentByID(ctx context.Context, instrumentID string) (*domain.Instrument, error)
}

// InstrumentWriter seeds or replaces card metadata on behalf of the card CRUD collaborator.
type InstrumentWriter interface {
	SaveInstrument(ctx context.Context, instrument domain.Instrument) error
}

// InstrumentRepositoryFacade combines instrument read and write operations.
type InstrumentRepositoryFacade interface {
	InstrumentReader
	InstrumentWriter
}

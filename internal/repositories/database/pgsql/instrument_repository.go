package pgsql

import (
	"context"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxInstrumentRepository struct {
	instrumentReader
	pool *pgxpool.Pool
}

func newPgxInstrumentRepository(pool *pgxpool.Pool) *PgxInstrumentRepository {
	return &PgxInstrumentRepository{instrumentReader: instrumentReader{q: pool}, pool: pool}
}

var _ portsrepo.InstrumentRepositoryFacade = (*PgxInstrumentRepository)(nil)

// SaveInstrument inserts or replaces card metadata.
func (r *PgxInstrumentRepository) SaveInstrument(ctx context.Context, instrument domain.Instrument) error {
	m := mapping.ToModelInstrument(instrument)
	query := `
		INSERT INTO instruments (instrument_id, account_id, status, daily_limit, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (instrument_id) DO UPDATE
		SET account_id = EXCLUDED.account_id,
		    status = EXCLUDED.status,
		    daily_limit = EXCLUDED.daily_limit,
		    expires_at = EXCLUDED.expires_at;
	`
	_, err := r.pool.Exec(ctx, query, m.InstrumentID, m.AccountID, m.Status, m.DailyLimit, m.ExpiresAt)
	return mapError(err, "failed to save instrument %s", m.InstrumentID)
}

// instrumentReader reads instruments through the pool or a unit's transaction.
type instrumentReader struct {
	q querier
}

func (r instrumentReader) FindInstrumentByID(ctx context.Context, instrumentID string) (*domain.Instrument, error) {
	var m models.Instrument
	err := r.q.QueryRow(ctx,
		`SELECT instrument_id, account_id, status, daily_limit, expires_at FROM instruments WHERE instrument_id = $1`,
		instrumentID,
	).Scan(&m.InstrumentID, &m.AccountID, &m.Status, &m.DailyLimit, &m.ExpiresAt)
	if err != nil {
		return nil, mapError(err, "instrument %s", instrumentID)
	}
	inst := mapping.ToDomainInstrument(m)
	return &inst, nil
}

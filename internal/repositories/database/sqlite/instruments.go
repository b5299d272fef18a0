package sqlite

import (
	"context"
	"database/sql"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/SscSPs/ledger_engine/internal/models"
	"github.com/SscSPs/ledger_engine/internal/utils/mapping"
)

// =============================================================================
// INSTRUMENTS
// =============================================================================

// SaveInstrument inserts or replaces card metadata.
func (s *Store) SaveInstrument(ctx context.Context, instrument domain.Instrument) error {
	m := mapping.ToModelInstrument(instrument)
	var expiresAt sql.NullString
	if m.ExpiresAt.Valid {
		expiresAt = sql.NullString{String: formatTime(m.ExpiresAt.Time), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO instruments (instrument_id, account_id, status, daily_limit, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (instrument_id) DO UPDATE
		SET account_id = excluded.account_id,
		    status = excluded.status,
		    daily_limit = excluded.daily_limit,
		    expires_at = excluded.expires_at`,
		m.InstrumentID, m.AccountID, m.Status, formatAmount(m.DailyLimit), expiresAt,
	)
	return mapError(err, "failed to save instrument %s", m.InstrumentID)
}

func (s *Store) FindInstrumentByID(ctx context.Context, instrumentID string) (*domain.Instrument, error) {
	return instrumentReader{q: s.db}.FindInstrumentByID(ctx, instrumentID)
}

type instrumentReader struct {
	q querier
}

func (r instrumentReader) FindInstrumentByID(ctx context.Context, instrumentID string) (*domain.Instrument, error) {
	var (
		m         models.Instrument
		expiresAt sql.NullString
	)
	err := r.q.QueryRowContext(ctx,
		`SELECT instrument_id, account_id, status, daily_limit, expires_at FROM instruments WHERE instrument_id = ?`,
		instrumentID,
	).Scan(&m.InstrumentID, &m.AccountID, &m.Status, &m.DailyLimit, &expiresAt)
	if err != nil {
		return nil, mapError(err, "instrument %s", instrumentID)
	}
	if m.ExpiresAt, err = parseNullTime(expiresAt); err != nil {
		return nil, mapError(err, "instrument %s expires_at", instrumentID)
	}
	inst := mapping.ToDomainInstrument(m)
	return &inst, nil
}

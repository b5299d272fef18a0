package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentStatus_Transitions(t *testing.T) {
	assert.True(t, domain.InstrumentInactive.CanTransitionTo(domain.InstrumentActive))
	assert.True(t, domain.InstrumentInactive.CanTransitionTo(domain.InstrumentBlocked))
	assert.True(t, domain.InstrumentInactive.CanTransitionTo(domain.InstrumentExpired))
	assert.True(t, domain.InstrumentActive.CanTransitionTo(domain.InstrumentBlocked))
	assert.True(t, domain.InstrumentActive.CanTransitionTo(domain.InstrumentExpired))
	assert.False(t, domain.InstrumentActive.CanTransitionTo(domain.InstrumentInactive))
	assert.False(t, domain.InstrumentBlocked.CanTransitionTo(domain.InstrumentActive))
	assert.False(t, domain.InstrumentExpired.CanTransitionTo(domain.InstrumentActive))
}

func TestInstrument_EffectiveStatus(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	card := domain.Instrument{Status: domain.InstrumentActive, ExpiresAt: &future}
	assert.True(t, card.CanSpend(now))

	card.ExpiresAt = &past
	assert.Equal(t, domain.InstrumentExpired, card.EffectiveStatus(now))
	assert.False(t, card.CanSpend(now))

	blocked := domain.Instrument{Status: domain.InstrumentBlocked, ExpiresAt: &past}
	assert.Equal(t, domain.InstrumentBlocked, blocked.EffectiveStatus(now))
}

func TestSpendWindow_UTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	at := time.Date(2024, 5, 2, 3, 0, 0, 0, loc) // 2024-05-01 18:00 UTC

	start, end := domain.SpendWindow(at)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), end)
}

func TestRemaining_FloorsAtZero(t *testing.T) {
	limit := decimal.RequireFromString("100")
	assert.True(t, domain.Remaining(limit, decimal.RequireFromString("40")).Equal(decimal.RequireFromString("60")))
	assert.True(t, domain.Remaining(limit, decimal.RequireFromString("140")).IsZero())
}

func TestHistoryFilter_Matches(t *testing.T) {
	day := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tx := domain.Transaction{Type: domain.TransactionFee, Amount: decimal.RequireFromString("5.00"), CreatedAt: day}

	min := decimal.RequireFromString("5.00")
	max := decimal.RequireFromString("5.00")
	fee := domain.TransactionFee
	transfer := domain.TransactionTransfer

	assert.True(t, domain.HistoryFilter{}.Matches(tx))
	assert.True(t, domain.HistoryFilter{From: &day, To: &day, MinAmount: &min, MaxAmount: &max, Type: &fee}.Matches(tx))
	assert.False(t, domain.HistoryFilter{Type: &transfer}.Matches(tx))

	later := day.Add(time.Second)
	assert.False(t, domain.HistoryFilter{From: &later}.Matches(tx))
}

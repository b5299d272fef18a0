package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDailyLimit applies to instruments created without an explicit limit.
var DefaultDailyLimit = decimal.RequireFromString("1000.00")

// InstrumentStatus is the lifecycle state of a spending instrument.
type InstrumentStatus string

const (
	InstrumentInactive InstrumentStatus = "inactive"
	InstrumentActive   InstrumentStatus = "active"
	InstrumentBlocked  InstrumentStatus = "blocked"
	InstrumentExpired  InstrumentStatus = "expired"
)

// ParseInstrumentStatus converts a stored value into an InstrumentStatus.
func ParseInstrumentStatus(s string) (InstrumentStatus, error) {
	switch st := InstrumentStatus(s); st {
	case InstrumentInactive, InstrumentActive, InstrumentBlocked, InstrumentExpired:
		return st, nil
	default:
		return "", fmt.Errorf("unknown instrument status %q", s)
	}
}

// CanTransitionTo reports whether an instrument may move from s to next.
func (s InstrumentStatus) CanTransitionTo(next InstrumentStatus) bool {
	switch s {
	case InstrumentInactive:
		return next == InstrumentActive || next == InstrumentBlocked || next == InstrumentExpired
	case InstrumentActive:
		return next == InstrumentBlocked || next == InstrumentExpired
	case InstrumentBlocked, InstrumentExpired:
		return false
	default:
		return false
	}
}

// Instrument is a card bound to one account. The engine only reads it.
type Instrument struct {
	InstrumentID string           `json:"instrumentID"`
	AccountID    string           `json:"accountID"`
	Status       InstrumentStatus `json:"status"`
	DailyLimit   decimal.Decimal  `json:"dailyLimit"`
	ExpiresAt    *time.Time       `json:"expiresAt,omitempty"`
}

// EffectiveStatus returns the status after applying expiry at the given time.
func (i Instrument) EffectiveStatus(now time.Time) InstrumentStatus {
	if i.ExpiresAt != nil && !now.Before(*i.ExpiresAt) && i.Status != InstrumentBlocked {
		return InstrumentExpired
	}
	return i.Status
}

// CanSpend reports whether the instrument may authorize payments at now.
func (i Instrument) CanSpend(now time.Time) bool {
	return i.EffectiveStatus(now) == InstrumentActive
}

package services

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/SscSPs/ledger_engine/internal/core/domain"
	"github.com/google/uuid"
)

// ReferenceGenerator produces human-readable reference numbers for new transactions.
// Uniqueness is enforced by the store; a collision makes the engine retry the whole unit.
type ReferenceGenerator interface {
	Next(txType domain.TransactionType, at time.Time) string
}

type randomReferenceGenerator struct{}

// NewReferenceGenerator returns the default generator: <PREFIX>-<yyyymmddHHMMSS>-<6 digits>.
func NewReferenceGenerator() ReferenceGenerator {
	return randomReferenceGenerator{}
}

func (randomReferenceGenerator) Next(txType domain.TransactionType, at time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", txType.ReferencePrefix(), at.UTC().Format("20060102150405"), randomDigits(1_000_000))
}

// NewAccountNumber returns a random 12 digit account number.
func NewAccountNumber() string {
	return fmt.Sprintf("%012d", randomDigits(1_000_000_000_000))
}

func randomDigits(bound uint64) uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8]) % bound
}

func newID() string {
	return uuid.NewString()
}

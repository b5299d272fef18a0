package services

import (
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_engine/internal/core/ports/services"
)

// NewContainer creates a new service container with properly initialized dependencies
func NewContainer(repos portsrepo.RepositoryProvider, options ...ServiceOption) *portssvc.ServiceContainer {
	ledger := newLedgerService(repos, options...)

	return &portssvc.ServiceContainer{
		Ledger:       ledger,
		Provisioning: newAccountService(repos, ledger),
	}
}

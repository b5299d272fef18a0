package services

// ServiceContainer holds instances of all the application services.
// It is the entry point the CLI commands resolve services from.
type ServiceContainer struct {
	Ledger       LedgerEngine
	Provisioning ProvisioningSvc
}

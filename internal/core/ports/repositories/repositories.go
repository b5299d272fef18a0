package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Each store adapter builds one from its own connection.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionReader
	InstrumentRepo  InstrumentRepositoryFacade
	TxManager       TransactionManager
}

package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_engine/internal/apperrors"
	"github.com/SscSPs/ledger_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_engine/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_engine/internal/core/services"
	"github.com/SscSPs/ledger_engine/internal/dto"
	"github.com/SscSPs/ledger_engine/internal/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock ReferenceGenerator ---
type MockReferenceGenerator struct {
	mock.Mock
}

var _ services.ReferenceGenerator = (*MockReferenceGenerator)(nil)

func (m *MockReferenceGenerator) Next(txType domain.TransactionType, at time.Time) string {
	args := m.Called(txType, at)
	return args.String(0)
}

// --- Mock TransactionManager ---
type MockTransactionManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTransactionManager)(nil)

func (m *MockTransactionManager) RunInUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	args := m.Called(ctx, fn)
	return args.Error(0)
}

func seededStore(t *testing.T) (*memory.Store, domain.Account) {
	t.Helper()
	store := memory.New()
	acc := domain.Account{
		AccountID:     "acc-1",
		AccountNumber: "100000000001",
		HolderID:      "holder-1",
		CurrencyCode:  "USD",
		Status:        domain.AccountActive,
	}
	require.NoError(t, store.CreateAccount(context.Background(), acc))
	return store, acc
}

func TestReferenceGenerator_Format(t *testing.T) {
	gen := services.NewReferenceGenerator()
	at := time.Date(2025, time.March, 10, 10, 4, 5, 0, time.FixedZone("CET", 3600))

	assert.Regexp(t, `^DEP-20250310090405-\d{6}$`, gen.Next(domain.TransactionDeposit, at))
	assert.Regexp(t, `^TXN-20250310090405-\d{6}$`, gen.Next(domain.TransactionCardPayment, at))
	assert.Regexp(t, `^\d{12}$`, services.NewAccountNumber())
}

func TestReferenceCollision_ReplaysUnit(t *testing.T) {
	store, acc := seededStore(t)
	gen := new(MockReferenceGenerator)
	gen.On("Next", domain.TransactionDeposit, mock.Anything).Return("DEP-20250310090000-000001").Times(3)
	gen.On("Next", domain.TransactionDeposit, mock.Anything).Return("DEP-20250310090000-000002").Once()
	ledger := services.NewLedgerService(store.Provider(), services.WithReferenceGenerator(gen))
	ctx := context.Background()
	req := dto.MovementRequest{AccountID: acc.AccountID, Amount: decimal.NewFromInt(10), CurrencyCode: "USD"}

	first, err := ledger.Deposit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "DEP-20250310090000-000001", first.ReferenceNumber)

	second, err := ledger.Deposit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "DEP-20250310090000-000002", second.ReferenceNumber)

	balance, err := ledger.GetBalance(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(20).Equal(balance.Amount))
	gen.AssertExpectations(t)
}

func TestReferenceCollision_GivesUpAfterMaxAttempts(t *testing.T) {
	store, acc := seededStore(t)
	gen := new(MockReferenceGenerator)
	gen.On("Next", mock.Anything, mock.Anything).Return("DEP-20250310090000-000001")
	ledger := services.NewLedgerService(store.Provider(),
		services.WithReferenceGenerator(gen),
		services.WithMaxReferenceAttempts(2))
	ctx := context.Background()
	req := dto.MovementRequest{AccountID: acc.AccountID, Amount: decimal.NewFromInt(10), CurrencyCode: "USD"}

	_, err := ledger.Deposit(ctx, req)
	require.NoError(t, err)

	_, err = ledger.Deposit(ctx, req)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "giving up after 2 attempts")
	gen.AssertNumberOfCalls(t, "Next", 3)

	balance, err := ledger.GetBalance(ctx, acc.AccountID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(balance.Amount))
}

func TestBusyIsReturnedWithoutReplay(t *testing.T) {
	store, acc := seededStore(t)
	txManager := new(MockTransactionManager)
	busy := apperrors.NewAppError(apperrors.ErrBusy, "waited for account:acc-1", nil)
	txManager.On("RunInUnit", mock.Anything, mock.Anything).Return(busy).Once()

	repos := store.Provider()
	repos.TxManager = txManager
	ledger := services.NewLedgerService(repos)

	_, err := ledger.Withdraw(context.Background(), dto.MovementRequest{AccountID: acc.AccountID, Amount: decimal.NewFromInt(1), CurrencyCode: "USD"})

	assert.ErrorIs(t, err, apperrors.ErrBusy)
	assert.True(t, apperrors.IsRetryable(err))
	txManager.AssertNumberOfCalls(t, "RunInUnit", 1)
}

// staleInstrumentRepo serves a binding that is out of date by the time the unit runs.
type staleInstrumentRepo struct {
	portsrepo.InstrumentRepositoryFacade
	accountID string
}

func (r staleInstrumentRepo) FindInstrumentByID(ctx context.Context, instrumentID string) (*domain.Instrument, error) {
	inst, err := r.InstrumentRepositoryFacade.FindInstrumentByID(ctx, instrumentID)
	if err != nil {
		return nil, err
	}
	inst.AccountID = r.accountID
	return inst, nil
}

// countingTxManager records how many units were started.
type countingTxManager struct {
	portsrepo.TransactionManager
	calls int
}

func (m *countingTxManager) RunInUnit(ctx context.Context, fn portsrepo.UnitFunc) error {
	m.calls++
	return m.TransactionManager.RunInUnit(ctx, fn)
}

func TestPayWithCard_MovedInstrumentIsBusyWithoutReplay(t *testing.T) {
	store, stale := seededStore(t)
	ctx := context.Background()
	current := domain.Account{
		AccountID:     "acc-2",
		AccountNumber: "100000000002",
		HolderID:      "holder-1",
		CurrencyCode:  "USD",
		Balance:       decimal.NewFromInt(100),
		Status:        domain.AccountActive,
	}
	require.NoError(t, store.CreateAccount(ctx, current))
	require.NoError(t, store.SaveInstrument(ctx, domain.Instrument{
		InstrumentID: "card-1",
		AccountID:    current.AccountID,
		Status:       domain.InstrumentActive,
		DailyLimit:   domain.DefaultDailyLimit,
	}))

	repos := store.Provider()
	repos.InstrumentRepo = staleInstrumentRepo{InstrumentRepositoryFacade: repos.InstrumentRepo, accountID: stale.AccountID}
	txManager := &countingTxManager{TransactionManager: repos.TxManager}
	repos.TxManager = txManager
	ledger := services.NewLedgerService(repos)

	_, err := ledger.PayWithCard(ctx, dto.CardPaymentRequest{InstrumentID: "card-1", Amount: decimal.NewFromInt(10)})

	assert.ErrorIs(t, err, apperrors.ErrBusy)
	assert.True(t, apperrors.IsRetryable(err))
	assert.NotContains(t, err.Error(), "giving up")
	assert.Equal(t, 1, txManager.calls)

	balance, err := ledger.GetBalance(ctx, current.AccountID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(100).Equal(balance.Amount))
}

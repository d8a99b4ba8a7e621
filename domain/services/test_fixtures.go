package services

import (
	"context"
	"testing"
	"time"

	"betpool/config"
	"betpool/domain/interfaces"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// ServiceTestFixture provides a complete test environment for service tests
type ServiceTestFixture struct {
	T          *testing.T
	Ctx        context.Context
	Config     *config.Config
	Users      interfaces.UserService
	Wallets    interfaces.WalletService
	Bets       interfaces.BetService
	Resolution interfaces.ResolutionService
	Mocks      *TestMocks
	Helper     *MockHelper
}

// NewServiceTestFixture creates a new test fixture with all dependencies configured.
// Every service sees TestNow as the current time.
func NewServiceTestFixture(t *testing.T) *ServiceTestFixture {
	cfg := SetupTestConfig(t)
	f := &ServiceTestFixture{
		T:      t,
		Ctx:    context.Background(),
		Config: cfg,
	}
	f.Reset()
	return f
}

// Reset recreates the mocks and services for reuse in sub-tests
func (f *ServiceTestFixture) Reset() {
	f.Mocks = NewTestMocks()
	f.Helper = NewMockHelper(f.Mocks)

	clock := func() time.Time { return TestNow }

	f.Users = NewUserService(
		f.Mocks.UserRepo,
		f.Mocks.WalletRepo,
		f.Mocks.BalanceHistoryRepo,
		f.Mocks.EventPublisher,
		f.Mocks.Hasher,
		f.Mocks.Tokens,
		decimal.Zero,
	)
	f.Wallets = NewWalletService(
		f.Mocks.WalletRepo,
		f.Mocks.BalanceHistoryRepo,
		f.Mocks.EventPublisher,
	)

	bets := NewBetService(
		f.Mocks.BetRepo,
		f.Mocks.UserRepo,
		f.Mocks.WalletRepo,
		f.Mocks.BalanceHistoryRepo,
		f.Mocks.EventPublisher,
	).(*betService)
	bets.now = clock
	f.Bets = bets

	resolution := NewResolutionService(
		f.Mocks.BetRepo,
		f.Mocks.UserRepo,
		f.Mocks.WalletRepo,
		f.Mocks.BalanceHistoryRepo,
		f.Mocks.EventPublisher,
	).(*resolutionService)
	resolution.now = clock
	f.Resolution = resolution
}

// WithScenario registers the scenario users as active accounts
func (f *ServiceTestFixture) WithScenario(scenario *BetScenario) *ServiceTestFixture {
	for _, user := range scenario.Users {
		f.Mocks.UserRepo.On("GetByID", mock.Anything, user.ID).Return(user, nil).Maybe()
	}
	return f
}

// AssertAllMocks verifies all mock expectations were met
func (f *ServiceTestFixture) AssertAllMocks() {
	f.Mocks.AssertAllExpectations(f.T)
}

package services

import (
	"testing"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWalletService_Deposit(t *testing.T) {
	t.Run("credits the wallet", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)
		fixture.Helper.ExpectBalanceChange(TestUser1ID, "10.00", "60.25", entities.TransactionTypeDeposit)

		history, err := fixture.Wallets.Deposit(fixture.Ctx, TestUser1ID, decimal.RequireFromString("50.25"))

		require.NoError(t, err)
		assert.True(t, history.BalanceBefore.Equal(decimal.NewFromInt(10)))
		assert.True(t, history.BalanceAfter.Equal(decimal.RequireFromString("60.25")))
		assert.Equal(t, "admin", history.TransactionMetadata["source"])
		fixture.AssertAllMocks()
	})

	t.Run("rejects non-positive and sub-cent amounts", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)

		for _, amount := range []string{"0", "-1", "0.001"} {
			_, err := fixture.Wallets.Deposit(fixture.Ctx, TestUser1ID, decimal.RequireFromString(amount))
			assert.ErrorIs(t, err, entities.ErrInvalidAmount, amount)
		}
		fixture.Mocks.WalletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("rejects amounts beyond the balance column", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)

		_, err := fixture.Wallets.Deposit(fixture.Ctx, TestUser1ID, decimal.RequireFromString("10000000000.00"))

		assert.ErrorIs(t, err, entities.ErrAmountTooLarge)
		fixture.Mocks.WalletRepo.AssertNotCalled(t, "GetByUserIDForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("rejects a deposit that would overflow the balance", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)
		fixture.Helper.ExpectWalletLock(TestUser1ID, "9999999999.00")

		_, err := fixture.Wallets.Deposit(fixture.Ctx, TestUser1ID, decimal.RequireFromString("1.00"))

		assert.ErrorIs(t, err, entities.ErrAmountTooLarge)
		fixture.Mocks.WalletRepo.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing wallet", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)
		fixture.Mocks.WalletRepo.On("GetByUserIDForUpdate", mock.Anything, TestUser1ID).Return(nil, nil)

		_, err := fixture.Wallets.Deposit(fixture.Ctx, TestUser1ID, decimal.NewFromInt(5))

		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestWalletService_Debit(t *testing.T) {
	t.Run("exact balance can be spent", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)
		betID := TestBetID
		fixture.Helper.ExpectBalanceChange(TestUser1ID, "12.50", "0.00", entities.TransactionTypeStakeEscrow)

		history, err := fixture.Wallets.Debit(fixture.Ctx, TestUser1ID, decimal.RequireFromString("12.50"),
			entities.TransactionTypeStakeEscrow, &betID, nil)

		require.NoError(t, err)
		assert.True(t, history.ChangeAmount.Equal(decimal.RequireFromString("-12.50")))
		assert.Equal(t, &betID, history.RelatedBetID)
	})

	t.Run("overdraft rejected", func(t *testing.T) {
		fixture := NewServiceTestFixture(t)
		fixture.Helper.ExpectWalletLock(TestUser1ID, "12.49")

		_, err := fixture.Wallets.Debit(fixture.Ctx, TestUser1ID, decimal.RequireFromString("12.50"),
			entities.TransactionTypeStakeEscrow, nil, nil)

		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		fixture.Mocks.BalanceHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestWalletService_GetWallet(t *testing.T) {
	fixture := NewServiceTestFixture(t)
	wallet := &entities.Wallet{ID: 1, UserID: TestUser1ID, Balance: decimal.NewFromInt(42)}
	fixture.Mocks.WalletRepo.On("GetByUserID", mock.Anything, TestUser1ID).Return(wallet, nil)
	fixture.Mocks.BalanceHistoryRepo.On("GetByUser", mock.Anything, TestUser1ID, DefaultHistoryLimit).Return([]*entities.BalanceHistory{}, nil)

	summary, err := fixture.Wallets.GetWallet(fixture.Ctx, TestUser1ID, 0)

	require.NoError(t, err)
	assert.Equal(t, wallet, summary.Wallet)
	assert.Empty(t, summary.History)
	fixture.AssertAllMocks()
}

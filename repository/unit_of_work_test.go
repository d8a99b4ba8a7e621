package repository

import (
	"context"
	"testing"

	"betpool/domain/events"
	"betpool/domain/testhelpers"
	"betpool/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	factory := NewUnitOfWorkFactory(testDB.DB)
	ctx := context.Background()

	t.Run("commit persists and flushes events", func(t *testing.T) {
		publisher := new(testhelpers.MockTransactionalEventPublisher)
		publisher.On("Publish", mock.AnythingOfType("events.UserCreatedEvent")).Return(nil)
		publisher.On("Flush", mock.Anything).Return(nil).Once()

		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))

		user := testutil.CreateTestUser("0913000001", "Commit")
		require.NoError(t, uow.UserRepository().Create(ctx, user))
		_, err := uow.WalletRepository().Create(ctx, user.ID, decimal.NewFromInt(10))
		require.NoError(t, err)
		require.NoError(t, uow.EventBus().Publish(events.UserCreatedEvent{UserID: user.ID, Phone: user.Phone}))

		require.NoError(t, uow.Commit())

		stored, err := NewUserRepository(testDB.DB).GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored)
		assert.True(t, testutil.WalletBalance(t, testDB.DB, user.ID).Equal(decimal.NewFromInt(10)))
		publisher.AssertExpectations(t)
		publisher.AssertNotCalled(t, "Discard")
	})

	t.Run("rollback discards writes and events", func(t *testing.T) {
		publisher := new(testhelpers.MockTransactionalEventPublisher)
		publisher.On("Discard").Return().Once()

		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))

		user := testutil.CreateTestUser("0913000002", "Rollback")
		require.NoError(t, uow.UserRepository().Create(ctx, user))
		require.NoError(t, uow.Rollback())

		stored, err := NewUserRepository(testDB.DB).GetByPhone(ctx, "0913000002")
		require.NoError(t, err)
		assert.Nil(t, stored)
		publisher.AssertExpectations(t)
		publisher.AssertNotCalled(t, "Flush", mock.Anything)
	})

	t.Run("rollback after commit is a no-op", func(t *testing.T) {
		publisher := new(testhelpers.MockTransactionalEventPublisher)
		publisher.On("Flush", mock.Anything).Return(nil).Once()

		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.Commit())
		assert.NoError(t, uow.Rollback())
		publisher.AssertNotCalled(t, "Discard")
	})

	t.Run("begin twice fails", func(t *testing.T) {
		publisher := new(testhelpers.MockTransactionalEventPublisher)
		publisher.On("Discard").Return()

		uow := factory.CreateWithPublisher(publisher)
		require.NoError(t, uow.Begin(ctx))
		defer uow.Rollback()

		assert.Error(t, uow.Begin(ctx))
	})

	t.Run("repositories require begin", func(t *testing.T) {
		uow := factory.CreateWithPublisher(new(testhelpers.MockTransactionalEventPublisher))
		assert.Panics(t, func() { uow.BetRepository() })
		assert.Panics(t, func() { uow.UserRepository() })
		assert.Error(t, uow.Commit())
	})
}

package testutil

import (
	"context"
	"testing"
	"time"

	"betpool/database"
	"betpool/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestUser creates an active test user with default values
func CreateTestUser(phone, firstName string) *entities.User {
	now := time.Now()
	return &entities.User{
		FirstName:    firstName,
		LastName:     "Tester",
		Phone:        phone,
		PasswordHash: "$2a$10$test.hash.not.a.real.one",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// CreateTestBalanceHistory creates a test balance history entry
func CreateTestBalanceHistory(userID int64, transactionType entities.TransactionType) *entities.BalanceHistory {
	return CreateTestBalanceHistoryWithAmounts(userID, "100.00", "90.00", "-10.00", transactionType)
}

// CreateTestBalanceHistoryWithAmounts creates a test balance history with specific amounts
func CreateTestBalanceHistoryWithAmounts(userID int64, before, after, change string, transactionType entities.TransactionType) *entities.BalanceHistory {
	return &entities.BalanceHistory{
		UserID:          userID,
		BalanceBefore:   decimal.RequireFromString(before),
		BalanceAfter:    decimal.RequireFromString(after),
		ChangeAmount:    decimal.RequireFromString(change),
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}

// CreateTestBet creates an unsaved bet expiring in a day
func CreateTestBet(creatorID, judgeID int64, title string) *entities.Bet {
	return &entities.Bet{
		CreatorID: creatorID,
		JudgeID:   judgeID,
		Title:     title,
		ExpiresAt: time.Now().Add(24 * time.Hour).UTC().Truncate(time.Microsecond),
	}
}

// CreateTestOptions creates unsaved options numbered in order
func CreateTestOptions(texts ...string) []*entities.Option {
	options := make([]*entities.Option, len(texts))
	for i, text := range texts {
		options[i] = &entities.Option{Text: text, Position: i}
	}
	return options
}

// InsertUserWithWallet stores an active user and its wallet directly and returns the user ID
func InsertUserWithWallet(t *testing.T, db *database.DB, phone, balance string) int64 {
	t.Helper()
	ctx := context.Background()

	var userID int64
	err := db.QueryRow(ctx, `
		INSERT INTO users (first_name, last_name, phone, password_hash)
		VALUES ('Test', 'User', $1, 'x')
		RETURNING id
	`, phone).Scan(&userID)
	require.NoError(t, err)

	_, err = db.Exec(ctx, `INSERT INTO wallets (user_id, balance) VALUES ($1, $2)`,
		userID, decimal.RequireFromString(balance))
	require.NoError(t, err)

	return userID
}

// WalletBalance reads the stored balance of userID
func WalletBalance(t *testing.T, db *database.DB, userID int64) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	require.NoError(t, err)
	return balance
}

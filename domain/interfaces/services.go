package interfaces

import (
	"context"
	"time"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
)

// CreateUserParams carries the raw input of an account registration
type CreateUserParams struct {
	Phone     string
	Email     *string
	FirstName string
	LastName  string
	Password  string
}

// UserService manages accounts
type UserService interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*entities.User, error)
	Login(ctx context.Context, phone, password string) (*entities.User, string, error)
	SoftDeleteUser(ctx context.Context, phone string) (*entities.User, error)
	// GetActiveUser returns the user or ErrUserNotFound when absent, inactive or deleted
	GetActiveUser(ctx context.Context, userID int64) (*entities.User, error)
}

// WalletService moves money in and out of wallets and keeps the ledger
type WalletService interface {
	GetWallet(ctx context.Context, userID int64, historyLimit int) (*entities.WalletSummary, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*entities.BalanceHistory, error)
	// Debit and Credit lock the wallet row, apply the change and record it
	Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType entities.TransactionType, betID *int64, metadata map[string]any) (*entities.BalanceHistory, error)
	Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType entities.TransactionType, betID *int64, metadata map[string]any) (*entities.BalanceHistory, error)
}

// BetService runs the bet lifecycle up to resolution
type BetService interface {
	CreateBet(ctx context.Context, params entities.CreateBetParams) (*entities.BetDetail, error)
	UpdateBet(ctx context.Context, betID int64, patch entities.BetPatch) (*entities.BetDetail, error)
	DeleteBet(ctx context.Context, betID int64) error
	JoinBet(ctx context.Context, userID, betID, optionID int64, stake decimal.Decimal) (*entities.Participation, error)
	GetBet(ctx context.Context, betID int64) (*entities.BetDetail, error)
	ListBets(ctx context.Context, filter entities.BetFilter) ([]*entities.Bet, error)
}

// ResolutionService resolves bets and settles their pools
type ResolutionService interface {
	ResolveBet(ctx context.Context, judgeID, betID, winningOptionID int64) (*entities.SettlementResult, error)
}

// PasswordHasher hashes and verifies passwords
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs and verifies login tokens
type TokenIssuer interface {
	Issue(user *entities.User) (string, time.Time, error)
	Verify(token string) (int64, error)
}

package interfaces

import (
	"context"
	"time"

	"betpool/domain/entities"
	"betpool/domain/events"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, nil when absent
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByPhone retrieves a user by phone number, nil when absent
	GetByPhone(ctx context.Context, phone string) (*entities.User, error)

	// GetByEmail retrieves a user by email, nil when absent
	GetByEmail(ctx context.Context, email string) (*entities.User, error)

	// Create inserts a user and fills its id and timestamps
	Create(ctx context.Context, user *entities.User) error

	// SoftDelete marks a user inactive and deleted
	SoftDelete(ctx context.Context, id int64) error
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// Create opens a wallet for userID with the given balance
	Create(ctx context.Context, userID int64, initialBalance decimal.Decimal) (*entities.Wallet, error)

	// GetByUserID retrieves a wallet, nil when absent
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate retrieves and row-locks a wallet until the transaction ends
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// UpdateBalance sets the balance of a wallet
	UpdateBalance(ctx context.Context, userID int64, newBalance decimal.Decimal) error
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *entities.BalanceHistory) error

	// GetByUser returns the most recent entries for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entities.BalanceHistory, error)

	// GetByBet returns all entries related to a bet, oldest first
	GetByBet(ctx context.Context, betID int64) ([]*entities.BalanceHistory, error)
}

// BetRepository defines the interface for bets, their options and participations
type BetRepository interface {
	// Core bet operations
	CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.Option) error
	GetByID(ctx context.Context, id int64) (*entities.Bet, error)
	GetByIDForShare(ctx context.Context, id int64) (*entities.Bet, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*entities.Bet, error)
	GetDetailByID(ctx context.Context, id int64) (*entities.BetDetail, error)
	List(ctx context.Context, filter entities.BetFilter, now time.Time) ([]*entities.Bet, error)
	Update(ctx context.Context, bet *entities.Bet) error
	// MarkResolved sets the resolution columns only if the bet is still
	// unresolved and reports whether this call made the transition.
	MarkResolved(ctx context.Context, betID, winningOptionID int64, resolvedAt time.Time) (bool, error)
	Delete(ctx context.Context, id int64) error

	// Option operations
	GetOption(ctx context.Context, optionID int64) (*entities.Option, error)
	GetOptions(ctx context.Context, betID int64) ([]*entities.Option, error)
	ReplaceOptions(ctx context.Context, betID int64, options []*entities.Option) error

	// Participation operations
	CreateParticipation(ctx context.Context, participation *entities.Participation) error
	GetParticipation(ctx context.Context, betID, userID int64) (*entities.Participation, error)
	GetParticipations(ctx context.Context, betID int64) ([]*entities.Participation, error)
	CountParticipations(ctx context.Context, betID int64) (int, error)
	UpdateParticipationPayouts(ctx context.Context, participations []*entities.Participation) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher queues events until the surrounding transaction ends
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}

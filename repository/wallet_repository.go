package repository

import (
	"context"
	"errors"
	"fmt"

	"betpool/database"
	"betpool/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository implements the WalletRepository interface
type WalletRepository struct {
	q Queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// NewWalletRepositoryScoped creates a new wallet repository bound to a transaction
func NewWalletRepositoryScoped(tx Queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// Create opens the wallet of userID with initialBalance
func (r *WalletRepository) Create(ctx context.Context, userID int64, initialBalance decimal.Decimal) (*entities.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		RETURNING id, user_id, balance, created_at, updated_at
	`

	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, userID, initialBalance).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, translateError(fmt.Errorf("failed to create wallet for user %d: %w", userID, err))
	}
	return &wallet, nil
}

// GetByUserID retrieves the wallet of userID
func (r *WalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.get(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
	`, userID)
}

// GetByUserIDForUpdate retrieves the wallet of userID and locks the row until
// the surrounding transaction ends
func (r *WalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	return r.get(ctx, `
		SELECT id, user_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1
		FOR UPDATE
	`, userID)
}

// UpdateBalance sets the balance of userID
func (r *WalletRepository) UpdateBalance(ctx context.Context, userID int64, newBalance decimal.Decimal) error {
	query := `
		UPDATE wallets
		SET balance = $2, updated_at = NOW()
		WHERE user_id = $1
	`

	tag, err := r.q.Exec(ctx, query, userID, newBalance)
	if err != nil {
		return translateError(fmt.Errorf("failed to update balance for user %d: %w", userID, err))
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrUserNotFound
	}
	return nil
}

func (r *WalletRepository) get(ctx context.Context, query string, userID int64) (*entities.Wallet, error) {
	var wallet entities.Wallet
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d: %w", userID, err)
	}
	return &wallet, nil
}

package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's balance. The balance never goes below zero.
type Wallet struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Balance   decimal.Decimal `db:"balance" json:"balance"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// CanAfford checks if the wallet covers amount
func (w *Wallet) CanAfford(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// WalletSummary is a wallet with its most recent ledger entries
type WalletSummary struct {
	Wallet  *Wallet           `json:"wallet"`
	History []*BalanceHistory `json:"history"`
}

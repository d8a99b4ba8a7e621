package application

import (
	"context"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// GetWallet returns the balance and latest ledger rows of userID
func (a *App) GetWallet(ctx context.Context, userID int64, historyLimit int) Result[*entities.WalletSummary] {
	return execute(ctx, a, "get_wallet", log.Fields{"user_id": userID},
		func(s *serviceSet) (*entities.WalletSummary, string, error) {
			summary, err := s.wallets.GetWallet(ctx, userID, historyLimit)
			return summary, "", err
		})
}

// Deposit credits amount to the wallet of userID. Administrative only.
func (a *App) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) Result[*entities.BalanceHistory] {
	return execute(ctx, a, "deposit", log.Fields{"user_id": userID, "amount": amount.String()},
		func(s *serviceSet) (*entities.BalanceHistory, string, error) {
			history, err := s.wallets.Deposit(ctx, userID, amount)
			return history, "Deposit applied.", err
		})
}

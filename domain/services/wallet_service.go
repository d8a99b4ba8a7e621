package services

import (
	"context"
	"fmt"

	"betpool/domain/entities"
	"betpool/domain/interfaces"
	"betpool/domain/utils"
	"betpool/domain/validation"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// DefaultHistoryLimit is the number of ledger rows returned with a wallet
const DefaultHistoryLimit = 20

type walletService struct {
	walletRepo         interfaces.WalletRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
}

// NewWalletService creates a new wallet service
func NewWalletService(
	walletRepo interfaces.WalletRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.WalletService {
	return &walletService{
		walletRepo:         walletRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
	}
}

// GetWallet returns the wallet of userID with its latest ledger rows
func (s *walletService) GetWallet(ctx context.Context, userID int64, historyLimit int) (*entities.WalletSummary, error) {
	wallet, err := s.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, entities.ErrUserNotFound
	}

	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	history, err := s.balanceHistoryRepo.GetByUser(ctx, userID, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history: %w", err)
	}

	return &entities.WalletSummary{Wallet: wallet, History: history}, nil
}

// Deposit credits amount to the wallet of userID
func (s *walletService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal) (*entities.BalanceHistory, error) {
	if !amount.IsPositive() {
		return nil, entities.ErrInvalidAmount.WithField("amount")
	}
	if _, err := validation.RequireCents(amount); err != nil {
		return nil, err
	}
	if _, err := validation.RequireWithinLimit(amount); err != nil {
		return nil, err
	}

	history, err := s.Credit(ctx, userID, amount, entities.TransactionTypeDeposit, nil, map[string]any{
		"source": "admin",
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"amount":     amount.StringFixed(2),
		"newBalance": history.BalanceAfter.StringFixed(2),
	}).Info("Deposit applied")
	return history, nil
}

// Debit removes amount from the wallet, failing with ErrInsufficientFunds if it does not cover it
func (s *walletService) Debit(ctx context.Context, userID int64, amount decimal.Decimal, txType entities.TransactionType, betID *int64, metadata map[string]any) (*entities.BalanceHistory, error) {
	return s.applyChange(ctx, userID, amount.Neg(), txType, betID, metadata)
}

// Credit adds amount to the wallet
func (s *walletService) Credit(ctx context.Context, userID int64, amount decimal.Decimal, txType entities.TransactionType, betID *int64, metadata map[string]any) (*entities.BalanceHistory, error) {
	return s.applyChange(ctx, userID, amount, txType, betID, metadata)
}

// applyChange locks the wallet row, applies change and records the ledger entry
func (s *walletService) applyChange(ctx context.Context, userID int64, change decimal.Decimal, txType entities.TransactionType, betID *int64, metadata map[string]any) (*entities.BalanceHistory, error) {
	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	if wallet == nil {
		return nil, entities.ErrUserNotFound
	}

	newBalance := wallet.Balance.Add(change)
	if newBalance.IsNegative() {
		return nil, entities.ErrInsufficientFunds
	}
	if newBalance.GreaterThan(entities.MaxAmount) {
		return nil, entities.ErrAmountTooLarge
	}

	if err := s.walletRepo.UpdateBalance(ctx, userID, newBalance); err != nil {
		return nil, fmt.Errorf("failed to update balance: %w", err)
	}

	history := &entities.BalanceHistory{
		UserID:              userID,
		BalanceBefore:       wallet.Balance,
		BalanceAfter:        newBalance,
		ChangeAmount:        change,
		TransactionType:     txType,
		TransactionMetadata: metadata,
		RelatedBetID:        betID,
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record balance change: %w", err)
	}

	wallet.Balance = newBalance
	return history, nil
}

package entities

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceHistory is one ledger row describing a wallet mutation
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	UserID              int64           `db:"user_id" json:"user_id"`
	BalanceBefore       decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter        decimal.Decimal `db:"balance_after" json:"balance_after"`
	ChangeAmount        decimal.Decimal `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"metadata,omitempty"`
	RelatedBetID        *int64          `db:"related_bet_id" json:"related_bet_id,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}

// IsCredit returns true if the change increased the balance
func (bh *BalanceHistory) IsCredit() bool {
	return bh.ChangeAmount.IsPositive()
}

// GetTransactionDescription returns a human-readable description of the transaction
func (bh *BalanceHistory) GetTransactionDescription() string {
	switch bh.TransactionType {
	case TransactionTypeInitial:
		return "Initial balance"
	case TransactionTypeDeposit:
		return "Deposit"
	case TransactionTypeStakeEscrow:
		return "Stake held for bet"
	case TransactionTypeBetPayout:
		return "Bet payout"
	case TransactionTypeBetRefund:
		return "Bet refund"
	default:
		return string(bh.TransactionType)
	}
}

// ValidateTransaction checks the row is internally consistent
func (bh *BalanceHistory) ValidateTransaction() error {
	if bh.ChangeAmount.IsZero() && bh.TransactionType != TransactionTypeInitial {
		return errors.New("change amount cannot be zero")
	}
	if !bh.BalanceAfter.Equal(bh.BalanceBefore.Add(bh.ChangeAmount)) {
		return errors.New("balance calculation is inconsistent")
	}
	if bh.BalanceAfter.IsNegative() {
		return errors.New("balance cannot become negative")
	}
	return nil
}

package entities

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeDeposit     TransactionType = "deposit"
	TransactionTypeStakeEscrow TransactionType = "stake_escrow"
	TransactionTypeBetPayout   TransactionType = "bet_payout"
	TransactionTypeBetRefund   TransactionType = "bet_refund"
)

// IsBetRelated returns true if the transaction moves money into or out of a bet
func (tt TransactionType) IsBetRelated() bool {
	return tt == TransactionTypeStakeEscrow ||
		tt == TransactionTypeBetPayout ||
		tt == TransactionTypeBetRefund
}

// IsSystemGenerated returns true if the transaction did not come from a bet
func (tt TransactionType) IsSystemGenerated() bool {
	return tt == TransactionTypeInitial || tt == TransactionTypeDeposit
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

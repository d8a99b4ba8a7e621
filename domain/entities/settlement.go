package entities

import "github.com/shopspring/decimal"

// NoWinnerPolicy decides what happens to the pool when nobody backed the winning option
type NoWinnerPolicy string

const (
	// NoWinnerPolicyForfeit leaves every stake forfeited
	NoWinnerPolicyForfeit NoWinnerPolicy = "forfeit"
	// NoWinnerPolicyRefund returns every stake to its owner
	NoWinnerPolicyRefund NoWinnerPolicy = "refund"
)

// IsValid reports whether p is a known policy
func (p NoWinnerPolicy) IsValid() bool {
	return p == NoWinnerPolicyForfeit || p == NoWinnerPolicyRefund
}

// Payout is a single wallet credit produced by settlement
type Payout struct {
	ParticipationID int64           `json:"participation_id"`
	UserID          int64           `json:"user_id"`
	Stake           decimal.Decimal `json:"stake"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionType TransactionType `json:"transaction_type"`
}

// SettlementPlan describes how a resolved bet's pool is distributed
type SettlementPlan struct {
	Pool        decimal.Decimal `json:"pool"`
	WinningPool decimal.Decimal `json:"winning_pool"`
	LosingPool  decimal.Decimal `json:"losing_pool"`
	Forfeited   decimal.Decimal `json:"forfeited"`
	Policy      NoWinnerPolicy  `json:"policy,omitempty"`
	Payouts     []Payout        `json:"payouts"`
}

// TotalPaid returns the sum of all payouts
func (p *SettlementPlan) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, payout := range p.Payouts {
		total = total.Add(payout.Amount)
	}
	return total
}

// PayoutFor returns the payout of a participation, or zero
func (p *SettlementPlan) PayoutFor(participationID int64) decimal.Decimal {
	for _, payout := range p.Payouts {
		if payout.ParticipationID == participationID {
			return payout.Amount
		}
	}
	return decimal.Zero
}

// SettlementResult is the outcome of resolving a bet
type SettlementResult struct {
	Bet           *Bet             `json:"bet"`
	WinningOption *Option          `json:"winning_option"`
	Winners       []*Participation `json:"winners"`
	Losers        []*Participation `json:"losers"`
	Plan          *SettlementPlan  `json:"settlement"`
}

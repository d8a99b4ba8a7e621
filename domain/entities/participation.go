package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Participation is one user's stake on one option of a bet
type Participation struct {
	ID               int64            `db:"id" json:"id"`
	BetID            int64            `db:"bet_id" json:"bet_id"`
	UserID           int64            `db:"user_id" json:"user_id"`
	OptionID         int64            `db:"option_id" json:"option_id"`
	Stake            decimal.Decimal  `db:"stake" json:"stake"`
	Payout           *decimal.Decimal `db:"payout" json:"payout,omitempty"`
	BalanceHistoryID *int64           `db:"balance_history_id" json:"-"`
	JoinedAt         time.Time        `db:"joined_at" json:"joined_at"`
}

// IsSettled reports whether a payout has been recorded
func (p *Participation) IsSettled() bool {
	return p.Payout != nil
}

// IsWinner reports whether the participation backed winningOptionID
func (p *Participation) IsWinner(winningOptionID int64) bool {
	return p.OptionID == winningOptionID
}

package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetStatus is derived from the resolution flag and the expiry instant; it is never stored
type BetStatus string

const (
	BetStatusOpen              BetStatus = "OPEN"
	BetStatusExpiredUnresolved BetStatus = "EXPIRED_UNRESOLVED"
	BetStatusResolved          BetStatus = "RESOLVED"
)

// IsValid reports whether s names a known status
func (s BetStatus) IsValid() bool {
	switch s {
	case BetStatusOpen, BetStatusExpiredUnresolved, BetStatusResolved:
		return true
	}
	return false
}

// Bet is a proposition with mutually exclusive options, judged by JudgeID
type Bet struct {
	ID             int64      `db:"id" json:"id"`
	CreatorID      int64      `db:"creator_id" json:"creator_id"`
	JudgeID        int64      `db:"judge_id" json:"judge_id"`
	Title          string     `db:"title" json:"title"`
	Description    string     `db:"description" json:"description"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
	ResolvedAt     *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	IsResolved     bool       `db:"is_resolved" json:"is_resolved"`
	WinnerOptionID *int64     `db:"winner_option_id" json:"winner_option_id,omitempty"`
}

// IsExpiredAt reports whether joining is closed at now
func (b *Bet) IsExpiredAt(now time.Time) bool {
	return now.After(b.ExpiresAt)
}

// StatusAt returns the effective status of the bet at now
func (b *Bet) StatusAt(now time.Time) BetStatus {
	if b.IsResolved {
		return BetStatusResolved
	}
	if b.IsExpiredAt(now) {
		return BetStatusExpiredUnresolved
	}
	return BetStatusOpen
}

// CanAcceptParticipants reports whether a new participation may be added at now
func (b *Bet) CanAcceptParticipants(now time.Time) bool {
	return b.StatusAt(now) == BetStatusOpen
}

// BetDetail is a bet with its options and participations
type BetDetail struct {
	Bet            *Bet             `json:"bet"`
	Status         BetStatus        `json:"status"`
	Options        []*Option        `json:"options"`
	Participations []*Participation `json:"participations"`
}

// FindOption returns the option with id, or nil
func (d *BetDetail) FindOption(id int64) *Option {
	for _, opt := range d.Options {
		if opt.ID == id {
			return opt
		}
	}
	return nil
}

// ParticipationOf returns the participation of userID, or nil
func (d *BetDetail) ParticipationOf(userID int64) *Participation {
	for _, p := range d.Participations {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// TotalPool returns the sum of all stakes
func (d *BetDetail) TotalPool() decimal.Decimal {
	total := decimal.Zero
	for _, p := range d.Participations {
		total = total.Add(p.Stake)
	}
	return total
}

// OptionTotals returns the staked amount per option id
func (d *BetDetail) OptionTotals() map[int64]decimal.Decimal {
	totals := make(map[int64]decimal.Decimal, len(d.Options))
	for _, opt := range d.Options {
		totals[opt.ID] = decimal.Zero
	}
	for _, p := range d.Participations {
		totals[p.OptionID] = totals[p.OptionID].Add(p.Stake)
	}
	return totals
}

// BetPatch lists the fields an update may change. A nil field is left as is;
// a non-nil field is validated and applied.
type BetPatch struct {
	Title       *string
	Description *string
	ExpiresAt   *string
	Options     *[]string
}

// IsEmpty reports whether the patch changes nothing
func (p BetPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.ExpiresAt == nil && p.Options == nil
}

// BetFilter narrows bet listings. Zero values mean no filtering.
type BetFilter struct {
	Status *BetStatus
	UserID *int64 // bets the user created, judges or joined
	Limit  int
}

// CreateBetParams carries the raw input of a bet creation
type CreateBetParams struct {
	CreatorID   int64
	JudgeID     int64
	Title       string
	Description string
	Options     []string
	ExpiresAt   string
}

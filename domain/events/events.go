package events

import (
	"time"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeUserCreated   EventType = "user_created"
	EventTypeBalanceChange EventType = "balance_change"
	EventTypeBetCreated    EventType = "bet_created"
	EventTypeBetUpdated    EventType = "bet_updated"
	EventTypeBetDeleted    EventType = "bet_deleted"
	EventTypeBetJoined     EventType = "bet_joined"
	EventTypeBetResolved   EventType = "bet_resolved"
	EventTypeBetSettled    EventType = "bet_settled"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// UserCreatedEvent is emitted when an account and its wallet are created
type UserCreatedEvent struct {
	UserID         int64           `json:"user_id"`
	Phone          string          `json:"phone"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64                    `json:"user_id"`
	OldBalance      decimal.Decimal          `json:"old_balance"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
	ChangeAmount    decimal.Decimal          `json:"change_amount"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	RelatedBetID    *int64                   `json:"related_bet_id,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// BetCreatedEvent is emitted once a bet and its options are stored
type BetCreatedEvent struct {
	BetID     int64     `json:"bet_id"`
	CreatorID int64     `json:"creator_id"`
	JudgeID   int64     `json:"judge_id"`
	Title     string    `json:"title"`
	Options   []string  `json:"options"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e BetCreatedEvent) Type() EventType {
	return EventTypeBetCreated
}

// BetUpdatedEvent lists the fields an update changed
type BetUpdatedEvent struct {
	BetID         int64    `json:"bet_id"`
	ChangedFields []string `json:"changed_fields"`
}

func (e BetUpdatedEvent) Type() EventType {
	return EventTypeBetUpdated
}

// BetDeletedEvent is emitted when an unresolved bet is removed and its stakes refunded
type BetDeletedEvent struct {
	BetID          int64           `json:"bet_id"`
	RefundedTotal  decimal.Decimal `json:"refunded_total"`
	Participations int             `json:"participations"`
}

func (e BetDeletedEvent) Type() EventType {
	return EventTypeBetDeleted
}

// BetJoinedEvent is emitted when a participation is recorded
type BetJoinedEvent struct {
	BetID           int64           `json:"bet_id"`
	ParticipationID int64           `json:"participation_id"`
	UserID          int64           `json:"user_id"`
	OptionID        int64           `json:"option_id"`
	Stake           decimal.Decimal `json:"stake"`
}

func (e BetJoinedEvent) Type() EventType {
	return EventTypeBetJoined
}

// BetResolvedEvent is emitted when the judge declares the winning option
type BetResolvedEvent struct {
	BetID           int64     `json:"bet_id"`
	JudgeID         int64     `json:"judge_id"`
	WinningOptionID int64     `json:"winning_option_id"`
	ResolvedAt      time.Time `json:"resolved_at"`
}

func (e BetResolvedEvent) Type() EventType {
	return EventTypeBetResolved
}

// BetSettledEvent summarises the money moved by a resolution
type BetSettledEvent struct {
	BetID       int64                   `json:"bet_id"`
	Pool        decimal.Decimal         `json:"pool"`
	TotalPaid   decimal.Decimal         `json:"total_paid"`
	Forfeited   decimal.Decimal         `json:"forfeited"`
	WinnerCount int                     `json:"winner_count"`
	Policy      entities.NoWinnerPolicy `json:"policy,omitempty"`
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

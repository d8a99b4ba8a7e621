package application

import (
	"context"
	"time"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// BetListItem is a bet with its status at listing time
type BetListItem struct {
	*entities.Bet
	Status entities.BetStatus `json:"status"`
}

// BetRef identifies a bet that no longer exists
type BetRef struct {
	ID int64 `json:"id"`
}

// CreateBet stores a bet with its options
func (a *App) CreateBet(ctx context.Context, params entities.CreateBetParams) Result[*entities.BetDetail] {
	fields := log.Fields{"creator_id": params.CreatorID, "judge_id": params.JudgeID}
	return execute(ctx, a, "create_bet", fields,
		func(s *serviceSet) (*entities.BetDetail, string, error) {
			detail, err := s.bets.CreateBet(ctx, params)
			return detail, "Bet created successfully.", err
		})
}

// UpdateBet applies patch to a bet authored by actorID
func (a *App) UpdateBet(ctx context.Context, actorID, betID int64, patch entities.BetPatch) Result[*entities.BetDetail] {
	return execute(ctx, a, "update_bet", log.Fields{"actor_id": actorID, "bet_id": betID},
		func(s *serviceSet) (*entities.BetDetail, string, error) {
			if err := requireCreator(ctx, s.betRepo, actorID, betID); err != nil {
				return nil, "", err
			}
			detail, err := s.bets.UpdateBet(ctx, betID, patch)
			return detail, "Bet updated successfully.", err
		})
}

// DeleteBet removes an unresolved bet authored by actorID and refunds its stakes
func (a *App) DeleteBet(ctx context.Context, actorID, betID int64) Result[*BetRef] {
	return execute(ctx, a, "delete_bet", log.Fields{"actor_id": actorID, "bet_id": betID},
		func(s *serviceSet) (*BetRef, string, error) {
			if err := requireCreator(ctx, s.betRepo, actorID, betID); err != nil {
				return nil, "", err
			}
			if err := s.bets.DeleteBet(ctx, betID); err != nil {
				return nil, "", err
			}
			return &BetRef{ID: betID}, "Bet deleted and stakes refunded.", nil
		})
}

// JoinBet stakes amount on optionID for userID
func (a *App) JoinBet(ctx context.Context, userID, betID, optionID int64, stake decimal.Decimal) Result[*entities.Participation] {
	fields := log.Fields{"user_id": userID, "bet_id": betID, "option_id": optionID, "stake": stake.String()}
	return execute(ctx, a, "join_bet", fields,
		func(s *serviceSet) (*entities.Participation, string, error) {
			participation, err := s.bets.JoinBet(ctx, userID, betID, optionID, stake)
			return participation, "Joined bet successfully.", err
		})
}

// ResolveBet declares the winning option and settles the pool
func (a *App) ResolveBet(ctx context.Context, judgeID, betID, winningOptionID int64) Result[*entities.SettlementResult] {
	fields := log.Fields{"judge_id": judgeID, "bet_id": betID, "winning_option_id": winningOptionID}
	result := execute(ctx, a, "resolve_bet", fields,
		func(s *serviceSet) (*entities.SettlementResult, string, error) {
			settlement, err := s.resolution.ResolveBet(ctx, judgeID, betID, winningOptionID)
			return settlement, "Bet resolved successfully.", err
		})

	if result.Success && result.Payload != nil && result.Payload.Plan != nil {
		plan := result.Payload.Plan
		a.metrics.RecordSettlement(string(plan.Policy), plan.TotalPaid(), plan.Forfeited)
	}
	return result
}

// GetBet returns a bet with its options and participations
func (a *App) GetBet(ctx context.Context, betID int64) Result[*entities.BetDetail] {
	return execute(ctx, a, "get_bet", log.Fields{"bet_id": betID},
		func(s *serviceSet) (*entities.BetDetail, string, error) {
			detail, err := s.bets.GetBet(ctx, betID)
			return detail, "", err
		})
}

// ListBets returns bets matching filter, newest first
func (a *App) ListBets(ctx context.Context, filter entities.BetFilter) Result[[]BetListItem] {
	return execute(ctx, a, "list_bets", log.Fields{},
		func(s *serviceSet) ([]BetListItem, string, error) {
			bets, err := s.bets.ListBets(ctx, filter)
			if err != nil {
				return nil, "", err
			}
			now := time.Now()
			items := make([]BetListItem, len(bets))
			for i, bet := range bets {
				items[i] = BetListItem{Bet: bet, Status: bet.StatusAt(now)}
			}
			return items, "", nil
		})
}

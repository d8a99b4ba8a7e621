package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"betpool/config"
	"betpool/domain/entities"
	"betpool/domain/events"
	"betpool/domain/interfaces"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type resolutionService struct {
	betRepo        interfaces.BetRepository
	userRepo       interfaces.UserRepository
	wallets        interfaces.WalletService
	eventPublisher interfaces.EventPublisher
	config         *config.Config
	now            func() time.Time
}

// NewResolutionService creates a new resolution service
func NewResolutionService(
	betRepo interfaces.BetRepository,
	userRepo interfaces.UserRepository,
	walletRepo interfaces.WalletRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.ResolutionService {
	return &resolutionService{
		betRepo:        betRepo,
		userRepo:       userRepo,
		wallets:        NewWalletService(walletRepo, balanceHistoryRepo, eventPublisher),
		eventPublisher: eventPublisher,
		config:         config.Get(),
		now:            time.Now,
	}
}

// ResolveBet declares winningOptionID the outcome of betID and settles the pool
// in the same unit of work.
func (s *resolutionService) ResolveBet(ctx context.Context, judgeID, betID, winningOptionID int64) (*entities.SettlementResult, error) {
	if _, err := requireActiveUser(ctx, s.userRepo, judgeID); err != nil {
		return nil, err
	}

	bet, err := s.betRepo.GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}

	option, err := s.betRepo.GetOption(ctx, winningOptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if option == nil {
		return nil, entities.ErrOptionNotFound
	}

	if judgeID != bet.JudgeID {
		return nil, entities.ErrNotAuthorized
	}
	if bet.IsResolved {
		return nil, entities.ErrAlreadyResolved
	}
	if option.BetID != bet.ID {
		return nil, entities.ErrOptionMismatch
	}

	resolvedAt := s.now().UTC()
	resolved, err := s.betRepo.MarkResolved(ctx, betID, winningOptionID, resolvedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to mark bet resolved: %w", err)
	}
	if !resolved {
		return nil, entities.ErrAlreadyResolved
	}
	bet.IsResolved = true
	bet.WinnerOptionID = &winningOptionID
	bet.ResolvedAt = &resolvedAt

	participations, err := s.betRepo.GetParticipations(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participations: %w", err)
	}

	plan := CalculateSettlement(participations, winningOptionID, s.config.NoWinnerPolicy)
	if err := s.applySettlement(ctx, bet, participations, plan); err != nil {
		return nil, err
	}

	result := &entities.SettlementResult{
		Bet:           bet,
		WinningOption: option,
		Winners:       []*entities.Participation{},
		Losers:        []*entities.Participation{},
		Plan:          plan,
	}
	for _, p := range participations {
		if p.IsWinner(winningOptionID) {
			result.Winners = append(result.Winners, p)
		} else {
			result.Losers = append(result.Losers, p)
		}
	}

	s.publish(events.BetResolvedEvent{
		BetID:           betID,
		JudgeID:         judgeID,
		WinningOptionID: winningOptionID,
		ResolvedAt:      resolvedAt,
	})
	s.publish(events.BetSettledEvent{
		BetID:       betID,
		Pool:        plan.Pool,
		TotalPaid:   plan.TotalPaid(),
		Forfeited:   plan.Forfeited,
		WinnerCount: len(result.Winners),
		Policy:      plan.Policy,
	})

	log.WithFields(log.Fields{
		"betID":           betID,
		"winningOptionID": winningOptionID,
		"pool":            plan.Pool.StringFixed(2),
		"winners":         len(result.Winners),
		"losers":          len(result.Losers),
	}).Info("Bet resolved")
	return result, nil
}

// applySettlement credits every payout, in user order, and stamps each
// participation with what it received.
func (s *resolutionService) applySettlement(ctx context.Context, bet *entities.Bet, participations []*entities.Participation, plan *entities.SettlementPlan) error {
	byID := make(map[int64]*entities.Participation, len(participations))
	for _, p := range participations {
		zero := decimal.Zero
		p.Payout = &zero
		byID[p.ID] = p
	}

	payouts := make([]entities.Payout, len(plan.Payouts))
	copy(payouts, plan.Payouts)
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].UserID < payouts[j].UserID })

	for _, payout := range payouts {
		history, err := s.wallets.Credit(ctx, payout.UserID, payout.Amount, payout.TransactionType, &bet.ID, map[string]any{
			"participation_id":  payout.ParticipationID,
			"stake":             payout.Stake.StringFixed(2),
			"winning_option_id": *bet.WinnerOptionID,
		})
		if err != nil {
			return fmt.Errorf("failed to pay user %d: %w", payout.UserID, err)
		}

		p := byID[payout.ParticipationID]
		amount := payout.Amount
		p.Payout = &amount
		p.BalanceHistoryID = &history.ID
	}

	if len(participations) == 0 {
		return nil
	}
	if err := s.betRepo.UpdateParticipationPayouts(ctx, participations); err != nil {
		return fmt.Errorf("failed to record payouts: %w", err)
	}
	return nil
}

func (s *resolutionService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish event")
	}
}

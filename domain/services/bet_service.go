package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"betpool/config"
	"betpool/domain/entities"
	"betpool/domain/events"
	"betpool/domain/interfaces"
	"betpool/domain/validation"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type betService struct {
	betRepo        interfaces.BetRepository
	userRepo       interfaces.UserRepository
	wallets        interfaces.WalletService
	eventPublisher interfaces.EventPublisher
	config         *config.Config
	now            func() time.Time
}

// NewBetService creates a new bet lifecycle service
func NewBetService(
	betRepo interfaces.BetRepository,
	userRepo interfaces.UserRepository,
	walletRepo interfaces.WalletRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.BetService {
	return &betService{
		betRepo:        betRepo,
		userRepo:       userRepo,
		wallets:        NewWalletService(walletRepo, balanceHistoryRepo, eventPublisher),
		eventPublisher: eventPublisher,
		config:         config.Get(),
		now:            time.Now,
	}
}

// CreateBet stores a bet together with its option set
func (s *betService) CreateBet(ctx context.Context, params entities.CreateBetParams) (*entities.BetDetail, error) {
	if _, err := requireActiveUser(ctx, s.userRepo, params.CreatorID); err != nil {
		return nil, err
	}
	if _, err := requireActiveUser(ctx, s.userRepo, params.JudgeID); err != nil {
		return nil, err
	}

	now := s.now()
	var issues []*entities.DomainError
	collect := func(field string, err error) {
		if domainErr, ok := entities.AsDomainError(err); ok {
			if domainErr.Field == "" {
				domainErr = domainErr.WithField(field)
			}
			issues = append(issues, domainErr)
		}
	}

	title, err := validation.RequireText("title", params.Title, entities.MaxTitleLength)
	collect("title", err)

	optionSet, err := entities.DefineOptions(params.Options)
	collect("options", err)

	expiresAt, err := validation.ParseFutureInstant(params.ExpiresAt, now, s.config.Location)
	collect("expires_at", err)

	if params.JudgeID == params.CreatorID && !s.config.AllowCreatorAsJudge {
		collect("judge_id", entities.ErrJudgeIsCreator)
	}

	if err := entities.NewValidationError(issues...); err != nil {
		return nil, err
	}

	bet := &entities.Bet{
		CreatorID:   params.CreatorID,
		JudgeID:     params.JudgeID,
		Title:       title,
		Description: strings.TrimSpace(params.Description),
		ExpiresAt:   expiresAt,
	}
	options := optionSet.ToOptions(0)
	if err := s.betRepo.CreateWithOptions(ctx, bet, options); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	s.publish(events.BetCreatedEvent{
		BetID:     bet.ID,
		CreatorID: bet.CreatorID,
		JudgeID:   bet.JudgeID,
		Title:     bet.Title,
		Options:   optionSet.Texts(),
		ExpiresAt: bet.ExpiresAt,
	})

	log.WithFields(log.Fields{
		"betID":     bet.ID,
		"creatorID": bet.CreatorID,
		"judgeID":   bet.JudgeID,
		"options":   optionSet.Len(),
	}).Info("Bet created")

	return &entities.BetDetail{
		Bet:            bet,
		Status:         bet.StatusAt(now),
		Options:        options,
		Participations: []*entities.Participation{},
	}, nil
}

// UpdateBet applies the fields present in patch. The options lock is checked
// before any other field so a rejected patch changes nothing.
func (s *betService) UpdateBet(ctx context.Context, betID int64, patch entities.BetPatch) (*entities.BetDetail, error) {
	bet, err := s.betRepo.GetByIDForUpdate(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}
	if bet.IsResolved {
		return nil, entities.ErrAlreadyResolved
	}

	if patch.Options != nil {
		count, err := s.betRepo.CountParticipations(ctx, betID)
		if err != nil {
			return nil, fmt.Errorf("failed to count participations: %w", err)
		}
		if count > 0 {
			return nil, entities.ErrOptionsLocked
		}
	}

	now := s.now()
	// expires_at only moves while the bet is open
	if patch.ExpiresAt != nil && bet.IsExpiredAt(now) {
		return nil, entities.ErrBetExpired
	}

	var issues []*entities.DomainError
	collect := func(field string, err error) {
		if domainErr, ok := entities.AsDomainError(err); ok {
			if domainErr.Field == "" {
				domainErr = domainErr.WithField(field)
			}
			issues = append(issues, domainErr)
		}
	}

	var (
		title, description string
		expiresAt          time.Time
		optionSet          entities.OptionSet
	)
	if patch.Title != nil {
		title, err = validation.RequireText("title", *patch.Title, entities.MaxTitleLength)
		collect("title", err)
	}
	if patch.Description != nil {
		description, err = validation.RequireNonEmpty("description", *patch.Description)
		collect("description", err)
	}
	if patch.ExpiresAt != nil {
		expiresAt, err = validation.ParseFutureInstant(*patch.ExpiresAt, now, s.config.Location)
		collect("expires_at", err)
	}
	if patch.Options != nil {
		optionSet, err = entities.DefineOptions(*patch.Options)
		collect("options", err)
	}

	if err := entities.NewValidationError(issues...); err != nil {
		return nil, err
	}

	var changed []string
	if patch.Title != nil {
		bet.Title = title
		changed = append(changed, "title")
	}
	if patch.Description != nil {
		bet.Description = description
		changed = append(changed, "description")
	}
	if patch.ExpiresAt != nil {
		bet.ExpiresAt = expiresAt
		changed = append(changed, "expires_at")
	}

	if len(changed) > 0 {
		if err := s.betRepo.Update(ctx, bet); err != nil {
			return nil, fmt.Errorf("failed to update bet: %w", err)
		}
	}
	if patch.Options != nil {
		if err := s.betRepo.ReplaceOptions(ctx, betID, optionSet.ToOptions(betID)); err != nil {
			return nil, fmt.Errorf("failed to replace options: %w", err)
		}
		changed = append(changed, "options")
	}

	if len(changed) > 0 {
		s.publish(events.BetUpdatedEvent{BetID: betID, ChangedFields: changed})
		log.WithFields(log.Fields{
			"betID":   betID,
			"changed": changed,
		}).Info("Bet updated")
	}

	return s.loadDetail(ctx, betID, now)
}

// DeleteBet refunds every stake of an unresolved bet and removes it.
// Resolved bets are kept as settlement records.
func (s *betService) DeleteBet(ctx context.Context, betID int64) error {
	bet, err := s.betRepo.GetByIDForUpdate(ctx, betID)
	if err != nil {
		return fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return entities.ErrBetNotFound
	}
	if bet.IsResolved {
		return entities.ErrSettledBetPermanent
	}

	participations, err := s.betRepo.GetParticipations(ctx, betID)
	if err != nil {
		return fmt.Errorf("failed to get participations: %w", err)
	}

	refunds := make([]*entities.Participation, len(participations))
	copy(refunds, participations)
	sort.Slice(refunds, func(i, j int) bool { return refunds[i].UserID < refunds[j].UserID })

	refunded := decimal.Zero
	for _, p := range refunds {
		if _, err := s.wallets.Credit(ctx, p.UserID, p.Stake, entities.TransactionTypeBetRefund, &betID, map[string]any{
			"reason":           "bet_deleted",
			"participation_id": p.ID,
		}); err != nil {
			return fmt.Errorf("failed to refund user %d: %w", p.UserID, err)
		}
		refunded = refunded.Add(p.Stake)
	}

	if err := s.betRepo.Delete(ctx, betID); err != nil {
		return fmt.Errorf("failed to delete bet: %w", err)
	}

	s.publish(events.BetDeletedEvent{
		BetID:          betID,
		RefundedTotal:  refunded,
		Participations: len(participations),
	})

	log.WithFields(log.Fields{
		"betID":    betID,
		"refunded": refunded.StringFixed(2),
	}).Info("Bet deleted")
	return nil
}

// JoinBet stakes userID on optionID and escrows the stake from the wallet.
// Preconditions are checked in a fixed order and the first failure wins.
func (s *betService) JoinBet(ctx context.Context, userID, betID, optionID int64, stake decimal.Decimal) (*entities.Participation, error) {
	if _, err := requireActiveUser(ctx, s.userRepo, userID); err != nil {
		return nil, err
	}

	bet, err := s.betRepo.GetByIDForShare(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, entities.ErrBetNotFound
	}

	option, err := s.betRepo.GetOption(ctx, optionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get option: %w", err)
	}
	if option == nil {
		return nil, entities.ErrOptionNotFound
	}

	if userID == bet.JudgeID {
		return nil, entities.ErrJudgeCannotParticipate
	}
	if bet.IsResolved {
		return nil, entities.ErrAlreadyResolved
	}

	existing, err := s.betRepo.GetParticipation(ctx, betID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check participation: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrAlreadyJoined
	}

	if bet.IsExpiredAt(s.now()) {
		return nil, entities.ErrBetExpired
	}
	if option.BetID != bet.ID {
		return nil, entities.ErrOptionMismatch
	}
	if _, err := validation.RequirePositive(stake); err != nil {
		return nil, err
	}
	if _, err := validation.RequireCents(stake); err != nil {
		return nil, err
	}
	if _, err := validation.RequireWithinLimit(stake); err != nil {
		return nil, err
	}

	if _, err := s.wallets.Debit(ctx, userID, stake, entities.TransactionTypeStakeEscrow, &betID, map[string]any{
		"option_id": optionID,
	}); err != nil {
		return nil, err
	}

	participation := &entities.Participation{
		BetID:    betID,
		UserID:   userID,
		OptionID: optionID,
		Stake:    stake,
	}
	if err := s.betRepo.CreateParticipation(ctx, participation); err != nil {
		return nil, err
	}

	s.publish(events.BetJoinedEvent{
		BetID:           betID,
		ParticipationID: participation.ID,
		UserID:          userID,
		OptionID:        optionID,
		Stake:           stake,
	})

	log.WithFields(log.Fields{
		"betID":    betID,
		"userID":   userID,
		"optionID": optionID,
		"stake":    stake.StringFixed(2),
	}).Info("User joined bet")
	return participation, nil
}

// GetBet returns a bet with its options and participations
func (s *betService) GetBet(ctx context.Context, betID int64) (*entities.BetDetail, error) {
	return s.loadDetail(ctx, betID, s.now())
}

// ListBets returns bets matching filter, newest first
func (s *betService) ListBets(ctx context.Context, filter entities.BetFilter) ([]*entities.Bet, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, entities.ErrInvalidFormat.WithField("status").WithMessage("Unknown bet status.")
	}
	bets, err := s.betRepo.List(ctx, filter, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

func (s *betService) loadDetail(ctx context.Context, betID int64, now time.Time) (*entities.BetDetail, error) {
	detail, err := s.betRepo.GetDetailByID(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet detail: %w", err)
	}
	if detail == nil {
		return nil, entities.ErrBetNotFound
	}
	detail.Status = detail.Bet.StatusAt(now)
	return detail, nil
}

// publish sends an event, logging rather than failing the operation
func (s *betService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to publish event")
	}
}

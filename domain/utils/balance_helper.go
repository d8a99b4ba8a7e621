package utils

import (
	"context"
	"fmt"

	"betpool/domain/entities"
	"betpool/domain/events"
	"betpool/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// RecordBalanceChange records a balance history entry and emits the matching
// events. Every wallet mutation goes through here.
func RecordBalanceChange(ctx context.Context, balanceHistoryRepo interfaces.BalanceHistoryRepository, eventPublisher interfaces.EventPublisher, history *entities.BalanceHistory) error {
	if err := history.ValidateTransaction(); err != nil {
		return fmt.Errorf("invalid balance change for user %d: %w", history.UserID, err)
	}

	if err := balanceHistoryRepo.Record(ctx, history); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	event := events.BalanceChangeEvent{
		UserID:          history.UserID,
		OldBalance:      history.BalanceBefore,
		NewBalance:      history.BalanceAfter,
		ChangeAmount:    history.ChangeAmount,
		TransactionType: history.TransactionType,
		RelatedBetID:    history.RelatedBetID,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"oldBalance":      event.OldBalance.StringFixed(2),
		"newBalance":      event.NewBalance.StringFixed(2),
		"transactionType": event.TransactionType,
		"changeAmount":    event.ChangeAmount.StringFixed(2),
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}

	// The opening entry of a wallet also announces the new account
	if history.TransactionType == entities.TransactionTypeInitial {
		if phone, ok := history.TransactionMetadata["phone"].(string); ok {
			userCreatedEvent := events.UserCreatedEvent{
				UserID:         history.UserID,
				Phone:          phone,
				InitialBalance: history.BalanceAfter,
			}
			if err := eventPublisher.Publish(userCreatedEvent); err != nil {
				log.WithError(err).Error("Failed to publish user created event")
			}
		}
	}

	return nil
}

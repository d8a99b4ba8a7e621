package application

import (
	"context"
	"fmt"
	"time"

	"betpool/config"
	"betpool/domain/entities"
	"betpool/domain/interfaces"
	"betpool/domain/services"

	log "github.com/sirupsen/logrus"
)

const (
	outcomeSuccess    = "success"
	outcomeRejected   = "rejected"
	outcomeUnexpected = "unexpected"
)

// App is the operation boundary. Each operation runs in its own unit of work
// and returns a Result envelope.
type App struct {
	uowFactory UnitOfWorkFactory
	hasher     interfaces.PasswordHasher
	tokens     interfaces.TokenIssuer
	metrics    MetricsRecorder
	config     *config.Config
}

// NewApp creates the application. metrics may be nil.
func NewApp(
	uowFactory UnitOfWorkFactory,
	hasher interfaces.PasswordHasher,
	tokens interfaces.TokenIssuer,
	metrics MetricsRecorder,
) *App {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &App{
		uowFactory: uowFactory,
		hasher:     hasher,
		tokens:     tokens,
		metrics:    metrics,
		config:     config.Get(),
	}
}

// serviceSet holds the domain services bound to one unit of work
type serviceSet struct {
	users      interfaces.UserService
	wallets    interfaces.WalletService
	bets       interfaces.BetService
	resolution interfaces.ResolutionService
	betRepo    interfaces.BetRepository
}

func (a *App) servicesFor(uow UnitOfWork) *serviceSet {
	return &serviceSet{
		users: services.NewUserService(
			uow.UserRepository(),
			uow.WalletRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
			a.hasher,
			a.tokens,
			a.config.StartingBalance,
		),
		wallets: services.NewWalletService(
			uow.WalletRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		),
		bets: services.NewBetService(
			uow.BetRepository(),
			uow.UserRepository(),
			uow.WalletRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		),
		resolution: services.NewResolutionService(
			uow.BetRepository(),
			uow.UserRepository(),
			uow.WalletRepository(),
			uow.BalanceHistoryRepository(),
			uow.EventBus(),
		),
		betRepo: uow.BetRepository(),
	}
}

// execute runs fn inside a fresh unit of work. The work commits only when fn
// succeeds; a panic rolls back and is re-raised.
func execute[T any](ctx context.Context, a *App, operation string, fields log.Fields, fn func(s *serviceSet) (T, string, error)) (result Result[T]) {
	start := time.Now()
	if fields == nil {
		fields = log.Fields{}
	}
	fields["operation"] = operation

	defer func() {
		outcome := outcomeSuccess
		if !result.Success {
			outcome = outcomeRejected
			if result.Kind == "" {
				outcome = outcomeUnexpected
			}
		}
		a.metrics.RecordOperation(operation, outcome, time.Since(start))
	}()

	uow := a.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fail[T](fmt.Errorf("failed to begin transaction: %w", err), fields)
	}
	defer func() {
		if r := recover(); r != nil {
			uow.Rollback()
			panic(r)
		}
	}()

	payload, message, err := fn(a.servicesFor(uow))
	if err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.WithFields(fields).WithError(rbErr).Warn("Failed to roll back unit of work")
		}
		return fail[T](err, fields)
	}

	if err := uow.Commit(); err != nil {
		return fail[T](err, fields)
	}

	log.WithFields(fields).Debug("Operation completed")
	return succeed(payload, message)
}

// requireCreator fails unless actorID authored betID
func requireCreator(ctx context.Context, betRepo interfaces.BetRepository, actorID, betID int64) error {
	bet, err := betRepo.GetByID(ctx, betID)
	if err != nil {
		return err
	}
	if bet == nil {
		return entities.ErrBetNotFound
	}
	if bet.CreatorID != actorID {
		return entities.ErrNotAuthorized.WithMessage("Only the creator of this bet can change it.")
	}
	return nil
}

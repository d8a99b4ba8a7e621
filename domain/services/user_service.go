package services

import (
	"context"
	"fmt"
	"strings"

	"betpool/domain/entities"
	"betpool/domain/interfaces"
	"betpool/domain/utils"
	"betpool/domain/validation"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type userService struct {
	userRepo           interfaces.UserRepository
	walletRepo         interfaces.WalletRepository
	balanceHistoryRepo interfaces.BalanceHistoryRepository
	eventPublisher     interfaces.EventPublisher
	hasher             interfaces.PasswordHasher
	tokens             interfaces.TokenIssuer
	startingBalance    decimal.Decimal
}

// NewUserService creates a new user service
func NewUserService(
	userRepo interfaces.UserRepository,
	walletRepo interfaces.WalletRepository,
	balanceHistoryRepo interfaces.BalanceHistoryRepository,
	eventPublisher interfaces.EventPublisher,
	hasher interfaces.PasswordHasher,
	tokens interfaces.TokenIssuer,
	startingBalance decimal.Decimal,
) interfaces.UserService {
	return &userService{
		userRepo:           userRepo,
		walletRepo:         walletRepo,
		balanceHistoryRepo: balanceHistoryRepo,
		eventPublisher:     eventPublisher,
		hasher:             hasher,
		tokens:             tokens,
		startingBalance:    startingBalance,
	}
}

// CreateUser registers an account and opens its wallet
func (s *userService) CreateUser(ctx context.Context, params interfaces.CreateUserParams) (*entities.User, error) {
	var issues []*entities.DomainError
	collect := func(err error) {
		if domainErr, ok := entities.AsDomainError(err); ok {
			issues = append(issues, domainErr)
		}
	}

	phone, err := validation.ValidatePhone(params.Phone)
	collect(err)

	var email *string
	if params.Email != nil && strings.TrimSpace(*params.Email) != "" {
		normalized, err := validation.ValidateEmail(*params.Email)
		collect(err)
		email = &normalized
	}

	firstName, err := validation.RequireText("first_name", params.FirstName, entities.MaxNameLength)
	collect(err)
	lastName, err := validation.RequireText("last_name", params.LastName, entities.MaxNameLength)
	collect(err)
	collect(validation.RequirePassword(params.Password))

	if err := entities.NewValidationError(issues...); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone: %w", err)
	}
	if existing != nil {
		return nil, entities.ErrPhoneInUse
	}

	if email != nil {
		existing, err := s.userRepo.GetByEmail(ctx, *email)
		if err != nil {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		if existing != nil {
			return nil, entities.ErrEmailInUse
		}
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.Create(ctx, user.ID, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	history := &entities.BalanceHistory{
		UserID:          user.ID,
		BalanceBefore:   decimal.Zero,
		BalanceAfter:    wallet.Balance,
		ChangeAmount:    wallet.Balance,
		TransactionType: entities.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"phone": user.Phone,
		},
	}
	if err := utils.RecordBalanceChange(ctx, s.balanceHistoryRepo, s.eventPublisher, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	log.WithFields(log.Fields{
		"userID": user.ID,
		"phone":  user.Phone,
	}).Info("User created")
	return user, nil
}

// Login checks the credentials of phone and issues a token
func (s *userService) Login(ctx context.Context, phone, password string) (*entities.User, string, error) {
	user, err := s.userRepo.GetByPhone(ctx, validation.NormalizePhone(phone))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, password) {
		return nil, "", entities.ErrInvalidCredentials
	}
	if !user.CanParticipate() {
		return nil, "", entities.ErrAccountInactive
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}
	return user, token, nil
}

// SoftDeleteUser deactivates the account registered with phone
func (s *userService) SoftDeleteUser(ctx context.Context, phone string) (*entities.User, error) {
	user, err := s.userRepo.GetByPhone(ctx, validation.NormalizePhone(phone))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, entities.ErrUserNotFound.WithMessage("User does not exist.")
	}
	if user.IsDeleted {
		return nil, entities.ErrUserAlreadyDeleted
	}

	if err := s.userRepo.SoftDelete(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	user.IsDeleted = true
	user.IsActive = false

	log.WithField("userID", user.ID).Info("User soft-deleted")
	return user, nil
}

// GetActiveUser returns userID if it exists and may participate
func (s *userService) GetActiveUser(ctx context.Context, userID int64) (*entities.User, error) {
	return requireActiveUser(ctx, s.userRepo, userID)
}

// requireActiveUser loads userID, treating inactive and deleted accounts as absent
func requireActiveUser(ctx context.Context, userRepo interfaces.UserRepository, userID int64) (*entities.User, error) {
	user, err := userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.CanParticipate() {
		return nil, entities.ErrUserNotFound
	}
	return user, nil
}

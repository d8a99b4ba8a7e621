package services

import (
	"context"
	"testing"
	"time"

	"betpool/config"
	"betpool/domain/entities"
	"betpool/domain/events"
	"betpool/domain/testhelpers"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// Test constants for consistent test data
const (
	TestCreatorID       = int64(100)
	TestJudgeID         = int64(200)
	TestUser1ID         = int64(300)
	TestUser2ID         = int64(400)
	TestUser3ID         = int64(500)
	TestBetID           = int64(1)
	TestOtherBetID      = int64(2)
	TestOption1ID       = int64(11)
	TestOption2ID       = int64(12)
	TestOption3ID       = int64(13)
	TestForeignOptionID = int64(99)
)

// TestNow is the fixed clock used by service fixtures
var TestNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	UserRepo           *testhelpers.MockUserRepository
	WalletRepo         *testhelpers.MockWalletRepository
	BalanceHistoryRepo *testhelpers.MockBalanceHistoryRepository
	BetRepo            *testhelpers.MockBetRepository
	EventPublisher     *testhelpers.MockEventPublisher
	Hasher             *testhelpers.MockPasswordHasher
	Tokens             *testhelpers.MockTokenIssuer
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		UserRepo:           &testhelpers.MockUserRepository{},
		WalletRepo:         &testhelpers.MockWalletRepository{},
		BalanceHistoryRepo: &testhelpers.MockBalanceHistoryRepository{},
		BetRepo:            &testhelpers.MockBetRepository{},
		EventPublisher:     &testhelpers.MockEventPublisher{},
		Hasher:             &testhelpers.MockPasswordHasher{},
		Tokens:             &testhelpers.MockTokenIssuer{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.UserRepo.AssertExpectations(t)
	m.WalletRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.BetRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.Hasher.AssertExpectations(t)
	m.Tokens.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectUserLookup sets up user repository mock expectations
func (h *MockHelper) ExpectUserLookup(userID int64, user *entities.User) {
	h.mocks.UserRepo.On("GetByID", mock.Anything, userID).Return(user, nil)
}

// ExpectUserNotFound sets up user repository mock to return not found
func (h *MockHelper) ExpectUserNotFound(userID int64) {
	h.mocks.UserRepo.On("GetByID", mock.Anything, userID).Return(nil, nil)
}

// ExpectBetForShare sets up the shared-lock bet lookup used by joins
func (h *MockHelper) ExpectBetForShare(betID int64, bet *entities.Bet) {
	if bet == nil {
		h.mocks.BetRepo.On("GetByIDForShare", mock.Anything, betID).Return(nil, nil)
		return
	}
	h.mocks.BetRepo.On("GetByIDForShare", mock.Anything, betID).Return(bet, nil)
}

// ExpectBetForUpdate sets up the exclusive-lock bet lookup used by updates and resolution
func (h *MockHelper) ExpectBetForUpdate(betID int64, bet *entities.Bet) {
	if bet == nil {
		h.mocks.BetRepo.On("GetByIDForUpdate", mock.Anything, betID).Return(nil, nil)
		return
	}
	h.mocks.BetRepo.On("GetByIDForUpdate", mock.Anything, betID).Return(bet, nil)
}

// ExpectBetDetailLookup sets up bet detail repository mock expectations
func (h *MockHelper) ExpectBetDetailLookup(betID int64, detail *entities.BetDetail) {
	h.mocks.BetRepo.On("GetDetailByID", mock.Anything, betID).Return(detail, nil)
}

// ExpectOptionLookup sets up option repository mock expectations
func (h *MockHelper) ExpectOptionLookup(optionID int64, option *entities.Option) {
	if option == nil {
		h.mocks.BetRepo.On("GetOption", mock.Anything, optionID).Return(nil, nil)
		return
	}
	h.mocks.BetRepo.On("GetOption", mock.Anything, optionID).Return(option, nil)
}

// ExpectParticipationLookup sets up the existing-participation check
func (h *MockHelper) ExpectParticipationLookup(betID, userID int64, participation *entities.Participation) {
	if participation == nil {
		h.mocks.BetRepo.On("GetParticipation", mock.Anything, betID, userID).Return(nil, nil)
		return
	}
	h.mocks.BetRepo.On("GetParticipation", mock.Anything, betID, userID).Return(participation, nil)
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) {
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// ExpectWalletLock sets up the locked wallet read that precedes every balance change
func (h *MockHelper) ExpectWalletLock(userID int64, balance string) {
	h.mocks.WalletRepo.On("GetByUserIDForUpdate", mock.Anything, userID).Return(&entities.Wallet{
		ID:      userID,
		UserID:  userID,
		Balance: decimal.RequireFromString(balance),
	}, nil).Once()
}

// ExpectBalanceUpdate sets up wallet repository mock to update balance
func (h *MockHelper) ExpectBalanceUpdate(userID int64, newBalance string) {
	expected := decimal.RequireFromString(newBalance)
	h.mocks.WalletRepo.On("UpdateBalance", mock.Anything, userID, mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(expected)
	})).Return(nil).Once()
}

// ExpectBalanceHistoryRecordSimple sets up balance history repository mock with simple parameters
func (h *MockHelper) ExpectBalanceHistoryRecordSimple(userID int64, balanceAfter string, transactionType entities.TransactionType) {
	expected := decimal.RequireFromString(balanceAfter)
	h.mocks.BalanceHistoryRepo.On("Record", mock.Anything, mock.MatchedBy(func(bh *entities.BalanceHistory) bool {
		return bh.UserID == userID &&
			bh.BalanceAfter.Equal(expected) &&
			bh.TransactionType == transactionType
	})).Return(nil).Once()
}

// ExpectBalanceChange sets up a complete wallet movement: lock, update, ledger row and event
func (h *MockHelper) ExpectBalanceChange(userID int64, before, after string, transactionType entities.TransactionType) {
	h.ExpectWalletLock(userID, before)
	h.ExpectBalanceUpdate(userID, after)
	h.ExpectBalanceHistoryRecordSimple(userID, after, transactionType)
	h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		change, ok := e.(events.BalanceChangeEvent)
		return ok && change.UserID == userID && change.TransactionType == transactionType
	})).Return(nil).Once()
}

// BetScenario defines test scenario data for bets
type BetScenario struct {
	Users          []*entities.User
	Bet            *entities.Bet
	Options        []*entities.Option
	Participations []*entities.Participation
}

// NewBetScenario creates an open bet with two options, its creator, judge and three players
func NewBetScenario() *BetScenario {
	bet := &entities.Bet{
		ID:        TestBetID,
		CreatorID: TestCreatorID,
		JudgeID:   TestJudgeID,
		Title:     "Will it rain tomorrow?",
		CreatedAt: TestNow.Add(-time.Hour),
		ExpiresAt: TestNow.Add(24 * time.Hour),
	}
	return &BetScenario{
		Users: []*entities.User{
			newTestUser(TestCreatorID, "0911000100"),
			newTestUser(TestJudgeID, "0911000200"),
			newTestUser(TestUser1ID, "0911000300"),
			newTestUser(TestUser2ID, "0911000400"),
			newTestUser(TestUser3ID, "0911000500"),
		},
		Bet: bet,
		Options: []*entities.Option{
			{ID: TestOption1ID, BetID: TestBetID, Text: "Yes", Position: 1},
			{ID: TestOption2ID, BetID: TestBetID, Text: "No", Position: 2},
		},
		Participations: []*entities.Participation{},
	}
}

// User returns the scenario user with userID
func (s *BetScenario) User(userID int64) *entities.User {
	for _, u := range s.Users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}

// Option returns the option at index
func (s *BetScenario) Option(index int) *entities.Option {
	return s.Options[index]
}

// WithParticipation adds a stake on the option at optionIndex
func (s *BetScenario) WithParticipation(userID int64, optionIndex int, stake string) *BetScenario {
	id := int64(len(s.Participations) + 1)
	s.Participations = append(s.Participations, &entities.Participation{
		ID:       id,
		BetID:    s.Bet.ID,
		UserID:   userID,
		OptionID: s.Options[optionIndex].ID,
		Stake:    decimal.RequireFromString(stake),
		JoinedAt: TestNow.Add(time.Duration(id) * time.Minute),
	})
	return s
}

// Expired moves the expiry before TestNow
func (s *BetScenario) Expired() *BetScenario {
	s.Bet.ExpiresAt = TestNow.Add(-time.Minute)
	return s
}

// Resolved marks the bet resolved on the option at optionIndex
func (s *BetScenario) Resolved(optionIndex int) *BetScenario {
	resolvedAt := TestNow.Add(-time.Minute)
	s.Bet.IsResolved = true
	s.Bet.ResolvedAt = &resolvedAt
	s.Bet.WinnerOptionID = &s.Options[optionIndex].ID
	return s
}

// Detail returns the scenario as a bet detail
func (s *BetScenario) Detail() *entities.BetDetail {
	return &entities.BetDetail{
		Bet:            s.Bet,
		Options:        s.Options,
		Participations: s.Participations,
	}
}

func newTestUser(id int64, phone string) *entities.User {
	return &entities.User{
		ID:        id,
		FirstName: "Test",
		LastName:  phone[len(phone)-3:],
		Phone:     phone,
		IsActive:  true,
	}
}

// SetupTestConfig configures the test environment
func SetupTestConfig(t *testing.T) *config.Config {
	cfg := config.NewTestConfig()
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)
	return cfg
}

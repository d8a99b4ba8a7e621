package repository

import (
	"context"
	"testing"
	"time"

	"betpool/domain/entities"
	"betpool/repository/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetRepository_CreateAndGet(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUserWithWallet(t, testDB.DB, "0911100001", "0")
	judgeID := testutil.InsertUserWithWallet(t, testDB.DB, "0911100002", "0")

	bet := testutil.CreateTestBet(creatorID, judgeID, "Will it rain on Friday?")
	bet.Description = "Addis Ababa, Bole"
	options := testutil.CreateTestOptions("Yes", "No", "Only drizzle")

	require.NoError(t, repo.CreateWithOptions(ctx, bet, options))
	assert.NotZero(t, bet.ID)
	assert.False(t, bet.CreatedAt.IsZero())
	for i, opt := range options {
		assert.NotZero(t, opt.ID, "option %d should have an ID", i)
		assert.Equal(t, bet.ID, opt.BetID)
		assert.Equal(t, i, opt.Position)
	}

	t.Run("detail keeps option order", func(t *testing.T) {
		detail, err := repo.GetDetailByID(ctx, bet.ID)
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, "Will it rain on Friday?", detail.Bet.Title)
		assert.Equal(t, "Addis Ababa, Bole", detail.Bet.Description)
		assert.True(t, bet.ExpiresAt.Equal(detail.Bet.ExpiresAt))
		assert.False(t, detail.Bet.IsResolved)
		assert.Nil(t, detail.Bet.WinnerOptionID)
		require.Len(t, detail.Options, 3)
		assert.Equal(t, "Yes", detail.Options[0].Text)
		assert.Equal(t, options[1].ID, detail.Options[1].ID)
		assert.Equal(t, "Only drizzle", detail.Options[2].Text)
		assert.Empty(t, detail.Participations)
	})

	t.Run("missing bet returns nil", func(t *testing.T) {
		missing, err := repo.GetByID(ctx, 987654)
		require.NoError(t, err)
		assert.Nil(t, missing)

		detail, err := repo.GetDetailByID(ctx, 987654)
		require.NoError(t, err)
		assert.Nil(t, detail)

		opt, err := repo.GetOption(ctx, 987654)
		require.NoError(t, err)
		assert.Nil(t, opt)
	})

	t.Run("get option", func(t *testing.T) {
		opt, err := repo.GetOption(ctx, options[2].ID)
		require.NoError(t, err)
		require.NotNil(t, opt)
		assert.Equal(t, bet.ID, opt.BetID)
		assert.Equal(t, "Only drizzle", opt.Text)
	})

	t.Run("case-only duplicate options rejected by storage", func(t *testing.T) {
		dup := testutil.CreateTestBet(creatorID, judgeID, "Duplicate options")
		err := repo.CreateWithOptions(ctx, dup, testutil.CreateTestOptions("Yes", "YES"))
		assert.ErrorIs(t, err, entities.ErrIntegrityViolation)
	})
}

func TestBetRepository_UpdateAndReplaceOptions(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUserWithWallet(t, testDB.DB, "0911200001", "0")
	judgeID := testutil.InsertUserWithWallet(t, testDB.DB, "0911200002", "0")

	bet := testutil.CreateTestBet(creatorID, judgeID, "Original title")
	require.NoError(t, repo.CreateWithOptions(ctx, bet, testutil.CreateTestOptions("A", "B")))

	bet.Title = "New title"
	bet.Description = "now with a description"
	bet.ExpiresAt = bet.ExpiresAt.Add(48 * time.Hour)
	require.NoError(t, repo.Update(ctx, bet))

	stored, err := repo.GetByID(ctx, bet.ID)
	require.NoError(t, err)
	assert.Equal(t, "New title", stored.Title)
	assert.Equal(t, "now with a description", stored.Description)
	assert.True(t, bet.ExpiresAt.Equal(stored.ExpiresAt))

	replacement := testutil.CreateTestOptions("Red", "Green", "Blue")
	require.NoError(t, repo.ReplaceOptions(ctx, bet.ID, replacement))

	options, err := repo.GetOptions(ctx, bet.ID)
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, []string{"Red", "Green", "Blue"}, []string{options[0].Text, options[1].Text, options[2].Text})
	assert.Equal(t, replacement[0].ID, options[0].ID)

	t.Run("resolved bet is immutable", func(t *testing.T) {
		ok, err := repo.MarkResolved(ctx, bet.ID, options[0].ID, time.Now().UTC())
		require.NoError(t, err)
		require.True(t, ok)

		bet.Title = "Too late"
		err = repo.Update(ctx, bet)
		assert.ErrorIs(t, err, entities.ErrAlreadyResolved)
	})
}

func TestBetRepository_Participations(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUserWithWallet(t, testDB.DB, "0911300001", "0")
	judgeID := testutil.InsertUserWithWallet(t, testDB.DB, "0911300002", "0")
	aliceID := testutil.InsertUserWithWallet(t, testDB.DB, "0911300003", "100")
	bobID := testutil.InsertUserWithWallet(t, testDB.DB, "0911300004", "100")

	bet := testutil.CreateTestBet(creatorID, judgeID, "Derby winner")
	options := testutil.CreateTestOptions("Home", "Away")
	require.NoError(t, repo.CreateWithOptions(ctx, bet, options))

	alice := &entities.Participation{BetID: bet.ID, UserID: aliceID, OptionID: options[0].ID, Stake: decimal.RequireFromString("10.50")}
	bob := &entities.Participation{BetID: bet.ID, UserID: bobID, OptionID: options[1].ID, Stake: decimal.RequireFromString("20.00")}
	require.NoError(t, repo.CreateParticipation(ctx, alice))
	require.NoError(t, repo.CreateParticipation(ctx, bob))
	assert.NotZero(t, alice.ID)
	assert.False(t, alice.JoinedAt.IsZero())

	t.Run("second join rejected", func(t *testing.T) {
		again := &entities.Participation{BetID: bet.ID, UserID: aliceID, OptionID: options[1].ID, Stake: decimal.NewFromInt(1)}
		err := repo.CreateParticipation(ctx, again)
		assert.ErrorIs(t, err, entities.ErrAlreadyJoined)
	})

	t.Run("lookup and count", func(t *testing.T) {
		found, err := repo.GetParticipation(ctx, bet.ID, aliceID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.True(t, found.Stake.Equal(decimal.RequireFromString("10.50")))
		assert.Nil(t, found.Payout)
		assert.False(t, found.IsSettled())

		none, err := repo.GetParticipation(ctx, bet.ID, creatorID)
		require.NoError(t, err)
		assert.Nil(t, none)

		count, err := repo.CountParticipations(ctx, bet.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		all, err := repo.GetParticipations(ctx, bet.ID)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, alice.ID, all[0].ID)
		assert.Equal(t, bob.ID, all[1].ID)
	})

	t.Run("record payouts", func(t *testing.T) {
		history := testutil.CreateTestBalanceHistoryWithAmounts(aliceID, "100.00", "130.50", "30.50", entities.TransactionTypeBetPayout)
		require.NoError(t, NewBalanceHistoryRepository(testDB.DB).Record(ctx, history))

		won := decimal.RequireFromString("30.50")
		alice.Payout = &won
		alice.BalanceHistoryID = &history.ID
		zero := decimal.Zero
		bob.Payout = &zero

		require.NoError(t, repo.UpdateParticipationPayouts(ctx, []*entities.Participation{alice, bob}))

		stored, err := repo.GetParticipations(ctx, bet.ID)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		require.NotNil(t, stored[0].Payout)
		assert.True(t, stored[0].Payout.Equal(won))
		require.NotNil(t, stored[0].BalanceHistoryID)
		assert.Equal(t, history.ID, *stored[0].BalanceHistoryID)
		require.NotNil(t, stored[1].Payout)
		assert.True(t, stored[1].Payout.IsZero())
		assert.Nil(t, stored[1].BalanceHistoryID)
	})

	t.Run("empty payout batch is a no-op", func(t *testing.T) {
		assert.NoError(t, repo.UpdateParticipationPayouts(ctx, nil))
	})
}

func TestBetRepository_List(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()
	now := time.Now().UTC()

	creatorID := testutil.InsertUserWithWallet(t, testDB.DB, "0911400001", "0")
	judgeID := testutil.InsertUserWithWallet(t, testDB.DB, "0911400002", "0")
	playerID := testutil.InsertUserWithWallet(t, testDB.DB, "0911400003", "50")
	strangerID := testutil.InsertUserWithWallet(t, testDB.DB, "0911400004", "0")

	open := testutil.CreateTestBet(creatorID, judgeID, "open")
	openOptions := testutil.CreateTestOptions("x", "y")
	require.NoError(t, repo.CreateWithOptions(ctx, open, openOptions))

	expired := testutil.CreateTestBet(creatorID, judgeID, "expired")
	expired.ExpiresAt = now.Add(-time.Hour).Truncate(time.Microsecond)
	require.NoError(t, repo.CreateWithOptions(ctx, expired, testutil.CreateTestOptions("x", "y")))

	resolved := testutil.CreateTestBet(strangerID, strangerID, "resolved")
	resolvedOptions := testutil.CreateTestOptions("x", "y")
	require.NoError(t, repo.CreateWithOptions(ctx, resolved, resolvedOptions))
	ok, err := repo.MarkResolved(ctx, resolved.ID, resolvedOptions[1].ID, now)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, repo.CreateParticipation(ctx, &entities.Participation{
		BetID: open.ID, UserID: playerID, OptionID: openOptions[0].ID, Stake: decimal.NewFromInt(5),
	}))

	status := func(s entities.BetStatus) *entities.BetStatus { return &s }
	user := func(id int64) *int64 { return &id }
	titles := func(bets []*entities.Bet) []string {
		out := make([]string, len(bets))
		for i, b := range bets {
			out[i] = b.Title
		}
		return out
	}

	tests := []struct {
		name     string
		filter   entities.BetFilter
		expected []string
	}{
		{"all newest first", entities.BetFilter{}, []string{"resolved", "expired", "open"}},
		{"open", entities.BetFilter{Status: status(entities.BetStatusOpen)}, []string{"open"}},
		{"expired unresolved", entities.BetFilter{Status: status(entities.BetStatusExpiredUnresolved)}, []string{"expired"}},
		{"resolved", entities.BetFilter{Status: status(entities.BetStatusResolved)}, []string{"resolved"}},
		{"as creator", entities.BetFilter{UserID: user(creatorID)}, []string{"expired", "open"}},
		{"as judge", entities.BetFilter{UserID: user(judgeID)}, []string{"expired", "open"}},
		{"as participant", entities.BetFilter{UserID: user(playerID)}, []string{"open"}},
		{"user and status", entities.BetFilter{UserID: user(creatorID), Status: status(entities.BetStatusOpen)}, []string{"open"}},
		{"limit", entities.BetFilter{Limit: 1}, []string{"resolved"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bets, err := repo.List(ctx, tt.filter, now)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, titles(bets))
		})
	}
}

func TestBetRepository_ResolveAndDelete(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBetRepository(testDB.DB)
	ctx := context.Background()

	creatorID := testutil.InsertUserWithWallet(t, testDB.DB, "0911500001", "0")
	judgeID := testutil.InsertUserWithWallet(t, testDB.DB, "0911500002", "0")
	playerID := testutil.InsertUserWithWallet(t, testDB.DB, "0911500003", "50")

	t.Run("mark resolved only once", func(t *testing.T) {
		bet := testutil.CreateTestBet(creatorID, judgeID, "once")
		options := testutil.CreateTestOptions("a", "b")
		require.NoError(t, repo.CreateWithOptions(ctx, bet, options))

		resolvedAt := time.Now().UTC().Truncate(time.Microsecond)
		ok, err := repo.MarkResolved(ctx, bet.ID, options[1].ID, resolvedAt)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.MarkResolved(ctx, bet.ID, options[0].ID, resolvedAt)
		require.NoError(t, err)
		assert.False(t, ok)

		stored, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsResolved)
		require.NotNil(t, stored.WinnerOptionID)
		assert.Equal(t, options[1].ID, *stored.WinnerOptionID)
		require.NotNil(t, stored.ResolvedAt)
		assert.True(t, resolvedAt.Equal(*stored.ResolvedAt))
		assert.Equal(t, entities.BetStatusResolved, stored.StatusAt(time.Now()))
	})

	t.Run("delete cascades", func(t *testing.T) {
		bet := testutil.CreateTestBet(creatorID, judgeID, "doomed")
		options := testutil.CreateTestOptions("a", "b")
		require.NoError(t, repo.CreateWithOptions(ctx, bet, options))
		require.NoError(t, repo.CreateParticipation(ctx, &entities.Participation{
			BetID: bet.ID, UserID: playerID, OptionID: options[0].ID, Stake: decimal.NewFromInt(5),
		}))

		require.NoError(t, repo.Delete(ctx, bet.ID))

		gone, err := repo.GetByID(ctx, bet.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)

		opt, err := repo.GetOption(ctx, options[0].ID)
		require.NoError(t, err)
		assert.Nil(t, opt)

		count, err := repo.CountParticipations(ctx, bet.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("delete unknown bet", func(t *testing.T) {
		err := repo.Delete(ctx, 987654)
		assert.ErrorIs(t, err, entities.ErrBetNotFound)
	})
}

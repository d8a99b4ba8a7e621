package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"betpool/database"
	"betpool/domain/entities"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	betColumns = `id, creator_id, judge_id, title, description, created_at,
		expires_at, resolved_at, is_resolved, winner_option_id`
	participationColumns = `id, bet_id, user_id, option_id, stake, payout, balance_history_id, joined_at`

	defaultListLimit = 50
	maxListLimit     = 200
)

// BetRepository implements the BetRepository interface
type BetRepository struct {
	q Queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// NewBetRepositoryScoped creates a new bet repository bound to a transaction
func NewBetRepositoryScoped(tx Queryable) *BetRepository {
	return &BetRepository{q: tx}
}

// CreateWithOptions inserts bet and its options. Run it inside a transaction
// so neither is visible without the other.
func (r *BetRepository) CreateWithOptions(ctx context.Context, bet *entities.Bet, options []*entities.Option) error {
	query := `
		INSERT INTO bets (creator_id, judge_id, title, description, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		bet.CreatorID,
		bet.JudgeID,
		bet.Title,
		bet.Description,
		bet.ExpiresAt,
	).Scan(&bet.ID, &bet.CreatedAt)
	if err != nil {
		return translateError(fmt.Errorf("failed to create bet: %w", err))
	}

	return r.insertOptions(ctx, bet.ID, options)
}

// GetByID retrieves a bet without locking it
func (r *BetRepository) GetByID(ctx context.Context, id int64) (*entities.Bet, error) {
	return r.getBet(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1`, id)
}

// GetByIDForShare retrieves a bet and holds a shared lock on it, so joins can
// run side by side while resolution and deletion wait
func (r *BetRepository) GetByIDForShare(ctx context.Context, id int64) (*entities.Bet, error) {
	return r.getBet(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1 FOR SHARE`, id)
}

// GetByIDForUpdate retrieves a bet and holds an exclusive lock on it
func (r *BetRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Bet, error) {
	return r.getBet(ctx, `SELECT `+betColumns+` FROM bets WHERE id = $1 FOR UPDATE`, id)
}

// GetDetailByID retrieves a bet with its options and participations
func (r *BetRepository) GetDetailByID(ctx context.Context, id int64) (*entities.BetDetail, error) {
	bet, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bet == nil {
		return nil, nil
	}

	options, err := r.GetOptions(ctx, id)
	if err != nil {
		return nil, err
	}
	participations, err := r.GetParticipations(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entities.BetDetail{
		Bet:            bet,
		Options:        options,
		Participations: participations,
	}, nil
}

// List returns bets matching filter, newest first. Status is evaluated at now.
func (r *BetRepository) List(ctx context.Context, filter entities.BetFilter, now time.Time) ([]*entities.Bet, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		switch *filter.Status {
		case entities.BetStatusOpen:
			conditions = append(conditions, "NOT is_resolved AND expires_at >= "+arg(now))
		case entities.BetStatusExpiredUnresolved:
			conditions = append(conditions, "NOT is_resolved AND expires_at < "+arg(now))
		case entities.BetStatusResolved:
			conditions = append(conditions, "is_resolved")
		}
	}
	if filter.UserID != nil {
		p := arg(*filter.UserID)
		conditions = append(conditions, fmt.Sprintf(
			"(creator_id = %[1]s OR judge_id = %[1]s OR EXISTS (SELECT 1 FROM bet_participations bp WHERE bp.bet_id = bets.id AND bp.user_id = %[1]s))", p))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	query := `SELECT ` + betColumns + ` FROM bets`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	bets := []*entities.Bet{}
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}
	return bets, nil
}

// Update writes the mutable fields of an unresolved bet
func (r *BetRepository) Update(ctx context.Context, bet *entities.Bet) error {
	query := `
		UPDATE bets
		SET title = $2, description = $3, expires_at = $4
		WHERE id = $1 AND NOT is_resolved
	`

	tag, err := r.q.Exec(ctx, query, bet.ID, bet.Title, bet.Description, bet.ExpiresAt)
	if err != nil {
		return translateError(fmt.Errorf("failed to update bet %d: %w", bet.ID, err))
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrAlreadyResolved
	}
	return nil
}

// MarkResolved flips is_resolved from false to true. It reports false when
// another resolver got there first.
func (r *BetRepository) MarkResolved(ctx context.Context, betID, winningOptionID int64, resolvedAt time.Time) (bool, error) {
	query := `
		UPDATE bets
		SET is_resolved = TRUE, winner_option_id = $2, resolved_at = $3
		WHERE id = $1 AND NOT is_resolved
	`

	tag, err := r.q.Exec(ctx, query, betID, winningOptionID, resolvedAt)
	if err != nil {
		return false, translateError(fmt.Errorf("failed to resolve bet %d: %w", betID, err))
	}
	return tag.RowsAffected() == 1, nil
}

// Delete removes a bet; options and participations go with it
func (r *BetRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM bets WHERE id = $1`, id)
	if err != nil {
		return translateError(fmt.Errorf("failed to delete bet %d: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrBetNotFound
	}
	return nil
}

// Option operations

// GetOption retrieves a single option by ID
func (r *BetRepository) GetOption(ctx context.Context, optionID int64) (*entities.Option, error) {
	query := `
		SELECT id, bet_id, option_text, position, created_at
		FROM bet_options
		WHERE id = $1
	`

	var option entities.Option
	err := r.q.QueryRow(ctx, query, optionID).Scan(
		&option.ID,
		&option.BetID,
		&option.Text,
		&option.Position,
		&option.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get option %d: %w", optionID, err)
	}
	return &option, nil
}

// GetOptions returns the options of a bet in position order
func (r *BetRepository) GetOptions(ctx context.Context, betID int64) ([]*entities.Option, error) {
	query := `
		SELECT id, bet_id, option_text, position, created_at
		FROM bet_options
		WHERE bet_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options for bet %d: %w", betID, err)
	}
	defer rows.Close()

	options := []*entities.Option{}
	for rows.Next() {
		var option entities.Option
		if err := rows.Scan(&option.ID, &option.BetID, &option.Text, &option.Position, &option.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		options = append(options, &option)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate options: %w", err)
	}
	return options, nil
}

// ReplaceOptions swaps the whole option set of a bet
func (r *BetRepository) ReplaceOptions(ctx context.Context, betID int64, options []*entities.Option) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bet_options WHERE bet_id = $1`, betID); err != nil {
		return translateError(fmt.Errorf("failed to delete options of bet %d: %w", betID, err))
	}
	return r.insertOptions(ctx, betID, options)
}

func (r *BetRepository) insertOptions(ctx context.Context, betID int64, options []*entities.Option) error {
	if len(options) == 0 {
		return nil
	}

	query := `INSERT INTO bet_options (bet_id, option_text, position) VALUES`
	args := make([]any, 0, len(options)*3)
	byPosition := make(map[int]*entities.Option, len(options))
	for i, option := range options {
		if i > 0 {
			query += ","
		}
		n := i * 3
		query += fmt.Sprintf(" ($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, betID, option.Text, option.Position)
		byPosition[option.Position] = option
	}
	query += " RETURNING id, position, created_at"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return translateError(fmt.Errorf("failed to create options for bet %d: %w", betID, err))
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var position int
		var createdAt time.Time
		if err := rows.Scan(&id, &position, &createdAt); err != nil {
			return fmt.Errorf("failed to scan option ID: %w", err)
		}
		option, ok := byPosition[position]
		if !ok {
			return fmt.Errorf("unexpected option position %d returned", position)
		}
		option.ID = id
		option.BetID = betID
		option.CreatedAt = createdAt
	}
	if err := rows.Err(); err != nil {
		return translateError(fmt.Errorf("failed to create options for bet %d: %w", betID, err))
	}
	return nil
}

// Participation operations

// CreateParticipation inserts a participation. A second join by the same
// user fails with ErrAlreadyJoined through the unique constraint.
func (r *BetRepository) CreateParticipation(ctx context.Context, participation *entities.Participation) error {
	query := `
		INSERT INTO bet_participations (bet_id, user_id, option_id, stake)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_at
	`

	err := r.q.QueryRow(ctx, query,
		participation.BetID,
		participation.UserID,
		participation.OptionID,
		participation.Stake,
	).Scan(&participation.ID, &participation.JoinedAt)
	if err != nil {
		return translateError(fmt.Errorf("failed to create participation: %w", err))
	}
	return nil
}

// GetParticipation returns the participation of userID in betID, or nil
func (r *BetRepository) GetParticipation(ctx context.Context, betID, userID int64) (*entities.Participation, error) {
	query := `SELECT ` + participationColumns + ` FROM bet_participations WHERE bet_id = $1 AND user_id = $2`

	participation, err := scanParticipation(r.q.QueryRow(ctx, query, betID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participation of user %d in bet %d: %w", userID, betID, err)
	}
	return participation, nil
}

// GetParticipations returns every participation of a bet in join order
func (r *BetRepository) GetParticipations(ctx context.Context, betID int64) ([]*entities.Participation, error) {
	query := `
		SELECT ` + participationColumns + `
		FROM bet_participations
		WHERE bet_id = $1
		ORDER BY joined_at, id
	`

	rows, err := r.q.Query(ctx, query, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participations for bet %d: %w", betID, err)
	}
	defer rows.Close()

	participations := []*entities.Participation{}
	for rows.Next() {
		participation, err := scanParticipation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participation: %w", err)
		}
		participations = append(participations, participation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participations: %w", err)
	}
	return participations, nil
}

// CountParticipations returns the number of participations of a bet
func (r *BetRepository) CountParticipations(ctx context.Context, betID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bet_participations WHERE bet_id = $1`, betID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count participations for bet %d: %w", betID, err)
	}
	return count, nil
}

// UpdateParticipationPayouts records payouts and ledger links in one round trip
func (r *BetRepository) UpdateParticipationPayouts(ctx context.Context, participations []*entities.Participation) error {
	if len(participations) == 0 {
		return nil
	}

	query := `
		UPDATE bet_participations
		SET payout = $2, balance_history_id = $3
		WHERE id = $1
	`

	batch := &pgx.Batch{}
	for _, p := range participations {
		var payout decimal.NullDecimal
		if p.Payout != nil {
			payout = decimal.NewNullDecimal(*p.Payout)
		}
		batch.Queue(query, p.ID, payout, p.BalanceHistoryID)
	}

	results := r.q.SendBatch(ctx, batch)
	defer results.Close()

	for _, p := range participations {
		if _, err := results.Exec(); err != nil {
			return translateError(fmt.Errorf("failed to update payout of participation %d: %w", p.ID, err))
		}
	}
	return nil
}

func (r *BetRepository) getBet(ctx context.Context, query string, id int64) (*entities.Bet, error) {
	bet, err := scanBet(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet %d: %w", id, err)
	}
	return bet, nil
}

func scanBet(row pgx.Row) (*entities.Bet, error) {
	var bet entities.Bet
	err := row.Scan(
		&bet.ID,
		&bet.CreatorID,
		&bet.JudgeID,
		&bet.Title,
		&bet.Description,
		&bet.CreatedAt,
		&bet.ExpiresAt,
		&bet.ResolvedAt,
		&bet.IsResolved,
		&bet.WinnerOptionID,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func scanParticipation(row pgx.Row) (*entities.Participation, error) {
	var p entities.Participation
	var payout decimal.NullDecimal
	err := row.Scan(
		&p.ID,
		&p.BetID,
		&p.UserID,
		&p.OptionID,
		&p.Stake,
		&payout,
		&p.BalanceHistoryID,
		&p.JoinedAt,
	)
	if err != nil {
		return nil, err
	}
	if payout.Valid {
		p.Payout = &payout.Decimal
	}
	return &p, nil
}

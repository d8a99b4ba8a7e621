package repository

import (
	"errors"

	"betpool/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes surfaced as domain errors
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
	pgNumericOutOfRange   = "22003"
)

// constraintErrors maps named constraints to the domain error they represent
var constraintErrors = map[string]*entities.DomainError{
	"users_phone_key":                    entities.ErrPhoneInUse,
	"users_email_key":                    entities.ErrEmailInUse,
	"bet_participations_user_bet_unique": entities.ErrAlreadyJoined,
	"wallets_balance_non_negative":       entities.ErrInsufficientFunds,
}

// translateError turns constraint violations and column overflows into
// domain errors. Other errors are returned unchanged.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
		if domainErr, ok := constraintErrors[pgErr.ConstraintName]; ok {
			return domainErr.Wrap(err)
		}
		return entities.ErrIntegrityViolation.Wrap(err)
	case pgStringTooLong:
		return entities.ErrTooLong.Wrap(err)
	case pgNumericOutOfRange:
		return entities.ErrAmountTooLarge.Wrap(err)
	}
	return err
}

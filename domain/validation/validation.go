// Package validation holds the pure input rules shared by bet creation,
// update, join and account operations.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"betpool/domain/entities"

	"github.com/shopspring/decimal"
)

// Layouts carrying their own offset
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// Layouts without an offset, read in the caller's location
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

var phonePattern = regexp.MustCompile(`^(?:\+251|0)?(9\d{8})$`)

// PhoneCountryPrefix starts every stored phone number
const PhoneCountryPrefix = "+251"

// ParseInstant parses an ISO-8601-like timestamp. Timestamps without an
// offset are interpreted in loc. The result is in UTC.
func ParseInstant(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, entities.ErrInvalidFormat
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, entities.ErrInvalidFormat
}

// ParseFutureInstant parses text like ParseInstant and requires the instant
// to be strictly after now.
func ParseFutureInstant(text string, now time.Time, loc *time.Location) (time.Time, error) {
	t, err := ParseInstant(text, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !t.After(now) {
		return time.Time{}, entities.ErrNotInFuture
	}
	return t, nil
}

// RequireNonEmpty trims text and fails with ErrEmptyField bound to field when nothing is left
func RequireNonEmpty(field, text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", entities.ErrEmptyField.WithField(field).WithMessage(field + " cannot be empty.")
	}
	return trimmed, nil
}

// RequireMaxLen fails with ErrTooLong bound to field when text has more than
// max characters
func RequireMaxLen(field, text string, max int) (string, error) {
	if utf8.RuneCountInString(text) > max {
		return "", entities.ErrTooLong.WithField(field).
			WithMessage(fmt.Sprintf("%s cannot be longer than %d characters.", field, max))
	}
	return text, nil
}

// RequireText trims text and requires it to be non-empty and at most max characters
func RequireText(field, text string, max int) (string, error) {
	trimmed, err := RequireNonEmpty(field, text)
	if err != nil {
		return "", err
	}
	return RequireMaxLen(field, trimmed, max)
}

// RequirePassword checks that password is present and short enough for bcrypt,
// which rejects anything over 72 bytes. The password itself is not trimmed.
func RequirePassword(password string) error {
	if _, err := RequireNonEmpty("password", password); err != nil {
		return err
	}
	if len(password) > entities.MaxPasswordBytes {
		return entities.ErrTooLong.WithField("password").
			WithMessage(fmt.Sprintf("password cannot be longer than %d bytes.", entities.MaxPasswordBytes))
	}
	return nil
}

// RequireWithinLimit fails with ErrAmountTooLarge when amount does not fit a money column
func RequireWithinLimit(amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.Abs().GreaterThan(entities.MaxAmount) {
		return decimal.Zero, entities.ErrAmountTooLarge
	}
	return amount, nil
}

// RequirePositive fails with ErrNonPositiveStake when amount is zero or negative
func RequirePositive(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, entities.ErrNonPositiveStake
	}
	return amount, nil
}

// RequireCents fails when amount has more precision than the wallet stores
func RequireCents(amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.Equal(amount.Truncate(2)) {
		return decimal.Zero, entities.ErrInvalidAmount
	}
	return amount, nil
}

// ParseAmount parses a decimal amount with at most two fractional digits.
// Sign is not checked.
func ParseAmount(text string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return decimal.Zero, entities.ErrInvalidAmount.Wrap(err)
	}
	return RequireCents(amount)
}

// ValidatePhone checks a mobile number (an optional +251 or 0 prefix, then 9,
// then eight digits) and returns it as +2519XXXXXXXX so every spelling of a
// subscriber maps to one account.
func ValidatePhone(phone string) (string, error) {
	match := phonePattern.FindStringSubmatch(strings.TrimSpace(phone))
	if match == nil {
		return "", entities.ErrInvalidPhone.WithField("phone")
	}
	return PhoneCountryPrefix + match[1], nil
}

// NormalizePhone returns the stored form of phone for lookups. Text that is
// not a valid number comes back trimmed and will match no account.
func NormalizePhone(phone string) string {
	if canonical, err := ValidatePhone(phone); err == nil {
		return canonical
	}
	return strings.TrimSpace(phone)
}

// ValidateEmail checks that email is a bare address such as "a@example.com"
func ValidateEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if len(email) > entities.MaxEmailLength {
		return "", entities.ErrTooLong.WithField("email")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return "", entities.ErrInvalidEmail.WithField("email")
	}
	return strings.ToLower(email), nil
}

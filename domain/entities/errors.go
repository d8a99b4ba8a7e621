package entities

import (
	"errors"
	"strings"
)

// ErrorKind groups domain errors by how callers should react to them
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindIntegrity     ErrorKind = "integrity"
)

// DomainError is an expected failure of a domain operation. Message is safe
// to show to the caller; Err carries internal detail for logs.
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Field   string
	Issues  []*DomainError // set on aggregated validation failures
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Code, so a copy carrying a field name or a wrapped cause
// still matches its sentinel. Aggregated errors match any of their issues.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	if e.Code == t.Code {
		return true
	}
	for _, issue := range e.Issues {
		if issue.Is(target) {
			return true
		}
	}
	return false
}

// WithField returns a copy of the error bound to an input field
func (e *DomainError) WithField(field string) *DomainError {
	cp := *e
	cp.Field = field
	return &cp
}

// WithMessage returns a copy of the error with a more specific message
func (e *DomainError) WithMessage(message string) *DomainError {
	cp := *e
	cp.Message = message
	return &cp
}

// Wrap returns a copy of the error carrying cause for logging
func (e *DomainError) Wrap(cause error) *DomainError {
	cp := *e
	cp.Err = cause
	return &cp
}

// AsDomainError extracts a DomainError from an error chain
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// NewValidationError aggregates field failures into one validation error.
// A single issue is returned as is. It returns nil when there are no issues.
func NewValidationError(issues ...*DomainError) error {
	var collected []*DomainError
	for _, issue := range issues {
		if issue != nil {
			collected = append(collected, issue)
		}
	}
	switch len(collected) {
	case 0:
		return nil
	case 1:
		return collected[0]
	}

	messages := make([]string, 0, len(collected))
	for _, issue := range collected {
		if issue.Field != "" {
			messages = append(messages, issue.Field+": "+issue.Message)
		} else {
			messages = append(messages, issue.Message)
		}
	}
	return &DomainError{
		Kind:    KindValidation,
		Code:    "VALIDATION_FAILED",
		Message: strings.Join(messages, "; "),
		Issues:  collected,
	}
}

func newError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Validation
var (
	ErrInsufficientOptions = newError(KindValidation, "INSUFFICIENT_OPTIONS", "A bet needs at least two distinct options.")
	ErrInvalidFormat       = newError(KindValidation, "INVALID_FORMAT", "Invalid datetime format.")
	ErrNotInFuture         = newError(KindValidation, "NOT_IN_FUTURE", "The date must be in the future.")
	ErrEmptyField          = newError(KindValidation, "EMPTY_FIELD", "This field cannot be empty.")
	ErrNonPositiveStake    = newError(KindValidation, "NON_POSITIVE_STAKE", "Stake must be greater than zero.")
	ErrInvalidAmount       = newError(KindValidation, "INVALID_AMOUNT", "Amount must be a positive value with at most two decimal places.")
	ErrOptionMismatch      = newError(KindValidation, "OPTION_MISMATCH", "The option does not belong to this bet.")
	ErrInvalidPhone        = newError(KindValidation, "INVALID_PHONE", "Invalid phone number format.")
	ErrInvalidEmail        = newError(KindValidation, "INVALID_EMAIL", "Invalid email format.")
	ErrJudgeIsCreator      = newError(KindValidation, "JUDGE_IS_CREATOR", "The creator of a bet cannot also be its judge.")
	ErrTooLong             = newError(KindValidation, "TOO_LONG", "This field is too long.")
	ErrAmountTooLarge      = newError(KindValidation, "AMOUNT_TOO_LARGE", "Amount exceeds the largest supported value of 9999999999.99.")
)

// Not found
var (
	ErrUserNotFound   = newError(KindNotFound, "USER_NOT_FOUND", "User Not Found.")
	ErrBetNotFound    = newError(KindNotFound, "BET_NOT_FOUND", "Bet Not Found.")
	ErrOptionNotFound = newError(KindNotFound, "OPTION_NOT_FOUND", "Option Not Found.")
)

// Authorization
var (
	ErrNotAuthorized          = newError(KindAuthorization, "NOT_AUTHORIZED", "Only the judge of this bet can resolve it.")
	ErrJudgeCannotParticipate = newError(KindAuthorization, "JUDGE_CANNOT_PARTICIPATE", "The judge of a bet cannot participate in it.")
	ErrInvalidCredentials     = newError(KindAuthorization, "INVALID_CREDENTIALS", "Invalid credentials.")
	ErrAccountInactive        = newError(KindAuthorization, "ACCOUNT_INACTIVE", "Account is inactive.")
	ErrInvalidToken           = newError(KindAuthorization, "INVALID_TOKEN", "Invalid or expired token.")
)

// Conflict
var (
	ErrAlreadyResolved     = newError(KindConflict, "ALREADY_RESOLVED", "This bet has already been resolved.")
	ErrAlreadyJoined       = newError(KindConflict, "ALREADY_JOINED", "You have already joined this bet.")
	ErrBetExpired          = newError(KindConflict, "BET_EXPIRED", "This bet has expired.")
	ErrOptionsLocked       = newError(KindConflict, "OPTIONS_LOCKED", "Options cannot be changed once someone has joined the bet.")
	ErrInsufficientFunds   = newError(KindConflict, "INSUFFICIENT_FUNDS", "Insufficient wallet balance.")
	ErrPhoneInUse          = newError(KindConflict, "PHONE_IN_USE", "Phone number already in use.")
	ErrEmailInUse          = newError(KindConflict, "EMAIL_IN_USE", "Email already in use.")
	ErrUserAlreadyDeleted  = newError(KindConflict, "USER_ALREADY_DELETED", "User already deleted.")
	ErrSettledBetPermanent = newError(KindConflict, "SETTLED_BET_PERMANENT", "Resolved bets are permanent records and cannot be deleted.")
)

// Integrity
var (
	ErrIntegrityViolation = newError(KindIntegrity, "INTEGRITY_VIOLATION", "The request conflicts with existing data.")
)

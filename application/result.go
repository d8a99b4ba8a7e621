package application

import (
	"betpool/domain/entities"

	log "github.com/sirupsen/logrus"
)

// UnexpectedErrorMessage is the only detail callers see for failures that are
// not domain errors
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again."

// FieldError is one issue of a failed validation
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the envelope every operation returns. Failures are values here;
// nothing is raised to the caller.
type Result[T any] struct {
	Success bool               `json:"success"`
	Message string             `json:"message,omitempty"`
	Payload T                  `json:"payload,omitempty"`
	Code    string             `json:"code,omitempty"`
	Kind    entities.ErrorKind `json:"kind,omitempty"`
	Errors  []FieldError       `json:"errors,omitempty"`
}

func succeed[T any](payload T, message string) Result[T] {
	return Result[T]{Success: true, Message: message, Payload: payload}
}

// fail converts err into a failed envelope. Domain errors keep their message;
// anything else is logged with fields and hidden behind a generic message.
func fail[T any](err error, fields log.Fields) Result[T] {
	domainErr, isDomain := entities.AsDomainError(err)
	if !isDomain {
		log.WithFields(fields).WithError(err).Error("Operation failed unexpectedly")
		return Result[T]{Success: false, Message: UnexpectedErrorMessage}
	}

	log.WithFields(fields).WithFields(log.Fields{
		"code": domainErr.Code,
		"kind": domainErr.Kind,
	}).Debug("Operation rejected")

	result := Result[T]{
		Success: false,
		Message: domainErr.Message,
		Code:    domainErr.Code,
		Kind:    domainErr.Kind,
	}
	if domainErr.Field != "" {
		result.Errors = append(result.Errors, FieldError{Field: domainErr.Field, Code: domainErr.Code, Message: domainErr.Message})
	}
	for _, issue := range domainErr.Issues {
		result.Errors = append(result.Errors, FieldError{Field: issue.Field, Code: issue.Code, Message: issue.Message})
	}
	return result
}

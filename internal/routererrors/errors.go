// Package routererrors defines the routing domain error taxonomy.
//
// Every failure aborts the routing decision immediately: there is no partial
// result and no retry inside the engine. Callers map Type to an HTTP status
// (validation→400, unauthorized→401, not_found→404, inference/internal→500).
package routererrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes a domain error.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeInference    ErrorType = "inference"
	ErrorTypeInternal     ErrorType = "internal"
)

// DomainError is a typed error with an optional wrapped cause.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches on Type so sentinel errors compare by category and message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// New creates a DomainError.
func New(errType ErrorType, message string) *DomainError {
	return &DomainError{Type: errType, Message: message}
}

// Wrap creates a DomainError wrapping a cause.
func Wrap(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{Type: errType, Message: message, Err: err}
}

// Sentinel errors for the routing decision path.
var (
	ErrOrganizationNotFound = New(ErrorTypeNotFound, "organization not found")
	ErrRouterNotFound       = New(ErrorTypeNotFound, "router not found")
	ErrModelNotFound        = New(ErrorTypeNotFound, "model not found")
	ErrCategoryNotFound     = New(ErrorTypeNotFound, "category not found")

	ErrRouterUnavailable = New(ErrorTypeValidation, "router is inactive or deleted")
	ErrPromptLength      = New(ErrorTypeValidation, "prompt length invalid")
	ErrNoStrategyEnabled = New(ErrorTypeValidation, "not processed: no routing method enabled")
	ErrNoSentenceMatched = New(ErrorTypeValidation, "no sentence matched")

	ErrUnauthorizedToken  = New(ErrorTypeUnauthorized, "unauthorized access token")
	ErrUnauthorizedScopes = New(ErrorTypeUnauthorized, "access token lacks required scopes")
)

// InvalidSentence returns the validation error for a sentence entry with
// neither exact nor cosine matching enabled, naming the offending index.
func InvalidSentence(index int) *DomainError {
	return &DomainError{
		Type:    ErrorTypeValidation,
		Message: fmt.Sprintf("sentence %d has no matching mode enabled", index),
	}
}

// Inference wraps an underlying model fault.
func Inference(message string, err error) *DomainError {
	return Wrap(ErrorTypeInference, message, err)
}

// TypeOf returns the ErrorType of err, or internal for unclassified errors.
func TypeOf(err error) ErrorType {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Type
	}
	return ErrorTypeInternal
}

// HTTPStatus maps an error to its transport status code.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return TypeOf(err) == ErrorTypeValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return TypeOf(err) == ErrorTypeNotFound }

// IsUnauthorized reports whether err is an authorization error.
func IsUnauthorized(err error) bool { return TypeOf(err) == ErrorTypeUnauthorized }

// IsInference reports whether err is an inference error.
func IsInference(err error) bool { return TypeOf(err) == ErrorTypeInference }

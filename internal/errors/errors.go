package errors

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a failure before it is mapped to a status code.
type Kind int

const (
	// KindStore covers persistence and any other unexpected failure.
	KindStore Kind = iota
	// KindBadInput is a request that failed validation.
	KindBadInput
	// KindUnauthenticated means no principal was resolved for the request.
	KindUnauthenticated
	// KindUnauthorized means the supplied credentials or tokens were rejected.
	KindUnauthorized
	// KindForbidden means the principal lacks the required role.
	KindForbidden
	// KindNotFound means the addressed resource does not exist.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindBadInput:
		return "bad_input"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	default:
		return "store"
	}
}

// FieldViolation is a single failed validation rule.
type FieldViolation struct {
	Field   string
	Message string
}

func (v FieldViolation) String() string {
	return v.Message + ": " + v.Field
}

// Error is the error type returned by services and handlers.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldViolation
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadInput aggregates every violation into one message.
func BadInput(fields []FieldViolation) *Error {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	return &Error{Kind: KindBadInput, Message: strings.Join(parts, ", "), Fields: fields}
}

// BadRequest is a validation failure that is not tied to a field.
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadInput, Message: message}
}

// NotFound reports a missing resource.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Forbidden reports an authenticated principal without the required role.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Unauthenticated reports a request with no resolved principal.
func Unauthenticated(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: message}
}

// Unauthorized reports rejected credentials or tokens.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Store wraps an unexpected failure, keeping its message.
func Store(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindStore, Message: err.Error(), Err: err}
}

// KindOf returns the kind of err, defaulting to KindStore.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStore
}

// Is reports whether err is a classified error of kind k.
func Is(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message, Status: e.StatusCode}
}

// MapErrorToHTTP maps classified errors to HTTP errors. Forbidden is reported
// as 404 so role checks look the same as a missing record to clients.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		msg := "internal server error"
		if err != nil {
			msg = err.Error()
		}
		return NewHTTPError(http.StatusInternalServerError, msg)
	}
	switch e.Kind {
	case KindBadInput:
		return NewHTTPError(http.StatusBadRequest, e.Message)
	case KindUnauthenticated:
		return NewHTTPError(http.StatusForbidden, e.Message)
	case KindUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, e.Message)
	case KindForbidden, KindNotFound:
		return NewHTTPError(http.StatusNotFound, e.Message)
	default:
		return NewHTTPError(http.StatusInternalServerError, e.Message)
	}
}

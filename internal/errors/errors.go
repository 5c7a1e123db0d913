package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies a domain error. The HTTP layer maps each kind to one status code.
type Kind uint8

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindInvalid:
		return "invalid input"
	default:
		return "internal error"
	}
}

// Error is a domain error outcome. Err carries the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels below, so errors.Is(err, ErrNotFound) holds for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Message != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	// ErrNotFound matches any error of KindNotFound.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrConflict matches any error of KindConflict.
	ErrConflict = &Error{Kind: KindConflict}
	// ErrUnauthorized matches any error of KindUnauthorized.
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	// ErrForbidden matches any error of KindForbidden.
	ErrForbidden = &Error{Kind: KindForbidden}
	// ErrInvalid matches any error of KindInvalid.
	ErrInvalid = &Error{Kind: KindInvalid}
	// ErrInternal matches any error of KindInternal.
	ErrInternal = &Error{Kind: KindInternal}
)

// NotFound builds a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a uniqueness-violation error.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// Unauthorized builds an authentication failure.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// Forbidden builds an authorization failure.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

// Invalid builds an input validation failure.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Message: message}
}

// Internal wraps an unexpected failure. The cause is kept for logging, never shown to clients.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err. Errors that are not *Error are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Status:  e.StatusCode,
		Code:    e.Code,
		Message: e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) {
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}

	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}

	switch e.Kind {
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, msg, "NOT_FOUND")
	case KindConflict:
		return NewHTTPError(http.StatusConflict, msg, "CONFLICT")
	case KindUnauthorized:
		return NewHTTPError(http.StatusUnauthorized, msg, "UNAUTHORIZED")
	case KindForbidden:
		return NewHTTPError(http.StatusForbidden, msg, "FORBIDDEN")
	case KindInvalid:
		return NewHTTPError(http.StatusBadRequest, msg, "VALIDATION_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// ToEcho converts any error into an *echo.HTTPError carrying an ErrorResponse body.
func ToEcho(err error) *echo.HTTPError {
	httpErr := MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

// BadRequest builds a 400 echo error with the given code, for binding and validation failures.
func BadRequest(message, code string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    code,
		Message: message,
	})
}

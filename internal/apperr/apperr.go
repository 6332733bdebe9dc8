package apperr

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Machine-readable error codes surfaced to API clients.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeDatabase   = "database_error"
	CodeInternal   = "internal_error"
)

// Sentinel errors for code-based matching with errors.Is.
var (
	ErrValidation = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrNotFound   = &Error{Code: CodeNotFound, Message: "resource not found"}
	ErrDatabase   = &Error{Code: CodeDatabase, Message: "database error"}
	ErrInternal   = &Error{Code: CodeInternal, Message: "internal error"}

	statusCodeMap = map[string]int{
		CodeValidation: http.StatusBadRequest,
		CodeNotFound:   http.StatusNotFound,
		CodeDatabase:   http.StatusInternalServerError,
		CodeInternal:   http.StatusInternalServerError,
	}
)

// Error is the service-wide error type. Code drives the HTTP status,
// Message is safe to return to clients, Details carries field-level
// validation information.
type Error struct {
	Code    string
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Code, e.Message, e.cause.Error())
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches by code so errors.Is(err, apperr.ErrValidation) works on any
// validation error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.cause, target)
	}
	return e.Code == t.Code
}

// WithDetails attaches field-level details and returns the error.
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(err error, code, message string) *Error {
	return &Error{Code: code, Message: message, cause: errors.WithStack(err)}
}

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Databasef wraps a low-level storage error; the formatted message is what
// clients see, the cause stays in logs.
func Databasef(err error, format string, args ...interface{}) *Error {
	return &Error{Code: CodeDatabase, Message: fmt.Sprintf(format, args...), cause: errors.WithStack(err)}
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }

// HTTPStatus maps an error to the response status code. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		if code, ok := statusCodeMap[e.Code]; ok {
			return code
		}
	}
	return http.StatusInternalServerError
}

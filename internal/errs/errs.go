package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// 错误分类的哨兵值，供 errors.Is 判断
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrFileSystem = errors.New("file system error")
	ErrParsing    = errors.New("parsing error")
	ErrUnknown    = errors.New("unknown error")
)

// Error carries an error kind, the HTTP status it maps to, and an
// optional field name for validation failures.
type Error struct {
	StatusCode int
	Field      string
	kind       error
	message    string
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Message returns the client-safe description without the wrapped cause.
func (e *Error) Message() string {
	return e.message
}

// Unwrap lets errors.Is match against the kind sentinels.
func (e *Error) Unwrap() error {
	return e.kind
}

// Cause returns the underlying error, if any, for server-side logging.
func (e *Error) Cause() error {
	return e.cause
}

// NotFound marks a missing document or resource.
func NotFound(message string) *Error {
	return &Error{StatusCode: http.StatusNotFound, kind: ErrNotFound, message: message}
}

// Validation marks caller input that failed a check.
func Validation(message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, kind: ErrValidation, message: message}
}

// ValidationField marks a failed check on a specific field.
func ValidationField(field, message string) *Error {
	return &Error{StatusCode: http.StatusBadRequest, kind: ErrValidation, Field: field, message: message}
}

// FileSystem wraps a read/write failure not attributable to the caller.
func FileSystem(message string, cause error) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, kind: ErrFileSystem, message: message, cause: cause}
}

// Parsing wraps a frontmatter or markdown decode failure.
func Parsing(message string, cause error) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, kind: ErrParsing, message: message, cause: cause}
}

// Unknown wraps anything unexpected.
func Unknown(message string, cause error) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, kind: ErrUnknown, message: message, cause: cause}
}

// StatusOf maps any error to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.StatusCode
	}
	return http.StatusInternalServerError
}

// ClientMessage returns a message safe to send to the caller. Unexpected
// errors collapse to a generic message so internals never leak.
func ClientMessage(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		if typed.StatusCode < http.StatusInternalServerError {
			return typed.Message()
		}
	}
	return "Internal server error"
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

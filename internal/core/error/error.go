package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// ConfigurationErrorMessage describes a missing required handle or setting.
	ConfigurationErrorMessage = "invalid configuration"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes a missing Redis key.
	RedisNotFoundMessage = "redis key not found"
	// PostgresErrorMessage describes Postgres related failures.
	PostgresErrorMessage = "postgres operation failed"
	// SQLExecutionMessage describes a failure executing generated SQL.
	SQLExecutionMessage = "sql execution failed"
)

// ErrConfiguration marks errors caused by missing required configuration,
// e.g. a shared client handle absent from the invocation context. These are
// fatal and must never be retried.
var ErrConfiguration = errors.New("configuration error")

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// NewConfiguration creates a non-retryable configuration error. The detail
// is joined with ErrConfiguration so callers can match with errors.Is.
func NewConfiguration(detail string) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %s", ErrConfiguration, detail),
		Status:  http.StatusInternalServerError,
		Message: ConfigurationErrorMessage,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

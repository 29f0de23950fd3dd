package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Process exit codes.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorMismatch = 3 // compare mode: evaluators disagree
	ExitErrorConfig   = 4
	ExitErrorIO       = 5 // file or users store failure
	ExitErrorCanceled = 130
)

// ConfigError is an invalid flag, environment value or config file entry.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError is a failed sequence evaluation. Index is the first term
// that could not be produced.
type CalculationError struct {
	Evaluator string
	Index     int
	Cause     error
}

func (e CalculationError) Error() string {
	return fmt.Sprintf("%s evaluator stopped at F(%d): %v", e.Evaluator, e.Index, e.Cause)
}

func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError is a run mode that exceeded the configured --timeout. It
// unwraps to context.DeadlineExceeded.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Limit)
}

func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// ValidationError is an out-of-domain argument, such as a negative index.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StorageError reports a failed persistence operation (query, transaction,
// file access) together with its cause.
type StorageError struct {
	// Op names the failed operation, e.g. "add users".
	Op    string
	Cause error
}

func (e StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e StorageError) Unwrap() error { return e.Cause }

// WrapError prefixes err with a formatted message, keeping it in the chain.
// A nil err stays nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from cancellation or a deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCodeFor maps an error to the process exit code that best describes it.
// Context errors win over the type of the error wrapping them.
func ExitCodeFor(err error) int {
	var (
		configErr     ConfigError
		validationErr ValidationError
		storageErr    StorageError
	)
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	case errors.As(err, &storageErr):
		return ExitErrorIO
	default:
		return ExitErrorGeneric
	}
}

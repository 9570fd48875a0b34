package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Exit codes returned by the medboot binary.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorEstimate = 3   // Indicates an estimation failure.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ConfigError represents an invalid option: an unrecognised option name, a
// value outside its enumeration, or an out-of-range number. The run cannot
// start until the caller fixes it.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// ShapeMismatchError reports an operand whose row count disagrees with the
// number of observations, or a moderator chain whose length differs from the
// mediator chain.
type ShapeMismatchError struct {
	// Operand names the offending input ("Y", "M", "W", "C", ...).
	Operand string
	// Path is the zero-based mediator stage, or -1 when not path-specific.
	Path int
	// Want is the expected size.
	Want int
	// Got is the size that was supplied.
	Got int
}

// Error returns a formatted description of the mismatch.
func (e ShapeMismatchError) Error() string {
	if e.Path >= 0 {
		return fmt.Sprintf("shape mismatch for %s[%d]: want %d, got %d", e.Operand, e.Path, e.Want, e.Got)
	}
	return fmt.Sprintf("shape mismatch for %s: want %d, got %d", e.Operand, e.Want, e.Got)
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// PointEstimate is the Iteration value of an EstimationError raised while
// fitting the unresampled data.
const PointEstimate = -1

// EstimationError wraps a path estimator failure together with the bootstrap
// iteration that produced it.
type EstimationError struct {
	// Iteration is the zero-based bootstrap iteration, or PointEstimate.
	Iteration int
	// Cause is the underlying estimator error.
	Cause error
}

// Error returns the iteration and the cause message.
func (e EstimationError) Error() string {
	if e.Iteration == PointEstimate {
		return fmt.Sprintf("point estimate: %v", e.Cause)
	}
	return fmt.Sprintf("bootstrap iteration %d: %v", e.Iteration, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e EstimationError) Unwrap() error { return e.Cause }

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error returned by the bootstrap to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	var shapeErr ShapeMismatchError
	var valErr ValidationError
	var estErr EstimationError
	switch {
	case IsContextError(err):
		return ExitErrorCanceled
	case errors.As(err, &cfgErr), errors.As(err, &shapeErr), errors.As(err, &valErr):
		return ExitErrorConfig
	case errors.As(err, &estErr):
		return ExitErrorEstimate
	}
	return ExitErrorGeneric
}

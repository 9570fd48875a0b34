// Package apperrors defines structured error types for the mediation
// bootstrap, allowing callers to distinguish configuration problems, shape
// disagreements between operands and estimation failures, and to recover the
// underlying cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// Error types that carry a cause implement Unwrap() so errors.Is() and
// errors.As() see through them.
package apperrors

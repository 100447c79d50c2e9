package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Exit codes of the fibseq binary.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2 // deadline passed before the last term
	ExitErrorMismatch = 3 // verification tasks disagree
	ExitErrorConfig   = 4 // bad flag or environment value
	ExitErrorInput    = 5 // request rejected by the validator
	ExitErrorResource = 6 // request larger than the memory limit
	ExitErrorCanceled = 130
)

// ConfigError is a flag or environment value the process cannot start with.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError formats a ConfigError.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// CalculationError marks an unexpected failure while computing or writing
// a sequence. Its message is the cause's.
type CalculationError struct {
	Cause error
}

func (e CalculationError) Error() string { return e.Cause.Error() }
func (e CalculationError) Unwrap() error { return e.Cause }

// TimeoutError reports an operation abandoned at its deadline. Whatever
// it had computed is dropped.
type TimeoutError struct {
	Operation string
	Limit     time.Duration // 0 when the deadline came from the caller
}

func (e TimeoutError) Error() string {
	if e.Limit <= 0 {
		return fmt.Sprintf("operation %q timed out", e.Operation)
	}
	return fmt.Sprintf("operation %q timed out after %s", e.Operation, e.Limit)
}

// Unwrap reports context.DeadlineExceeded, so errors.Is sees through the
// conversion done by FromContext.
func (e TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// MemoryError compares what a computation needs with what it may use, in
// bytes. Available is 0 when the host does not say.
type MemoryError struct {
	Requested uint64
	Available uint64
	Limit     uint64
}

func (e MemoryError) Error() string {
	return fmt.Sprintf("memory error: requested %d bytes, available %d bytes (limit: %d)", e.Requested, e.Available, e.Limit)
}

// Human is the short form shown to users, e.g. "requires about 3.0 GiB,
// limit is 2.0 GiB".
func (e MemoryError) Human() string {
	return fmt.Sprintf("requires about %s, limit is %s", humanize.IBytes(e.Requested), humanize.IBytes(e.Limit))
}

// WrapError prefixes err with a formatted message and keeps it in the
// chain. A nil err stays nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err stems from a canceled or expired
// context.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FromContext turns the ctx.Err() seen by operation into a TimeoutError for
// deadlines and a wrapped context.Canceled otherwise. nil stays nil.
func FromContext(err error, operation string, limit time.Duration) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError{Operation: operation, Limit: limit}
	default:
		return WrapError(err, "%s canceled", operation)
	}
}

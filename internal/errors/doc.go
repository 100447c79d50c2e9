// Package apperrors holds the error types of fibseq and their mapping to
// exit codes and HTTP statuses.
//
// Input failures (a value that is not a number, or one out of range) and
// resource failures are SequenceErrors told apart by Kind. Deadlines become
// TimeoutError and bad configuration ConfigError. Every type with a cause
// implements Unwrap, so callers use errors.Is and errors.As rather than
// comparing messages.
package apperrors

package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failed sequence request.
type Kind string

const (
	// KindInvalidNumber means an input could not be parsed as an integer.
	KindInvalidNumber Kind = "InvalidNumber"
	// KindOutOfRange means n lies outside the accepted index range.
	KindOutOfRange Kind = "OutOfRange"
	// KindResourceExhausted means the host cannot supply the memory the
	// big-integer terms need.
	KindResourceExhausted Kind = "ResourceExhausted"
)

// MsgInvalidNumber is shown for unparsable input and for negative n. The
// presentation layer displays it verbatim.
const MsgInvalidNumber = "Please enter a valid number"

// SequenceError is the tagged failure returned instead of a sequence.
type SequenceError struct {
	// Kind is the failure class.
	Kind Kind
	// Field names the offending input ("n", "startx", "starty"); empty for
	// resource failures.
	Field string
	// Message is the human-readable text returned to callers.
	Message string
	// Cause is an optional underlying error (e.g., a MemoryError).
	Cause error
}

// Error returns the user-facing message.
func (e *SequenceError) Error() string { return e.Message }

// Unwrap returns the underlying cause, if any.
func (e *SequenceError) Unwrap() error { return e.Cause }

// NewInvalidNumber reports an input that is not an integer.
func NewInvalidNumber(field string) error {
	return &SequenceError{Kind: KindInvalidNumber, Field: field, Message: MsgInvalidNumber}
}

// NewOutOfRange reports an index outside the accepted range with the given
// message.
func NewOutOfRange(field, message string) error {
	return &SequenceError{Kind: KindOutOfRange, Field: field, Message: message}
}

// NewResourceExhausted reports that a computation needs more memory than the
// effective limit allows.
func NewResourceExhausted(cause MemoryError) error {
	return &SequenceError{
		Kind:    KindResourceExhausted,
		Message: fmt.Sprintf("Not enough memory to compute this sequence (%s)", cause.Human()),
		Cause:   cause,
	}
}

// KindOf returns the Kind of the first SequenceError in err's chain, or the
// empty Kind when there is none.
func KindOf(err error) Kind {
	var seqErr *SequenceError
	if errors.As(err, &seqErr) {
		return seqErr.Kind
	}
	return ""
}

// IsKind reports whether err carries a SequenceError of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

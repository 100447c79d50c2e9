package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ColorProvider supplies ANSI sequences for error output. It keeps this
// package free of a dependency on the ui package.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	switch KindOf(err) {
	case KindInvalidNumber, KindOutOfRange:
		return ExitErrorInput
	case KindResourceExhausted:
		return ExitErrorResource
	}
	var cfgErr ConfigError
	if errors.As(err, &cfgErr) {
		return ExitErrorConfig
	}
	var timeoutErr TimeoutError
	if errors.As(err, &timeoutErr) {
		return ExitErrorTimeout
	}
	if IsContextError(err) {
		if errors.Is(err, context.DeadlineExceeded) {
			return ExitErrorTimeout
		}
		return ExitErrorCanceled
	}
	return ExitErrorGeneric
}

// HTTPStatus maps an error to the status code returned by the HTTP service.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindInvalidNumber, KindOutOfRange:
		return http.StatusBadRequest
	case KindResourceExhausted:
		return http.StatusServiceUnavailable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	if IsContextError(err) {
		// The client went away; nobody reads this status.
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// HandleCalculationError prints a diagnosis of err to out and returns the
// matching exit code. A nil error returns ExitSuccess without output.
//
// Parameters:
//   - err: The error returned by the computation.
//   - duration: Time spent before the failure (0 when unknown).
//   - out: Destination for the diagnosis.
//   - colors: ANSI colour provider.
//
// Returns:
//   - int: The exit code.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	code := ExitCode(err)
	msgSuffix := ""
	if duration > 0 {
		msgSuffix = fmt.Sprintf(" after %s%s%s", colors.Yellow(), duration, colors.Reset())
	}
	switch code {
	case ExitErrorTimeout:
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The computation did not finish in time%s.%s\n", colors.Red(), msgSuffix, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled%s.%s\n", colors.Yellow(), msgSuffix, colors.Reset())
	case ExitErrorInput:
		fmt.Fprintf(out, "%sStatus: Invalid input. %v%s\n", colors.Red(), err, colors.Reset())
	case ExitErrorResource:
		fmt.Fprintf(out, "%sStatus: Resource exhausted. %v%s\n", colors.Red(), err, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure. Unexpected error%s: %v%s\n", colors.Red(), msgSuffix, err, colors.Reset())
	}
	return code
}

package logging

import (
	"io"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Logger is the structured logging interface of the HTTP server.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Debug(msg string, fields ...Field)
	// With returns a logger that adds fields to every entry.
	With(fields ...Field) Logger
}

// Field is a structured key/value attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// String creates a string field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int creates an int field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 creates a uint64 field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field { return Field{Key: key, Value: value} }

// Err creates a field under the "error" key.
func Err(err error) Field { return Field{Key: "error", Value: err} }

// ZerologAdapter implements Logger on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

var _ Logger = (*ZerologAdapter)(nil)

// NewZerologAdapter wraps an existing zerolog.Logger.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Zerolog returns the underlying logger, for packages that log with zerolog
// directly (the sequence engine, the GC controller).
func (z *ZerologAdapter) Zerolog() zerolog.Logger { return z.logger }

// Info logs at info level.
func (z *ZerologAdapter) Info(msg string, fields ...Field) {
	applyFields(z.logger.Info(), fields).Msg(msg)
}

// Error logs at error level. A nil err is allowed.
func (z *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	applyFields(z.logger.Error().Err(err), fields).Msg(msg)
}

// Debug logs at debug level.
func (z *ZerologAdapter) Debug(msg string, fields ...Field) {
	applyFields(z.logger.Debug(), fields).Msg(msg)
}

// With returns a child logger carrying fields.
func (z *ZerologAdapter) With(fields ...Field) Logger {
	ctx := z.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, fieldValue(f.Value))
	}
	return &ZerologAdapter{logger: ctx.Logger()}
}

// fieldValue renders errors as text; zerolog would encode them as {}
// through Interface.
func fieldValue(v any) any {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return v
}

func applyFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		case time.Duration:
			e = e.Dur(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

// ParseLevel converts a level name to a zerolog level. Empty and unknown
// names fall back to info.
func ParseLevel(name string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

// NewZerolog builds the process logger. format is "json" or "console".
// Console output is coloured only when w is a terminal and noColor is
// false.
func NewZerolog(w io.Writer, level, format string, noColor bool) zerolog.Logger {
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: noColor || !isTerminal(w)}
	}
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}

// isTerminal reports whether w is a file attached to a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

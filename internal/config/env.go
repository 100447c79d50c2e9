// This file contains environment variable overrides for configuration.

package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// environment holds the FIBSEQ_* variables. A nil field means the variable
// is unset.
type environment struct {
	N              *string        `env:"N"`
	StartX         *string        `env:"STARTX"`
	StartY         *string        `env:"STARTY"`
	Serve          *bool          `env:"SERVE"`
	Addr           *string        `env:"ADDR"`
	Timeout        *time.Duration `env:"TIMEOUT"`
	RequestTimeout *time.Duration `env:"REQUEST_TIMEOUT"`
	MemoryLimit    *string        `env:"MEMORY_LIMIT"`
	GCMode         *string        `env:"GC_MODE"`
	MaxN           *int           `env:"MAX_N"`
	MaxTermN       *int           `env:"MAX_TERM_N"`
	Verbose        *bool          `env:"VERBOSE"`
	Quiet          *bool          `env:"QUIET"`
	Calculate      *bool          `env:"CALCULATE"`
	Output         *string        `env:"OUTPUT"`
	LastDigits     *int           `env:"LAST_DIGITS"`
	Term           *bool          `env:"TERM"`
	Verify         *bool          `env:"VERIFY"`
	NoColor        *bool          `env:"NO_COLOR"`
	LogLevel       *string        `env:"LOG_LEVEL"`
	LogFormat      *string        `env:"LOG_FORMAT"`
	CORSOrigins    *string        `env:"CORS_ORIGINS"`
	OTelEndpoint   *string        `env:"OTEL_ENDPOINT"`
}

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride ties the CLI flag name(s) of one setting to the function
// copying its environment value, if present, into the configuration.
type envOverride struct {
	flags []string
	apply func(*AppConfig, *environment)
}

// set copies *src into *dst when src is non-nil.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	{[]string{"n"}, func(c *AppConfig, e *environment) { set(&c.N, e.N) }},
	{[]string{"startx"}, func(c *AppConfig, e *environment) { set(&c.StartX, e.StartX) }},
	{[]string{"starty"}, func(c *AppConfig, e *environment) { set(&c.StartY, e.StartY) }},
	{[]string{"serve"}, func(c *AppConfig, e *environment) { set(&c.Serve, e.Serve) }},
	{[]string{"addr"}, func(c *AppConfig, e *environment) { set(&c.Addr, e.Addr) }},
	{[]string{"timeout"}, func(c *AppConfig, e *environment) { set(&c.Timeout, e.Timeout) }},
	{[]string{"request-timeout"}, func(c *AppConfig, e *environment) { set(&c.RequestTimeout, e.RequestTimeout) }},
	{[]string{"memory-limit"}, func(c *AppConfig, e *environment) { set(&c.MemoryLimit, e.MemoryLimit) }},
	{[]string{"gc-mode"}, func(c *AppConfig, e *environment) { set(&c.GCMode, e.GCMode) }},
	{[]string{"max-n"}, func(c *AppConfig, e *environment) { set(&c.MaxN, e.MaxN) }},
	{[]string{"max-term-n"}, func(c *AppConfig, e *environment) { set(&c.MaxTermN, e.MaxTermN) }},
	{[]string{"v", "verbose"}, func(c *AppConfig, e *environment) { set(&c.Verbose, e.Verbose) }},
	{[]string{"q", "quiet"}, func(c *AppConfig, e *environment) { set(&c.Quiet, e.Quiet) }},
	{[]string{"c", "calculate"}, func(c *AppConfig, e *environment) { set(&c.ShowValue, e.Calculate) }},
	{[]string{"o", "output"}, func(c *AppConfig, e *environment) { set(&c.OutputFile, e.Output) }},
	{[]string{"last-digits"}, func(c *AppConfig, e *environment) { set(&c.LastDigits, e.LastDigits) }},
	{[]string{"term"}, func(c *AppConfig, e *environment) { set(&c.Term, e.Term) }},
	{[]string{"verify"}, func(c *AppConfig, e *environment) { set(&c.Verify, e.Verify) }},
	{[]string{"no-color"}, func(c *AppConfig, e *environment) { set(&c.NoColor, e.NoColor) }},
	{[]string{"log-level"}, func(c *AppConfig, e *environment) { set(&c.LogLevel, e.LogLevel) }},
	{[]string{"log-format"}, func(c *AppConfig, e *environment) { set(&c.LogFormat, e.LogFormat) }},
	{[]string{"cors-origins"}, func(c *AppConfig, e *environment) { set(&c.CORSOrigins, e.CORSOrigins) }},
	{[]string{"otel-endpoint"}, func(c *AppConfig, e *environment) { set(&c.OTelEndpoint, e.OTelEndpoint) }},
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
// A variable that does not parse (e.g. FIBSEQ_TIMEOUT=soon) is a
// ConfigError.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) error {
	var e environment
	if err := env.ParseWithOptions(&e, env.Options{Prefix: EnvPrefix}); err != nil {
		return apperrors.NewConfigError("invalid environment: %v", err)
	}
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		o.apply(config, &e)
	}
	return nil
}

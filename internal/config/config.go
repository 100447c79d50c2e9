// Package config parses command-line flags and FIBSEQ_* environment
// variables into an AppConfig.
//
// Priority, highest first: explicit flags, environment variables, defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/sequence/memory"
)

// EnvPrefix is the prefix of every environment variable read by ParseConfig.
const EnvPrefix = "FIBSEQ_"

// Defaults.
const (
	DefaultAddr           = ":8080"
	DefaultTimeout        = 5 * time.Minute
	DefaultRequestTimeout = 60 * time.Second
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	// MaxLastDigits bounds --last-digits; the modulus 10^K stays small.
	MaxLastDigits = 10_000
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// N, StartX and StartY are kept as text so the one-shot mode validates
	// them with the same parser and messages as the HTTP service.
	N      string
	StartX string
	StartY string

	// Serve starts the HTTP service instead of a one-shot computation.
	Serve bool
	// Addr is the listen address in serve mode.
	Addr string
	// Timeout bounds a one-shot computation.
	Timeout time.Duration
	// RequestTimeout bounds each HTTP request in serve mode.
	RequestTimeout time.Duration
	// MemoryLimit caps the estimated footprint of a sequence, e.g. "4GiB".
	// Empty means only host limits apply.
	MemoryLimit string
	// GCMode is "auto", "aggressive" or "disabled".
	GCMode string
	// MaxN is the largest index accepted for a full sequence.
	MaxN int
	// MaxTermN is the largest index accepted for a single term.
	MaxTermN int

	Verbose   bool
	Quiet     bool
	ShowValue bool
	// OutputFile receives every term, one per line.
	OutputFile string
	// LastDigits, when positive, prints a(n) mod 10^LastDigits.
	LastDigits int
	// Term prints only a(n), computed by fast doubling.
	Term bool
	// Verify cross-checks a(n) between the engine and fast doubling.
	Verify bool
	NoColor bool

	LogLevel  string
	LogFormat string
	// CORSOrigins is a comma-separated list of allowed origins ("*" for any).
	CORSOrigins string
	// OTelEndpoint enables OTLP/HTTP trace export when non-empty.
	OTelEndpoint string
}

// MemoryLimitBytes returns MemoryLimit in bytes. Validate guarantees it
// parses.
func (c AppConfig) MemoryLimitBytes() uint64 {
	v, _ := memory.ParseMemoryLimit(c.MemoryLimit)
	return v
}

// AllowedOrigins splits CORSOrigins into trimmed, non-empty entries.
func (c AppConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// ParseConfig parses args (without the program name) into an AppConfig,
// applies FIBSEQ_* overrides for flags that were not set and validates the
// result. Usage and parse errors are written to errorOutput. A --help
// request returns flag.ErrHelp.
func ParseConfig(programName string, args []string, errorOutput io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorOutput)

	cfg := AppConfig{}
	fs.StringVar(&cfg.N, "n", "", "Index of the last term (0 to max-n).")
	fs.StringVar(&cfg.StartX, "startx", "", "First seed a(0) (default 0).")
	fs.StringVar(&cfg.StartY, "starty", "", "Second seed a(1) (default 1).")
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP service.")
	fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "Listen address in serve mode.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum duration of a one-shot computation.")
	fs.DurationVar(&cfg.RequestTimeout, "request-timeout", DefaultRequestTimeout, "Maximum duration of one HTTP request.")
	fs.StringVar(&cfg.MemoryLimit, "memory-limit", "", "Memory budget for a sequence (e.g. 4GiB). Empty means host limits only.")
	fs.StringVar(&cfg.GCMode, "gc-mode", string(memory.GCModeAuto), "GC control: auto, aggressive or disabled.")
	fs.IntVar(&cfg.MaxN, "max-n", sequence.DefaultMaxN, "Largest index accepted for a full sequence.")
	fs.IntVar(&cfg.MaxTermN, "max-term-n", sequence.DefaultMaxTermN, "Largest index accepted for a single term.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose output (full values).")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Verbose output (full values).")
	fs.BoolVar(&cfg.Quiet, "q", false, "Quiet mode: one term per line, nothing else.")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Quiet mode: one term per line, nothing else.")
	fs.BoolVar(&cfg.ShowValue, "c", false, "Display the computed terms.")
	fs.BoolVar(&cfg.ShowValue, "calculate", false, "Display the computed terms.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Write every term to this file.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write every term to this file.")
	fs.IntVar(&cfg.LastDigits, "last-digits", 0, "Print only the last K digits of a(n).")
	fs.BoolVar(&cfg.Term, "term", false, "Print only a(n), computed by fast doubling.")
	fs.BoolVar(&cfg.Verify, "verify", false, "Cross-check a(n) against fast doubling.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colours (also honours NO_COLOR).")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn, error.")
	fs.StringVar(&cfg.LogFormat, "log-format", DefaultLogFormat, "Log format: console or json.")
	fs.StringVar(&cfg.CORSOrigins, "cors-origins", "", "Comma-separated CORS origins (\"*\" for any).")
	fs.StringVar(&cfg.OTelEndpoint, "otel-endpoint", "", "OTLP/HTTP endpoint URL for traces.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if err := finish(&cfg, fs); err != nil {
		fmt.Fprintln(errorOutput, err)
		return AppConfig{}, err
	}
	return cfg, nil
}

// finish applies the environment and validates what the flag set parsed.
func finish(cfg *AppConfig, fs *flag.FlagSet) error {
	if fs.NArg() > 0 {
		return apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if err := applyEnvOverrides(cfg, fs); err != nil {
		return err
	}
	return cfg.Validate()
}

// Validate checks the semantic consistency of the configuration. The
// sequence inputs themselves are validated later by the sequence package.
func (c AppConfig) Validate() error {
	if !c.Serve && strings.TrimSpace(c.N) == "" {
		return apperrors.NewConfigError("-n is required unless --serve is set")
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.RequestTimeout <= 0 {
		return apperrors.NewConfigError("request-timeout must be positive, got %s", c.RequestTimeout)
	}
	if _, err := memory.ParseMemoryLimit(c.MemoryLimit); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if !memory.ValidGCMode(c.GCMode) {
		return apperrors.NewConfigError("invalid gc-mode %q: use auto, aggressive or disabled", c.GCMode)
	}
	if c.MaxN <= 0 {
		return apperrors.NewConfigError("max-n must be positive, got %d", c.MaxN)
	}
	if c.MaxTermN <= 0 {
		return apperrors.NewConfigError("max-term-n must be positive, got %d", c.MaxTermN)
	}
	if c.LastDigits < 0 || c.LastDigits > MaxLastDigits {
		return apperrors.NewConfigError("last-digits must be between 0 and %d, got %d", MaxLastDigits, c.LastDigits)
	}
	if c.LastDigits > 0 && c.Term {
		return apperrors.NewConfigError("--last-digits and --term are mutually exclusive")
	}
	if c.Quiet && c.Verbose {
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return apperrors.NewConfigError("invalid log-format %q: use console or json", c.LogFormat)
	}
	return nil
}

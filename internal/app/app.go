// Package app wires configuration, logging, telemetry and the sequence
// engine into the fibseq command: a one-shot computation or the HTTP
// service.
package app

import (
	"context"
	"errors"
	"flag"
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/fibseq/internal/config"
	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/sequence/memory"
	"github.com/agbru/fibseq/internal/telemetry"
	"github.com/agbru/fibseq/internal/ui"
)

// Application represents the fibseq application instance.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	logger zerolog.Logger
	probe  memory.HostProbe
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithHostProbe replaces the host memory probe used by the engine.
func WithHostProbe(p memory.HostProbe) AppOption {
	return func(a *Application) { a.probe = p }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	programName := "fibseq"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}
	app.Config = cfg
	app.logger = logging.NewZerolog(errWriter, cfg.LogLevel, cfg.LogFormat, cfg.NoColor || ui.NoColorEnv())
	return app, nil
}

// Run executes the application based on the configured mode and returns
// the process exit code.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	shutdown, err := telemetry.Setup(ctx, a.Config.OTelEndpoint, Version)
	if err != nil {
		a.logger.Error().Err(err).Str("endpoint", a.Config.OTelEndpoint).Msg("tracing disabled")
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			a.logger.Debug().Err(err).Msg("flush traces")
		}
	}()

	if a.Config.Serve {
		return a.runServer(ctx)
	}
	return a.runCalculate(ctx, out)
}

// newEngine builds an engine from the configuration.
func (a *Application) newEngine() *sequence.Engine {
	return sequence.NewEngine(sequence.Options{
		MemoryLimit: a.Config.MemoryLimitBytes(),
		GCMode:      a.Config.GCMode,
		Logger:      a.logger,
		HostProbe:   a.probe,
	})
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}

// ExitCodeFor returns the exit code for an error returned by New: success
// for --help, ExitErrorConfig for flag, environment and validation errors.
func ExitCodeFor(err error) int {
	if err == nil || IsHelpError(err) {
		return apperrors.ExitSuccess
	}
	return apperrors.ExitErrorConfig
}

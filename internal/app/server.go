package app

import (
	"context"
	"os/signal"
	"syscall"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
	"github.com/agbru/fibseq/internal/server"
)

// runServer serves HTTP until SIGINT or SIGTERM.
func (a *Application) runServer(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	logger := logging.NewZerologAdapter(a.logger).With(logging.String("component", "server"))
	srv := server.New(a.newEngine(), a.serverConfig(), logger)
	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	logger.Info("server stopped")
	return apperrors.ExitSuccess
}

func (a *Application) serverConfig() server.Config {
	return server.Config{
		Addr:           a.Config.Addr,
		RequestTimeout: a.Config.RequestTimeout,
		Limits:         sequence.Limits{MaxN: a.Config.MaxN},
		TermLimits:     sequence.Limits{MaxN: a.Config.MaxTermN},
		Security:       server.SecurityConfigFor(a.Config.AllowedOrigins()),
	}
}

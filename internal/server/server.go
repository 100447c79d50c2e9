// Package server exposes the sequence engine over HTTP.
//
// Routes:
//
//	GET  /api/fib?n=&startx=&starty=   full sequence
//	POST /api/fib                      same, JSON body {"n":..,"startx":..,"starty":..}
//	GET  /api/fib/term?n=&startx=&starty=
//	GET  /healthz
//	GET  /metrics
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
)

// Timeouts applied to the underlying http.Server.
const (
	ReadHeaderTimeout      = 10 * time.Second
	IdleTimeout            = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// RequestTimeout bounds the computation of one request.
	RequestTimeout time.Duration
	// ShutdownTimeout bounds the drain of in-flight requests.
	ShutdownTimeout time.Duration
	// Limits bounds n for /api/fib.
	Limits sequence.Limits
	// TermLimits bounds n for /api/fib/term.
	TermLimits sequence.Limits
	// FFTThreshold is passed to sequence.Term.
	FFTThreshold int
	Security     SecurityConfig
}

// Server serves sequence requests.
type Server struct {
	cfg        Config
	engine     *sequence.Engine
	logger     logging.Logger
	metrics    *Metrics
	httpServer *http.Server
}

// New creates a server around engine. Zero-valued limits and timeouts take
// their defaults.
func New(engine *sequence.Engine, cfg Config, logger logging.Logger) *Server {
	if cfg.Limits.MaxN <= 0 {
		cfg.Limits = sequence.DefaultLimits()
	}
	if cfg.TermLimits.MaxN <= 0 {
		cfg.TermLimits = sequence.TermLimits()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.FFTThreshold == 0 {
		cfg.FFTThreshold = sequence.DefaultFFTThreshold
	}
	s := &Server{
		cfg:     cfg,
		engine:  engine,
		logger:  logger,
		metrics: NewMetrics(),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		IdleTimeout:       IdleTimeout,
	}
	return s
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fib", s.wrap(s.handleSequence))
	mux.HandleFunc("/api/fib/term", s.wrap(s.handleTerm))
	mux.HandleFunc("/healthz", s.wrap(s.handleHealth))
	mux.HandleFunc("/metrics", s.wrap(s.handleMetrics))
	return mux
}

// wrap applies, outermost first: request id, logging, metrics, tracing,
// security headers and the request timeout.
func (s *Server) wrap(h http.HandlerFunc) http.HandlerFunc {
	h = s.timeoutMiddleware(h)
	h = SecurityMiddleware(s.cfg.Security, h)
	h = tracingMiddleware(h)
	h = s.metricsMiddleware(h)
	h = s.loggingMiddleware(h)
	return requestIDMiddleware(h)
}

// ListenAndServe listens on the configured address and serves until ctx
// ends, then drains in-flight requests within ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serveErr := make(chan error, 1)
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))
	go func() {
		serveErr <- s.httpServer.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", logging.Duration("timeout", s.cfg.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

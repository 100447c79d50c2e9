package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/fibseq/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds ids accepted from clients.
const maxRequestIDLen = 128

const tracerName = "github.com/agbru/fibseq/internal/server"

type requestInfoKey struct{}

// requestInfo is filled in by handlers and read by the logging middleware.
type requestInfo struct {
	mu sync.Mutex
	id string
	n  string
}

// RequestID returns the id assigned to the request carried by ctx.
func RequestID(ctx context.Context) string {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		return info.id
	}
	return ""
}

// annotateN records the requested index for the access log.
func annotateN(ctx context.Context, n string) {
	if info, ok := ctx.Value(requestInfoKey{}).(*requestInfo); ok {
		info.mu.Lock()
		info.n = n
		info.mu.Unlock()
	}
}

// requestIDMiddleware echoes a client-supplied X-Request-ID or assigns a
// fresh UUID.
func requestIDMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestInfoKey{}, &requestInfo{id: id})
		next(w, r.WithContext(ctx))
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// routeOf returns the mux pattern for metric labels, which keeps label
// cardinality bounded.
func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "other"
}

// loggingMiddleware writes one structured line per request.
func (s *Server) loggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)

		fields := []logging.Field{
			logging.String("request_id", RequestID(r.Context())),
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", rec.Status()),
			logging.Duration("duration", time.Since(start)),
		}
		if info, ok := r.Context().Value(requestInfoKey{}).(*requestInfo); ok {
			info.mu.Lock()
			if info.n != "" {
				fields = append(fields, logging.String("n", info.n))
			}
			info.mu.Unlock()
		}
		s.logger.Info("request", fields...)
	}
}

// metricsMiddleware tracks in-flight requests and records status and
// latency per route.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r)
		s.metrics.ObserveRequest(routeOf(r), rec.Status(), time.Since(start))
	}
}

// tracingMiddleware starts a server span, continuing a W3C trace context
// sent by the client.
func tracingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	tracer := otel.Tracer(tracerName)
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+routeOf(r),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("url.path", r.URL.Path),
				attribute.String("request.id", RequestID(r.Context())),
			))
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w}
		next(rec, r.WithContext(ctx))
		span.SetAttributes(attribute.Int("http.response.status_code", rec.Status()))
	}
}

// timeoutMiddleware bounds the request context by RequestTimeout. The
// engine observes the deadline and the handler answers 504.
func (s *Server) timeoutMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.RequestTimeout <= 0 {
			next(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

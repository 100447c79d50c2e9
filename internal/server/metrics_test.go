package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
)

func TestMetricsActiveRequests(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.IncrementActiveRequests()
	m.IncrementActiveRequests()
	assert.Equal(t, 2.0, testutil.ToFloat64(m.activeRequests))
	m.DecrementActiveRequests()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeRequests))
}

func TestMetricsObserveRequest(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObserveRequest("GET /api/fib", http.StatusOK, 3*time.Millisecond)
	m.ObserveRequest("GET /api/fib", http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest("GET /api/fib", http.StatusBadRequest, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET /api/fib", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET /api/fib", "400")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
}

func TestMetricsObserveRejection(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.ObserveRejection(apperrors.NewInvalidNumber("n"))
	m.ObserveRejection(apperrors.NewOutOfRange("n", "too big"))
	m.ObserveRejection(apperrors.NewResourceExhausted(apperrors.MemoryError{Requested: 2, Limit: 1}))
	m.ObserveRejection(apperrors.FromContext(context.DeadlineExceeded, "compute", time.Second))
	m.ObserveRejection(errors.New("boom"))

	for kind, want := range map[string]float64{
		string(apperrors.KindInvalidNumber):     1,
		string(apperrors.KindOutOfRange):        1,
		string(apperrors.KindResourceExhausted): 1,
		"other":                                 2,
	} {
		assert.Equal(t, want, testutil.ToFloat64(m.rejections.WithLabelValues(kind)), kind)
	}
}

func TestMetricsWritePrometheus(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.ObserveTerms(11)

	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{
		"fibseq_active_requests",
		"fibseq_sequence_terms_count 1",
		"go_goroutines",
	} {
		assert.Contains(t, body, name)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()
	s := &Server{metrics: NewMetrics()}

	var inFlight float64
	handler := s.metricsMiddleware(func(w http.ResponseWriter, r *http.Request) {
		inFlight = testutil.ToFloat64(s.metrics.activeRequests)
		w.WriteHeader(http.StatusTeapot)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/unrouted", http.NoBody))

	assert.Equal(t, 1.0, inFlight)
	assert.Equal(t, 0.0, testutil.ToFloat64(s.metrics.activeRequests))
	// Requests that did not go through the mux share one label.
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.requestsTotal.WithLabelValues("other", "418")))
}

func TestHandleMetricsMethods(t *testing.T) {
	t.Parallel()
	s := &Server{metrics: NewMetrics(), logger: newTestLogger()}

	rec := httptest.NewRecorder()
	s.handleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fibseq_")

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		rec := httptest.NewRecorder()
		s.handleMetrics(rec, httptest.NewRequest(method, "/metrics", http.NoBody))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		assert.Equal(t, http.MethodGet, rec.Header().Get("Allow"))
	}
}

// testLogger discards everything.
type testLogger struct{}

func newTestLogger() *testLogger                                  { return &testLogger{} }
func (l *testLogger) Info(_ string, _ ...logging.Field)           {}
func (l *testLogger) Error(_ string, _ error, _ ...logging.Field) {}
func (l *testLogger) Debug(_ string, _ ...logging.Field)          {}
func (l *testLogger) With(_ ...logging.Field) logging.Logger      { return l }

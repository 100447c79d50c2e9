package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/logging"
	"github.com/agbru/fibseq/internal/sequence"
)

// Messages for failures that are not sequence errors.
const (
	msgBadBody          = "Request body must be a JSON object"
	msgBodyTooLarge     = "Request body too large"
	msgMethodNotAllowed = "Method not allowed"
	msgTimeout          = "The computation did not finish in time"
	msgInternal         = "Internal server error"
)

// sequenceBody is the POST /api/fib payload. Each field accepts a JSON
// number or a string holding an integer; absent or null seeds take their
// defaults.
type sequenceBody struct {
	N      json.RawMessage `json:"n"`
	StartX json.RawMessage `json:"startx"`
	StartY json.RawMessage `json:"starty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type termResponse struct {
	N    string `json:"n"`
	Term string `json:"term"`
}

// handleSequence serves GET and POST /api/fib.
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	var n, x, y string
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		n, x, y = q.Get("n"), q.Get("startx"), q.Get("starty")
	case http.MethodPost:
		var err error
		if n, x, y, err = s.decodeBody(w, r); err != nil {
			status := http.StatusBadRequest
			msg := msgBadBody
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status, msg = http.StatusRequestEntityTooLarge, msgBodyTooLarge
			}
			s.writeJSON(w, r, status, errorResponse{Error: msg})
			return
		}
	default:
		s.methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
		return
	}
	annotateN(r.Context(), n)

	req, err := s.cfg.Limits.ParseRequest(n, x, y)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.Compute(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.ObserveTerms(res.Len())

	// The result is complete and was admitted against the memory limit, so
	// the deadline no longer applies. A client that goes away surfaces as a
	// write error.
	ctx := context.WithoutCancel(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"result":`)
	if err := res.WriteJSON(ctx, w); err != nil {
		s.logger.Error("sequence serialization aborted", err,
			logging.String("request_id", RequestID(ctx)))
		return
	}
	io.WriteString(w, "}\n")
}

// decodeBody reads the POST payload into raw text fields.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request) (n, x, y string, err error) {
	limit := s.cfg.Security.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	var body sequenceBody
	if err = dec.Decode(&body); err != nil {
		return "", "", "", err
	}
	if n, err = rawInteger(body.N); err != nil {
		return "", "", "", err
	}
	if x, err = rawInteger(body.StartX); err != nil {
		return "", "", "", err
	}
	if y, err = rawInteger(body.StartY); err != nil {
		return "", "", "", err
	}
	return n, x, y, nil
}

// rawInteger returns the text of a JSON number or string. Anything else
// (objects, arrays, booleans) yields the literal text, which the
// sequence parser rejects as InvalidNumber.
func rawInteger(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(raw), nil
}

// handleTerm serves GET /api/fib/term with fast doubling.
func (s *Server) handleTerm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	q := r.URL.Query()
	annotateN(r.Context(), q.Get("n"))

	req, err := s.cfg.TermLimits.ParseRequest(q.Get("n"), q.Get("startx"), q.Get("starty"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	term, err := s.engine.Term(r.Context(), req, sequence.TermOptions{FFTThreshold: s.cfg.FFTThreshold})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, termResponse{N: strconv.Itoa(req.N()), Term: term.String()})
}

// handleHealth serves GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMetrics serves GET /metrics.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	s.writeJSON(w, r, http.StatusMethodNotAllowed, errorResponse{Error: msgMethodNotAllowed})
}

// writeError maps err to a status code and a client-facing message.
// Sequence errors carry their own message; other failures are logged and
// answered with a generic one.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	s.metrics.ObserveRejection(err)

	var seqErr *apperrors.SequenceError
	var msg string
	switch {
	case errors.As(err, &seqErr):
		msg = seqErr.Message
	case status == http.StatusGatewayTimeout:
		msg = msgTimeout
	default:
		msg = msgInternal
		s.logger.Error("request failed", err, logging.String("request_id", RequestID(r.Context())))
	}
	s.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("write response", logging.Err(err), logging.String("request_id", RequestID(r.Context())))
	}
}

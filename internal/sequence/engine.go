package sequence

import (
	"context"
	"math/big"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence/memory"
)

// tracerName identifies spans emitted by this package.
const tracerName = "github.com/agbru/fibseq/internal/sequence"

const opCompute = "sequence"

// ProgressCallback receives the completed fraction of a computation, from
// 0.0 to 1.0. It is called from the computing goroutine and must be fast.
type ProgressCallback func(progress float64)

// Options configures an Engine. The zero value is usable: no configured
// memory limit (host limits still apply), auto GC mode, no progress, no logs.
type Options struct {
	// MemoryLimit caps the estimated footprint in bytes. 0 means only the
	// host ceilings apply.
	MemoryLimit uint64
	// GCMode is "auto", "aggressive" or "disabled". Empty means auto.
	GCMode string
	// Progress is called every CancelCheckInterval terms and on completion.
	Progress ProgressCallback
	// Logger receives estimate and GC events at debug level.
	Logger zerolog.Logger
	// HostProbe overrides the host memory probe; nil uses the running host.
	HostProbe memory.HostProbe
}

// Engine computes full sequences. It holds configuration only and is safe
// for concurrent use.
type Engine struct {
	opts   Options
	tracer trace.Tracer
}

// NewEngine returns an Engine for opts.
func NewEngine(opts Options) *Engine {
	if opts.GCMode == "" {
		opts.GCMode = string(memory.GCModeAuto)
	}
	if opts.HostProbe == nil {
		opts.HostProbe = memory.DefaultHostProbe
	}
	return &Engine{opts: opts, tracer: otel.Tracer(tracerName)}
}

// Compute returns all n+1 terms of the sequence described by req.
//
// The footprint is estimated first; a request above the effective memory
// limit fails with a ResourceExhausted *apperrors.SequenceError before
// anything is allocated. The context is checked every CancelCheckInterval
// terms. On cancellation the partial terms are dropped and the error is an
// apperrors.TimeoutError (deadline) or wraps context.Canceled.
func (e *Engine) Compute(ctx context.Context, req Request) (res Result, err error) {
	ctx, span := e.tracer.Start(ctx, "sequence.Compute", trace.WithAttributes(
		attribute.Int("sequence.n", req.n),
		attribute.Int("sequence.startx_bits", req.startX.BitLen()),
		attribute.Int("sequence.starty_bits", req.startY.BitLen()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, apperrors.FromContext(err, opCompute, 0)
	}

	est := EstimateRequest(req)
	span.SetAttributes(attribute.Int64("sequence.estimated_bytes", int64(est.TotalBytes)))
	limit := memory.EffectiveLimit(e.opts.MemoryLimit, e.opts.HostProbe)
	e.opts.Logger.Debug().
		Int("n", req.n).
		Uint64("estimated_bytes", est.TotalBytes).
		Uint64("limit_bytes", limit).
		Msg("sequence estimate")
	if limit > 0 && est.TotalBytes > limit {
		return Result{}, apperrors.NewResourceExhausted(apperrors.MemoryError{
			Requested: est.TotalBytes,
			Available: e.opts.HostProbe.AvailableMemory(),
			Limit:     limit,
		})
	}

	arena, err := memory.NewTermArena(int(est.Words))
	if err != nil {
		return Result{}, apperrors.NewResourceExhausted(apperrors.MemoryError{
			Requested: est.ArenaBytes,
			Limit:     limit,
		})
	}

	resume := memory.NewGCController(e.opts.GCMode, req.n, e.opts.Logger).Suspend(limit)
	defer resume()

	terms, err := accumulate(ctx, req, arena, e.opts.Progress)
	if err != nil {
		return Result{}, err
	}
	return Result{terms: terms}, nil
}

// accumulate builds the prefix a(0..n) by repeated addition, carving every
// term from arena.
func accumulate(ctx context.Context, req Request, arena *memory.TermArena, progress ProgressCallback) ([]*big.Int, error) {
	sb := seedBits(req.startX, req.startY)
	terms := make([]*big.Int, req.n+1)
	terms[0] = arena.AllocBigInt(termWords(sb, 0)).Set(req.startX)
	if req.n >= 1 {
		terms[1] = arena.AllocBigInt(termWords(sb, 1)).Set(req.startY)
	}

	total := float64(req.n) * float64(req.n)
	for i := 2; i <= req.n; i++ {
		if i%CancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, apperrors.FromContext(err, opCompute, 0)
			}
			if progress != nil {
				// the i-th addition costs O(i), so work done grows as i².
				progress(float64(i) * float64(i) / total)
			}
		}
		terms[i] = arena.AllocBigInt(termWords(sb, i)).Add(terms[i-1], terms[i-2])
	}

	if progress != nil {
		progress(1.0)
	}
	return terms, nil
}

// Term computes a(n) for req with fast doubling, after checking the
// estimate from EstimateTerm against the same effective memory limit as
// Compute.
func (e *Engine) Term(ctx context.Context, req Request, opts TermOptions) (*big.Int, error) {
	need := EstimateTerm(uint64(req.n), req.startX, req.startY)
	limit := memory.EffectiveLimit(e.opts.MemoryLimit, e.opts.HostProbe)
	if limit > 0 && need > limit {
		return nil, apperrors.NewResourceExhausted(apperrors.MemoryError{
			Requested: need,
			Available: e.opts.HostProbe.AvailableMemory(),
			Limit:     limit,
		})
	}
	return Term(ctx, uint64(req.n), req.startX, req.startY, opts)
}

// WithProgress returns a copy of e that reports progress to progress.
func (e *Engine) WithProgress(progress ProgressCallback) *Engine {
	c := *e
	c.opts.Progress = progress
	return &c
}

package sequence

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"math/big"
	"runtime"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

const opSerialize = "serialize"

// Result is an immutable computed sequence: terms a(0) through a(n) in
// index order. The zero value is an empty sequence.
type Result struct {
	terms []*big.Int
}

// Len returns the number of terms, n+1.
func (r Result) Len() int { return len(r.terms) }

// Term returns a copy of a(i). It panics if i is out of range.
func (r Result) Term(i int) *big.Int { return new(big.Int).Set(r.terms[i]) }

// Last returns a copy of a(n), or nil for an empty Result.
func (r Result) Last() *big.Int {
	if len(r.terms) == 0 {
		return nil
	}
	return r.Term(len(r.terms) - 1)
}

// DigitCount returns the number of decimal digits of a(i), sign excluded.
func (r Result) DigitCount(i int) int {
	s := r.terms[i].String()
	if r.terms[i].Sign() < 0 {
		return len(s) - 1
	}
	return len(s)
}

// Strings converts every term to its decimal representation. Conversions
// run on up to GOMAXPROCS goroutines; the output keeps index order.
func (r Result) Strings(ctx context.Context) ([]string, error) {
	out := make([]string, len(r.terms))
	if err := r.convert(ctx, 0, len(r.terms), out); err != nil {
		return nil, err
	}
	return out, nil
}

// convert fills dst[k] with the decimal text of term lo+k, in parallel.
// Work is split in contiguous chunks so small terms do not pay one
// goroutine each.
func (r Result) convert(ctx context.Context, lo, hi int, dst []string) error {
	workers := runtime.GOMAXPROCS(0)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	chunk := max((hi-lo+workers-1)/workers, 1)
	if chunk > SerializeWindow {
		chunk = SerializeWindow
	}
	for start := lo; start < hi; start += chunk {
		end := min(start+chunk, hi)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				dst[i-lo] = r.terms[i].String()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return apperrors.FromContext(err, opSerialize, 0)
	}
	// errgroup only reports errors returned by the goroutines; a
	// cancellation observed after the last one started is caught here.
	return apperrors.FromContext(ctx.Err(), opSerialize, 0)
}

// WriteJSON writes the sequence to w as a JSON array of decimal strings,
// e.g. ["0","1","1"]. Terms are converted SerializeWindow at a time in
// parallel and written in order, so only one window of text is held in
// memory. Nothing is written after the context is cancelled.
func (r Result) WriteJSON(ctx context.Context, w io.Writer) error {
	bw := bufio.NewWriterSize(w, 64<<10)
	if err := bw.WriteByte('['); err != nil {
		return apperrors.CalculationError{Cause: err}
	}
	window := make([]string, SerializeWindow)
	for lo := 0; lo < len(r.terms); lo += SerializeWindow {
		hi := min(lo+SerializeWindow, len(r.terms))
		if err := r.convert(ctx, lo, hi, window); err != nil {
			return err
		}
		for k, s := range window[:hi-lo] {
			if lo+k > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(s)
			if err := bw.WriteByte('"'); err != nil {
				return apperrors.CalculationError{Cause: err}
			}
			window[k] = ""
		}
	}
	bw.WriteByte(']')
	if err := bw.Flush(); err != nil {
		return apperrors.CalculationError{Cause: err}
	}
	return nil
}

// MarshalJSON implements json.Marshaler with the WriteJSON encoding.
func (r Result) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteJSON(context.Background(), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

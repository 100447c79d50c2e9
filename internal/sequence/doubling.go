package sequence

import (
	"context"
	"math"
	"math/big"
	"math/bits"

	"github.com/remyoudompheng/bigfft"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

const opTerm = "term"

// TermOptions configures Term.
type TermOptions struct {
	// FFTThreshold is the operand size in bits above which products use
	// FFT multiplication. 0 selects DefaultFFTThreshold; a negative value
	// disables FFT.
	FFTThreshold int
	// Progress is called after each doubling step.
	Progress ProgressCallback
}

// Term computes the single term a(n) = x*F(n-1) + y*F(n) with fast
// doubling, in O(log n) big multiplications and without building the
// prefix. Nil seeds default to (0, 1). The context is checked after every
// doubling step.
func Term(ctx context.Context, n uint64, x, y *big.Int, opts TermOptions) (*big.Int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "sequence.Term",
		trace.WithAttributes(attribute.Int64("sequence.n", int64(min(n, math.MaxInt64)))))
	defer span.End()

	if x == nil {
		x = big.NewInt(DefaultStartX)
	}
	if y == nil {
		y = big.NewInt(DefaultStartY)
	}
	threshold := opts.FFTThreshold
	if threshold == 0 {
		threshold = DefaultFFTThreshold
	}

	fn, fn1, err := fibPair(ctx, n, threshold, opts.Progress)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	// F(n-1) = F(n+1) - F(n), which also yields F(-1) = 1 for n = 0.
	fnm1 := fn1.Sub(fn1, fn)

	a := multiply(new(big.Int), x, fnm1, threshold)
	b := multiply(fnm1, y, fn, threshold)
	return a.Add(a, b), nil
}

// fibPair returns (F(n), F(n+1)) by scanning the bits of n from the top:
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)² + F(k)²
func fibPair(ctx context.Context, n uint64, threshold int, progress ProgressCallback) (*big.Int, *big.Int, error) {
	fk := big.NewInt(0)
	fk1 := big.NewInt(1)
	t1 := new(big.Int)
	t2 := new(big.Int)

	numBits := bits.Len64(n)
	// step j from the bottom handles operands of ~2^j bits, so its cost
	// grows by about 4 per step.
	totalWork := (math.Pow(4, float64(numBits)) - 1) / 3
	doneWork := 0.0

	for i := numBits - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return nil, nil, apperrors.FromContext(err, opTerm, 0)
		}

		t1.Lsh(fk1, 1)
		t1.Sub(t1, fk)
		multiply(t1, t1, fk, threshold)

		square(t2, fk1, threshold)
		square(fk, fk, threshold)
		t2.Add(t2, fk)

		fk, t1 = t1, fk
		fk1, t2 = t2, fk1

		if (n>>uint(i))&1 == 1 {
			t1.Add(fk, fk1)
			fk, fk1, t1 = fk1, t1, fk
		}

		if progress != nil {
			doneWork += math.Pow(4, float64(numBits-1-i))
			progress(doneWork / totalWork)
		}
	}
	return fk, fk1, nil
}

// multiply sets z = x*y, switching to FFT multiplication when both
// operands exceed threshold bits.
func multiply(z, x, y *big.Int, threshold int) *big.Int {
	if threshold > 0 && x.BitLen() > threshold && y.BitLen() > threshold {
		return z.Set(bigfft.Mul(x, y))
	}
	return z.Mul(x, y)
}

// square sets z = x².
func square(z, x *big.Int, threshold int) *big.Int {
	return multiply(z, x, x, threshold)
}

package sequence

// ─────────────────────────────────────────────────────────────────────────────
// Domain Bounds
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultMaxN is the largest index accepted for a full sequence.
	DefaultMaxN = 1_000_000

	// DefaultMaxTermN is the largest index accepted for a single-term query.
	// Fast doubling makes F(10^8) (about 21M digits) a matter of seconds.
	DefaultMaxTermN = 100_000_000

	// DefaultStartX and DefaultStartY form the canonical Fibonacci seed.
	DefaultStartX = 0
	DefaultStartY = 1
)

// ─────────────────────────────────────────────────────────────────────────────
// Performance Tuning Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultFFTThreshold is the operand size in bits above which fast
	// doubling multiplies with FFT (Schönhage-Strassen) instead of math/big.
	// Below it math/big's Karatsuba has lower constant factors.
	DefaultFFTThreshold = 500_000

	// CancelCheckInterval is the number of accumulated terms between two
	// context checks and progress reports in Engine.Compute.
	CancelCheckInterval = 256

	// SerializeWindow is the number of terms converted to decimal in one
	// parallel batch by Result.WriteJSON. It bounds the transient text held
	// in memory while keeping every core busy.
	SerializeWindow = 512
)

// ─────────────────────────────────────────────────────────────────────────────
// Growth Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// FibonacciGrowthFactor is log2(phi), phi ≈ 1.618 (golden ratio): each
	// index adds about this many bits to a term.
	FibonacciGrowthFactor = 0.69424

	// DigitsPerIndex is log10(phi): each index adds about this many decimal
	// digits to a term.
	DigitsPerIndex = 0.20898764

	// log10Of2 converts a bit length into a decimal digit count.
	log10Of2 = 0.30102999566
)

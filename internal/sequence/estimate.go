package sequence

import (
	"math"
	"math/big"
	"math/bits"

	"github.com/agbru/fibseq/internal/sequence/memory"
)

// termHeaderBytes approximates the fixed cost of one term outside its
// words: the big.Int header plus the pointer slot in the term slice.
const termHeaderBytes = 40

// Estimate is the predicted footprint of a full sequence computation.
type Estimate struct {
	// TermBits is the upper bound on the bit length of a(n).
	TermBits uint64
	// Words is the number of big.Word reserved in the term arena.
	Words uint64
	// ArenaBytes is Words in bytes plus per-term headers.
	ArenaBytes uint64
	// SerializedBytes is the size of the JSON array of decimal strings.
	SerializedBytes uint64
	// TotalBytes is the peak the engine admits a request against.
	TotalBytes uint64
	// LastTermDigits approximates the number of decimal digits of a(n).
	LastTermDigits uint64
}

// seedBits returns the bit length of the larger seed magnitude.
func seedBits(x, y *big.Int) int {
	return max(x.BitLen(), y.BitLen())
}

// termBitsBound bounds the bit length of a(i): |a(i)| <= max(|x|,|y|)*F(i+1)
// and F(i+1) <= phi^i.
func termBitsBound(sb, i int) float64 {
	return float64(sb) + float64(i+1)*FibonacciGrowthFactor + 2
}

// termWords is the arena reservation for a(i). Two spare words absorb the
// carry of the addition and rounding in the growth factor.
func termWords(sb, i int) int {
	return int(termBitsBound(sb, i)/bits.UintSize) + 2
}

// digitsForBits returns the decimal digits needed for an integer of b bits,
// plus one for a sign.
func digitsForBits(b float64) uint64 {
	return uint64(math.Ceil(b*log10Of2)) + 1
}

// EstimateRequest predicts the memory a Compute call needs for req. It
// walks the indices once and allocates nothing.
func EstimateRequest(req Request) Estimate {
	sb := seedBits(req.startX, req.startY)
	var e Estimate
	for i := 0; i <= req.n; i++ {
		b := termBitsBound(sb, i)
		e.Words += uint64(termWords(sb, i))
		// digits, two quotes and a comma
		e.SerializedBytes += digitsForBits(b) + 3
	}
	last := termBitsBound(sb, req.n)
	e.TermBits = uint64(math.Ceil(last))
	e.LastTermDigits = digitsForBits(last) - 1
	e.SerializedBytes += 2 // brackets
	e.ArenaBytes = e.Words*memory.WordBytes + uint64(req.n+1)*termHeaderBytes
	e.TotalBytes = e.ArenaBytes + e.SerializedBytes
	return e
}

// termLiveValues is how many a(n)-sized integers fast doubling holds at
// once: the pair, two products and the seed combination.
const termLiveValues = 5

// EstimateTerm predicts the peak bytes of Term for a(n) with seeds of sb
// bits: the live big integers plus the decimal string of the answer.
func EstimateTerm(n uint64, x, y *big.Int) uint64 {
	sb := 0
	if x != nil && y != nil {
		sb = seedBits(x, y)
	}
	b := float64(sb) + float64(n+1)*FibonacciGrowthFactor + 2
	words := uint64(b/bits.UintSize) + 2
	return termLiveValues*words*memory.WordBytes + digitsForBits(b)
}

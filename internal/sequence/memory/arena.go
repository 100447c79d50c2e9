package memory

import (
	"fmt"
	"math/big"
	"math/bits"
)

// WordBytes is the size of a big.Word in bytes.
const WordBytes = bits.UintSize / 8

// TermArena pre-allocates one contiguous block of big.Word memory holding
// the backing arrays of every term of a sequence. The garbage collector then
// tracks a single object instead of n+1 separate slices, and the block is
// released in one piece when the Result is dropped.
//
// The arena uses bump-pointer allocation. When a request does not fit, it
// falls back to a standard heap allocation, so an underestimated plan only
// costs performance, never correctness.
type TermArena struct {
	buf    []big.Word
	offset int
}

// NewTermArena allocates an arena of totalWords words. A runtime panic
// raised by the allocation (a length the runtime refuses to allocate) is
// returned as an error instead of crashing the process.
func NewTermArena(totalWords int) (arena *TermArena, err error) {
	if totalWords <= 0 {
		return &TermArena{}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			arena = nil
			err = fmt.Errorf("allocate %d words: %v", totalWords, r)
		}
	}()
	return &TermArena{buf: make([]big.Word, totalWords)}, nil
}

// AllocBigInt returns a zero-valued big.Int whose backing array has room for
// words words. The capacity is clipped so later growth never spills into a
// neighbouring term.
func (a *TermArena) AllocBigInt(words int) *big.Int {
	z := new(big.Int)
	if words <= 0 {
		return z
	}
	if a.buf == nil || a.offset+words > len(a.buf) {
		z.SetBits(make([]big.Word, 0, words))
		return z
	}
	slice := a.buf[a.offset : a.offset+words : a.offset+words]
	a.offset += words
	z.SetBits(slice[:0]) // length 0, capacity words: z is 0
	return z
}

// UsedWords returns the number of words currently handed out.
func (a *TermArena) UsedWords() int {
	return a.offset
}

// CapacityWords returns the total capacity of the arena in words.
func (a *TermArena) CapacityWords() int {
	return len(a.buf)
}

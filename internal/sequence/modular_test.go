package sequence

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTermMod(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		n    uint64
		x, y *big.Int
		m    int64
		want int64
	}{
		{name: "F(0) mod 10", n: 0, m: 10, want: 0},
		{name: "F(1) mod 10", n: 1, m: 10, want: 1},
		{name: "F(30) mod 1000", n: 30, m: 1000, want: 40},
		{name: "F(100) mod 10^9", n: 100, m: 1_000_000_000, want: 261915075},
		{name: "modulus one", n: 12345, m: 1, want: 0},
		{name: "negative seed is reduced", n: 0, x: big.NewInt(-7), y: big.NewInt(1), m: 10, want: 3},
		{name: "custom seed", n: 10, x: big.NewInt(5), y: big.NewInt(5), m: 100, want: 45},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := TermMod(tt.n, tt.x, tt.y, big.NewInt(tt.m))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Int64())
		})
	}
}

func TestTermModMatchesTerm(t *testing.T) {
	t.Parallel()
	m := new(big.Int).Exp(big.NewInt(10), big.NewInt(25), nil)
	seeds := [][2]int64{{0, 1}, {2, 1}, {-13, 8}, {1 << 40, -(1 << 50)}}
	for _, s := range seeds {
		for _, n := range []uint64{0, 1, 2, 17, 256, 999, 4096} {
			x, y := big.NewInt(s[0]), big.NewInt(s[1])
			full, err := Term(context.Background(), n, x, y, TermOptions{})
			require.NoError(t, err)
			want := new(big.Int).Mod(full, m)

			got, err := TermMod(n, x, y, m)
			require.NoError(t, err)
			assert.Zerof(t, want.Cmp(got), "seed %v n=%d: got %s want %s", s, n, got, want)
		}
	}
}

func TestTermModPisanoPeriod(t *testing.T) {
	t.Parallel()
	// Any seed repeats mod 10 with the Pisano period 60.
	x, y := big.NewInt(-4), big.NewInt(9)
	ten := big.NewInt(10)
	for _, n := range []uint64{5, 1 << 33, 1<<62 + 3} {
		a, err := TermMod(n, x, y, ten)
		require.NoError(t, err)
		b, err := TermMod(n+60, x, y, ten)
		require.NoError(t, err)
		assert.Zero(t, a.Cmp(b), "n=%d", n)
	}
}

func TestTermModRejectsBadModulus(t *testing.T) {
	t.Parallel()
	for _, m := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
		_, err := TermMod(10, nil, nil, m)
		assert.Error(t, err)
	}
}

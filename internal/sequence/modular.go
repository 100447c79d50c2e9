package sequence

import (
	"errors"
	"math/big"
)

var errNonPositiveModulus = errors.New("modulus must be positive")

// TermMod returns a(n) mod m for the seed (x, y). It raises the Fibonacci
// Q-matrix to the n-th power over residues, so memory stays O(log m)
// whatever n is. The result lies in [0, m) even for negative seeds. Nil
// seeds default to (0, 1).
func TermMod(n uint64, x, y, m *big.Int) (*big.Int, error) {
	if m == nil || m.Sign() <= 0 {
		return nil, errNonPositiveModulus
	}
	if x == nil {
		x = big.NewInt(DefaultStartX)
	}
	if y == nil {
		y = big.NewInt(DefaultStartY)
	}

	q := qPowMod(n, m)
	// a(n) = F(n-1)*x + F(n)*y
	a := new(big.Int).Mul(x, q.prev)
	a.Add(a, new(big.Int).Mul(y, q.cur))
	// Euclidean modulus: never negative.
	return a.Mod(a, m), nil
}

// qMatrix is Q^k = [[F(k+1), F(k)], [F(k), F(k-1)]]. Powers of Q are
// symmetric, so three entries describe one.
type qMatrix struct {
	next, cur, prev *big.Int
}

// mulMod sets q to q*r mod m. Powers of Q commute, so the product is
// again symmetric.
func (q *qMatrix) mulMod(r qMatrix, m *big.Int, tmp *big.Int) {
	next := new(big.Int).Mul(q.next, r.next)
	next.Add(next, tmp.Mul(q.cur, r.cur))
	cur := new(big.Int).Mul(q.next, r.cur)
	cur.Add(cur, tmp.Mul(q.cur, r.prev))
	prev := new(big.Int).Mul(q.cur, r.cur)
	prev.Add(prev, tmp.Mul(q.prev, r.prev))

	q.next, q.cur, q.prev = next.Mod(next, m), cur.Mod(cur, m), prev.Mod(prev, m)
}

// qPowMod returns Q^n mod m by square-and-multiply.
func qPowMod(n uint64, m *big.Int) qMatrix {
	one := new(big.Int).Mod(big.NewInt(1), m)
	result := qMatrix{next: new(big.Int).Set(one), cur: new(big.Int), prev: new(big.Int).Set(one)}
	base := qMatrix{next: new(big.Int).Set(one), cur: new(big.Int).Set(one), prev: new(big.Int)}
	tmp := new(big.Int)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			result.mulMod(base, m, tmp)
		}
		base.mulMod(base, m, tmp)
	}
	return result
}

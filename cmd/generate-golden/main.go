// Command generate-golden writes the HTTP fixtures under
// internal/server/testdata/golden. Values come from a plain loop over
// math/big, independent of the sequence package, so the fixtures check the
// engine rather than echo it.
//
// Usage:
//
//	go run ./cmd/generate-golden -dir internal/server/testdata/golden
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/agbru/fibseq/internal/errors"
	"github.com/agbru/fibseq/internal/sequence"
)

// fibBig returns F(n) by simple iteration.
func fibBig(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}

// naiveSequence returns a(0..n) for the seed (x, y).
func naiveSequence(n int, x, y *big.Int) []*big.Int {
	terms := []*big.Int{new(big.Int).Set(x)}
	if n >= 1 {
		terms = append(terms, new(big.Int).Set(y))
	}
	for i := 2; i <= n; i++ {
		terms = append(terms, new(big.Int).Add(terms[i-1], terms[i-2]))
	}
	return terms
}

// naiveTerm returns a(n) = x*F(n-1) + y*F(n), with a(0) = x.
func naiveTerm(n uint64, x, y *big.Int) *big.Int {
	if n == 0 {
		return new(big.Int).Set(x)
	}
	a := new(big.Int).Mul(x, fibBig(n-1))
	return a.Add(a, new(big.Int).Mul(y, fibBig(n)))
}

func mustInt(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(fmt.Sprintf("bad integer %q", s))
	}
	return v
}

type fixture struct {
	name string
	body func() any
}

type sequenceBody struct {
	Result []string `json:"result"`
}

type termBody struct {
	N    string `json:"n"`
	Term string `json:"term"`
}

type errorBody struct {
	Error string `json:"error"`
}

func sequenceFixture(n int, x, y string) func() any {
	return func() any {
		terms := naiveSequence(n, mustInt(x), mustInt(y))
		out := make([]string, len(terms))
		for i, t := range terms {
			out[i] = t.String()
		}
		return sequenceBody{Result: out}
	}
}

func termFixture(n uint64, x, y string) func() any {
	return func() any {
		return termBody{N: fmt.Sprint(n), Term: naiveTerm(n, mustInt(x), mustInt(y)).String()}
	}
}

func errorFixture(msg string) func() any {
	return func() any { return errorBody{Error: msg} }
}

func fixtures() []fixture {
	outOfRange := message.NewPrinter(language.English).
		Sprintf("Please enter a number less than or equal to %d", sequence.DefaultMaxN)
	return []fixture{
		{"fib_10", sequenceFixture(10, "0", "1")},
		{"fib_100", sequenceFixture(100, "0", "1")},
		{"seeded_5_5", sequenceFixture(10, "5", "5")},
		{"negative_seeds", sequenceFixture(12, "-3", "2")},
		{"n_zero", sequenceFixture(0, "7", "9")},
		{"large_seeds", sequenceFixture(20, "123456789012345678901234567890", "-987654321098765432109876543210")},
		{"term_100", termFixture(100, "0", "1")},
		{"term_lucas_50", termFixture(50, "2", "1")},
		{"invalid_number", errorFixture(apperrors.MsgInvalidNumber)},
		{"out_of_range", errorFixture(outOfRange)},
	}
}

// render encodes v the way the server does: compact JSON and a trailing
// newline.
func render(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func main() {
	dir := flag.String("dir", filepath.Join("internal", "server", "testdata", "golden"), "output directory")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", *dir, err)
		os.Exit(1)
	}
	for _, f := range fixtures() {
		data, err := render(f.body())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", f.name, err)
			os.Exit(1)
		}
		path := filepath.Join(*dir, f.name+".golden")
		if err := os.WriteFile(path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("wrote %s (%d bytes)\n", path, len(data))
	}
}

package sequence

import (
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/agbru/fibseq/internal/errors"
)

// Field names reported in validation errors.
const (
	FieldN      = "n"
	FieldStartX = "startx"
	FieldStartY = "starty"
)

// Request is a validated sequence request. It is immutable: accessors
// return copies of the seeds.
type Request struct {
	n      int
	startX *big.Int
	startY *big.Int
}

// N returns the index of the last term.
func (r Request) N() int { return r.n }

// StartX returns a copy of a(0).
func (r Request) StartX() *big.Int { return new(big.Int).Set(r.startX) }

// StartY returns a copy of a(1).
func (r Request) StartY() *big.Int { return new(big.Int).Set(r.startY) }

// IsStandardSeed reports whether the seed is the canonical (0, 1).
func (r Request) IsStandardSeed() bool {
	return r.startX.Sign() == 0 && r.startY.IsInt64() && r.startY.Int64() == 1
}

// String renders the request for logs.
func (r Request) String() string {
	return fmt.Sprintf("n=%d startx=%s starty=%s", r.n, abbreviate(r.startX), abbreviate(r.startY))
}

func abbreviate(x *big.Int) string {
	if x.BitLen() <= 128 {
		return x.String()
	}
	return fmt.Sprintf("<%d-bit integer>", x.BitLen())
}

// Limits holds the accepted index range. The zero value is not useful; use
// DefaultLimits or TermLimits.
type Limits struct {
	// MaxN is the largest accepted index (inclusive).
	MaxN int
}

// DefaultLimits returns the bounds for full-sequence requests.
func DefaultLimits() Limits { return Limits{MaxN: DefaultMaxN} }

// TermLimits returns the bounds for single-term requests.
func TermLimits() Limits { return Limits{MaxN: DefaultMaxTermN} }

var printer = message.NewPrinter(language.English)

// outOfRangeMessage renders the upper-bound message with thousands
// separators, e.g. "Please enter a number less than or equal to 1,000,000".
func (l Limits) outOfRangeMessage() string {
	return printer.Sprintf("Please enter a number less than or equal to %d", l.MaxN)
}

// ParseRequest parses and validates raw text inputs with the default limits.
func ParseRequest(n, startX, startY string) (Request, error) {
	return DefaultLimits().ParseRequest(n, startX, startY)
}

// Validate validates typed inputs with the default limits.
func Validate(n int64, startX, startY *big.Int) (Request, error) {
	return DefaultLimits().Validate(n, startX, startY)
}

// ParseRequest parses raw text inputs. n is required; empty seed strings
// mean "use the default". Only optionally signed base-10 integers are
// accepted: fractions, exponents and other notations are InvalidNumber.
func (l Limits) ParseRequest(n, startX, startY string) (Request, error) {
	nVal, err := parseInteger(FieldN, n, true)
	if err != nil {
		return Request{}, err
	}
	x, err := parseInteger(FieldStartX, startX, false)
	if err != nil {
		return Request{}, err
	}
	y, err := parseInteger(FieldStartY, startY, false)
	if err != nil {
		return Request{}, err
	}
	return l.validateBig(nVal, x, y)
}

// Validate checks typed inputs. A nil seed means "use the default".
func (l Limits) Validate(n int64, startX, startY *big.Int) (Request, error) {
	return l.validateBig(big.NewInt(n), startX, startY)
}

func (l Limits) validateBig(n, startX, startY *big.Int) (Request, error) {
	if n.Sign() < 0 {
		return Request{}, apperrors.NewOutOfRange(FieldN, apperrors.MsgInvalidNumber)
	}
	if !n.IsInt64() || n.Int64() > int64(l.MaxN) {
		return Request{}, apperrors.NewOutOfRange(FieldN, l.outOfRangeMessage())
	}
	req := Request{n: int(n.Int64())}
	if startX != nil {
		req.startX = new(big.Int).Set(startX)
	} else {
		req.startX = big.NewInt(DefaultStartX)
	}
	if startY != nil {
		req.startY = new(big.Int).Set(startY)
	} else {
		req.startY = big.NewInt(DefaultStartY)
	}
	return req, nil
}

// parseInteger parses s as a base-10 integer. An empty optional value
// returns (nil, nil).
func parseInteger(field, s string, required bool) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if required {
			return nil, apperrors.NewInvalidNumber(field)
		}
		return nil, nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, apperrors.NewInvalidNumber(field)
	}
	return v, nil
}

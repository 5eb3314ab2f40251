// Package core holds the entry model and the aggregation engine.
//
// Quantities are decimals so that sums over the entry log are exact and
// re-running an aggregation over the same log yields identical results.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a count of pieces. Fractions are allowed because the store
// may hold values typed by hand into the spreadsheet.
type Quantity struct {
	d decimal.Decimal
}

var ErrInvalidQuantity = errors.New("invalid quantity")

// Piece counts are typed by hand; anything longer or larger is rejected
// before it reaches decimal arithmetic.
const maxQuantityLen = 24

var maxQuantity = decimal.NewFromInt(1_000_000_000)

// Qty builds a Quantity from an integer count.
func Qty(n int64) Quantity {
	return Quantity{d: decimal.NewFromInt(n)}
}

// QtyFromFloat builds a Quantity from a float, as returned by spreadsheet APIs.
func QtyFromFloat(f float64) Quantity {
	return Quantity{d: decimal.NewFromFloat(f)}
}

// ParseQuantity parses "12", "12.5" or "12,5". An empty string is zero,
// matching the form default. Negative values parse; Validate rejects them.
// Exponent notation and magnitudes above one billion are invalid.
func ParseQuantity(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, nil
	}
	if len(s) > maxQuantityLen || strings.ContainsAny(s, "eE") {
		return Quantity{}, ErrInvalidQuantity
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil || d.Abs().GreaterThan(maxQuantity) {
		return Quantity{}, ErrInvalidQuantity
	}
	return Quantity{d: d}, nil
}

// MustQty parses s and panics on error. Intended for tests and literals.
func MustQty(s string) Quantity {
	q, err := ParseQuantity(s)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Quantity) Add(o Quantity) Quantity { return Quantity{d: q.d.Add(o.d)} }
func (q Quantity) Sub(o Quantity) Quantity { return Quantity{d: q.d.Sub(o.d)} }

func (q Quantity) IsNegative() bool { return q.d.IsNegative() }
func (q Quantity) IsZero() bool     { return q.d.IsZero() }

// Equal compares by value, so 1 and 1.0 are equal.
func (q Quantity) Equal(o Quantity) bool { return q.d.Equal(o.d) }

// Float64 is for display and spreadsheet cells only.
func (q Quantity) Float64() float64 { return q.d.InexactFloat64() }

// String renders the shortest exact form: "7", "2.5", "-3".
func (q Quantity) String() string { return q.d.String() }

// Decimal exposes the underlying value.
func (q Quantity) Decimal() decimal.Decimal { return q.d }

package types

import (
	"github.com/shopspring/decimal"
)

// Size is a signed fixed-scale decimal quantity of shares or contracts.
// Its sign distinguishes long from short (positions) and buy from sell
// (orders); fractional sizes are allowed wherever the order type and
// asset support them (spec.md §3).
type Size struct {
	d decimal.Decimal
}

// ZeroSize is the additive identity.
var ZeroSize = Size{}

// NewSize builds a Size from a float64 convenience value.
func NewSize(v float64) Size {
	return Size{d: decimal.NewFromFloat(v)}
}

// NewSizeFromDecimal builds a Size from an exact decimal value.
func NewSizeFromDecimal(v decimal.Decimal) Size {
	return Size{d: v}
}

// Decimal exposes the underlying decimal value.
func (s Size) Decimal() decimal.Decimal { return s.d }

// Float64 converts to float64 for display or sizing heuristics.
func (s Size) Float64() float64 {
	f, _ := s.d.Float64()
	return f
}

// IsZero reports whether the size is exactly zero.
func (s Size) IsZero() bool { return s.d.IsZero() }

// IsLong reports a strictly positive size.
func (s Size) IsLong() bool { return s.d.IsPositive() }

// IsShort reports a strictly negative size.
func (s Size) IsShort() bool { return s.d.IsNegative() }

// Sign returns -1, 0 or 1.
func (s Size) Sign() int { return s.d.Sign() }

// Neg returns -s.
func (s Size) Neg() Size { return Size{d: s.d.Neg()} }

// Abs returns |s|.
func (s Size) Abs() Size { return Size{d: s.d.Abs()} }

// Add returns s + other.
func (s Size) Add(other Size) Size { return Size{d: s.d.Add(other.d)} }

// Sub returns s - other.
func (s Size) Sub(other Size) Size { return Size{d: s.d.Sub(other.d)} }

// Mul returns s * factor.
func (s Size) Mul(factor decimal.Decimal) Size { return Size{d: s.d.Mul(factor)} }

// Min returns the smaller of s and other.
func (s Size) Min(other Size) Size {
	if s.d.LessThan(other.d) {
		return s
	}
	return other
}

// GreaterThan reports whether s > other.
func (s Size) GreaterThan(other Size) bool { return s.d.GreaterThan(other.d) }

// LessThan reports whether s < other.
func (s Size) LessThan(other Size) bool { return s.d.LessThan(other.d) }

// Equal reports value equality (decimal.Decimal is not safely comparable
// with ==, since it wraps a *big.Int; always compare Sizes with Equal).
func (s Size) Equal(other Size) bool { return s.d.Equal(other.d) }

// Rounded returns s rounded to the given number of fractional decimal
// places. fractions == 0 means integer sizing (spec.md §4.4 "fractions").
func (s Size) Rounded(fractions int32) Size {
	return Size{d: s.d.Round(fractions)}
}

// String renders the size using the minimal exact decimal representation.
func (s Size) String() string { return s.d.String() }

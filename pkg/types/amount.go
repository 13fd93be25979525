package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a quantity of money in a single currency. Arithmetic between
// two Amounts is only defined when both share a Currency — spec.md §3 is
// explicit about this, so mismatched-currency arithmetic returns an error
// rather than silently doing the wrong thing.
type Amount struct {
	Currency Currency
	Value    decimal.Decimal
}

// NewAmount constructs an Amount from a float64 convenience value. Prefer
// NewAmountFromDecimal in hot paths that already hold a decimal.Decimal.
func NewAmount(currency Currency, value float64) Amount {
	return Amount{Currency: currency, Value: decimal.NewFromFloat(value)}
}

// NewAmountFromDecimal constructs an Amount from an exact decimal value.
func NewAmountFromDecimal(currency Currency, value decimal.Decimal) Amount {
	return Amount{Currency: currency, Value: value}
}

// Zero reports whether the amount's value is exactly zero.
func (a Amount) Zero() bool { return a.Value.IsZero() }

// Float64 returns the amount's value as a float64, for display or metrics
// purposes. Do not use the result for further money arithmetic.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

// Add returns a + b. Both amounts must share a currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("types: cannot add %s to %s", b.Currency, a.Currency)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Add(b.Value)}, nil
}

// Sub returns a - b. Both amounts must share a currency.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("types: cannot subtract %s from %s", b.Currency, a.Currency)
	}
	return Amount{Currency: a.Currency, Value: a.Value.Sub(b.Value)}, nil
}

// Neg returns -a.
func (a Amount) Neg() Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Neg()}
}

// Mul returns a scaled by factor, same currency.
func (a Amount) Mul(factor decimal.Decimal) Amount {
	return Amount{Currency: a.Currency, Value: a.Value.Mul(factor)}
}

// String renders the amount rounded to the currency's display precision.
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value.StringFixed(int32(a.Currency.DisplayPrecision())), a.Currency)
}

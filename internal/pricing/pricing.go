// Package pricing turns a raw PriceItem into the price and fill quantity
// an executor uses to simulate a trade. It generalizes the teacher's
// internal/market/book.go mid/best-bid-ask derivation from binary-outcome
// order books to the full PriceItem sum type (bar, trade print, quote,
// book).
package pricing

import (
	"math"

	"roboquant/pkg/types"
)

// Engine prices a trade and decides how much of a requested size actually
// fills this step (spec.md §4.7, §9(b)).
type Engine interface {
	// PriceFor returns the execution price for item under kind, after
	// whatever spread/slippage adjustment the strategy applies.
	PriceFor(item types.PriceItem, kind types.PriceKind, size types.Size) float64

	// FillQuantity caps requested against whatever liquidity item
	// reports for this step; the sign of the result always matches
	// requested. Returning requested unchanged means "fill in full".
	FillQuantity(item types.PriceItem, requested types.Size) types.Size
}

// NoCost prices at the item's exact value for kind and always fills in
// full — the default, frictionless engine spec.md §4.7 describes first.
type NoCost struct{}

func (NoCost) PriceFor(item types.PriceItem, kind types.PriceKind, _ types.Size) float64 {
	return item.GetPrice(kind)
}

func (NoCost) FillQuantity(_ types.PriceItem, requested types.Size) types.Size {
	return requested
}

// SpreadBased applies a fractional bid/ask spread around the item's mid
// price: buys pay mid*(1+Spread/2), sells receive mid*(1-Spread/2). Fills
// remain in full, matching §4.7's "applies fractional bid/ask around mid".
type SpreadBased struct {
	Spread float64 // e.g. 0.001 = 10 bps round-trip
}

func (s SpreadBased) PriceFor(item types.PriceItem, kind types.PriceKind, size types.Size) float64 {
	mid := item.GetPrice(kind)
	half := s.Spread / 2
	if size.Sign() < 0 {
		return mid * (1 - half)
	}
	return mid * (1 + half)
}

func (s SpreadBased) FillQuantity(_ types.PriceItem, requested types.Size) types.Size {
	return requested
}

// Slippage applies size-dependent price impact and, per §9(b), caps the
// quantity that can fill in one step to a fraction of the event's
// reported volume — the residual stays open for the next step.
type Slippage struct {
	ImpactPerUnit float64 // price moves by ImpactPerUnit * |size| fraction
	VolumeCap     float64 // max fraction of reported volume fillable per step; 0 disables the cap
}

func (s Slippage) PriceFor(item types.PriceItem, kind types.PriceKind, size types.Size) float64 {
	base := item.GetPrice(kind)
	impact := base * s.ImpactPerUnit * size.Abs().Float64()
	if size.Sign() < 0 {
		return base - impact
	}
	return base + impact
}

func (s Slippage) FillQuantity(item types.PriceItem, requested types.Size) types.Size {
	if s.VolumeCap <= 0 {
		return requested
	}
	volume := item.GetVolume()
	if math.IsNaN(volume) || volume <= 0 {
		return requested
	}
	maxQty := volume * s.VolumeCap
	if requested.Abs().Float64() <= maxQty {
		return requested
	}
	capped := types.NewSize(maxQty)
	if requested.Sign() < 0 {
		capped = capped.Neg()
	}
	return capped
}

package pricing

import "roboquant/pkg/types"

// FeeModel computes the transaction cost of a fill (spec.md §4.7). Fee is
// always non-negative and expressed in the asset's currency.
type FeeModel interface {
	Fee(asset types.Asset, size types.Size, price float64) types.Amount
}

// NoFee charges nothing.
type NoFee struct{}

func (NoFee) Fee(asset types.Asset, _ types.Size, _ float64) types.Amount {
	return types.NewAmount(asset.Currency, 0)
}

// Percentage charges Rate * notional (e.g. Rate = 0.001 for 10 bps).
type Percentage struct {
	Rate float64
}

func (p Percentage) Fee(asset types.Asset, size types.Size, price float64) types.Amount {
	notional := size.Abs().Float64() * price * asset.Multiplier
	return types.NewAmount(asset.Currency, notional*p.Rate)
}

// PerShare charges a fixed amount per unit of size.
type PerShare struct {
	Rate float64
}

func (p PerShare) Fee(asset types.Asset, size types.Size, _ float64) types.Amount {
	return types.NewAmount(asset.Currency, size.Abs().Float64()*p.Rate)
}

// Tier is one breakpoint of a Tiered fee schedule: notional up to (and
// including) Threshold is charged at Rate. The last tier's Threshold
// should be +Inf to cover all remaining notional.
type Tier struct {
	Threshold float64
	Rate      float64
}

// Tiered charges a marginal rate per notional tier, cheapest-first,
// similar to a progressive commission schedule. Tiers must be sorted
// ascending by Threshold.
type Tiered struct {
	Tiers []Tier
}

func (t Tiered) Fee(asset types.Asset, size types.Size, price float64) types.Amount {
	notional := size.Abs().Float64() * price * asset.Multiplier
	var fee float64
	var floor float64
	for _, tier := range t.Tiers {
		if notional <= floor {
			break
		}
		band := minFloat(notional, tier.Threshold) - floor
		if band > 0 {
			fee += band * tier.Rate
		}
		floor = tier.Threshold
	}
	return types.NewAmount(asset.Currency, fee)
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

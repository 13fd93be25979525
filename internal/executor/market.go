package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// marketExecutor fills the entire remaining size in a single call, at
// whatever price the pricing engine reports (spec.md §4.6 "Market").
type marketExecutor struct{}

func (e *marketExecutor) Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, _ bool) []types.Trade {
	leg, ok := state.Order.(order.MarketOrder)
	if !ok {
		return nil
	}
	item, ok := itemFor(event, leg.AssetValue)
	if !ok {
		return nil
	}

	remaining := state.Remaining()
	if remaining.IsZero() {
		return nil
	}

	price := eng.PriceFor(item, types.PriceDefault, remaining)
	fee := fees.Fee(leg.AssetValue, remaining, price)
	trade := fillTrade(state, leg.AssetValue, remaining, price, fee, at)
	return []types.Trade{trade}
}

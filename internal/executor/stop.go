package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// stopExecutor triggers a market-style fill once the stop price is
// touched: a BUY triggers when high >= Stop, a SELL when low <= Stop
// (spec.md §4.6 "Stop(S)"). The fill price is the pricing engine's view
// of the stop price, commonly the stop itself.
type stopExecutor struct{}

func (e *stopExecutor) Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
	leg, ok := state.Order.(order.StopOrder)
	if !ok {
		return nil
	}
	return stepStopLike(state, leg.AssetValue, leg.Stop, eng, fees, event, at, allowPartial)
}

func stepStopLike(state *order.State, asset types.Asset, stop float64, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
	item, ok := itemFor(event, asset)
	if !ok {
		return nil
	}
	low, high, ok := rangeFor(item)
	if !ok {
		return nil
	}

	remaining := state.Remaining()
	if remaining.IsZero() {
		return nil
	}

	triggered := false
	if remaining.Sign() > 0 {
		triggered = high >= stop
	} else {
		triggered = low <= stop
	}
	if !triggered {
		return nil
	}

	price := eng.PriceFor(tradePriceAt(asset, stop), types.PriceDefault, remaining)
	fillSize := remaining
	if allowPartial {
		fillSize = eng.FillQuantity(item, remaining)
	}
	if fillSize.IsZero() {
		return nil
	}

	fee := fees.Fee(asset, fillSize, price)
	trade := fillTrade(state, asset, fillSize, price, fee, at)
	return []types.Trade{trade}
}

// tradePriceAt wraps a fixed price as a PriceItem so the pricing engine
// can still apply its slippage/spread model around the stop price.
func tradePriceAt(asset types.Asset, price float64) types.PriceItem {
	return types.TradePrice{AssetValue: asset, Price: price}
}

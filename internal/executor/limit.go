package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// limitExecutor fills at Limit or better once the event's range touches
// it: a BUY fills when low <= Limit, a SELL when high >= Limit (spec.md
// §4.6 "Limit(L)").
type limitExecutor struct{}

func (e *limitExecutor) Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
	leg, ok := state.Order.(order.LimitOrder)
	if !ok {
		return nil
	}
	return stepLimitLike(state, leg.AssetValue, leg.Limit, eng, fees, event, at, allowPartial)
}

// stepLimitLike is shared by LimitOrder and the armed phase of
// StopLimitOrder.
func stepLimitLike(state *order.State, asset types.Asset, limit float64, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
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
		triggered = low <= limit
	} else {
		triggered = high >= limit
	}
	if !triggered {
		return nil
	}

	fillSize := remaining
	if allowPartial {
		fillSize = eng.FillQuantity(item, remaining)
	}
	if fillSize.IsZero() {
		return nil
	}

	fee := fees.Fee(asset, fillSize, limit)
	trade := fillTrade(state, asset, fillSize, limit, fee, at)
	return []types.Trade{trade}
}

package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// stopLimitExecutor arms on the stop condition, then behaves exactly
// like a Limit(L) order for every subsequent event (spec.md §4.6
// "StopLimit(S, L)").
type stopLimitExecutor struct {
	armed bool
}

func (e *stopLimitExecutor) Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
	leg, ok := state.Order.(order.StopLimitOrder)
	if !ok {
		return nil
	}

	if !e.armed {
		item, ok := itemFor(event, leg.AssetValue)
		if !ok {
			return nil
		}
		low, high, ok := rangeFor(item)
		if !ok {
			return nil
		}
		remaining := state.Remaining()
		triggered := false
		if remaining.Sign() > 0 {
			triggered = high >= leg.Stop
		} else {
			triggered = low <= leg.Stop
		}
		if !triggered {
			return nil
		}
		e.armed = true
	}

	return stepLimitLike(state, leg.AssetValue, leg.Limit, eng, fees, event, at, allowPartial)
}

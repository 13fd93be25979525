package executor

import (
	"math"
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// trailExecutor tracks the best price seen since arming and fires a
// market fill once price retraces by Percent from that extremum
// (spec.md §4.6 "Trail(pct)"). armOn resolves spec.md §9(c)'s open
// question on when tracking starts; it comes from the order itself
// (order.TrailOrder.ArmOn), set by New.
type trailExecutor struct {
	armOn     order.TrailArmOn
	armed     bool
	extremum  float64
	hasExtrem bool
}

func (e *trailExecutor) Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade {
	leg, ok := state.Order.(order.TrailOrder)
	if !ok {
		return nil
	}
	item, found := itemFor(event, leg.AssetValue)

	if e.armOn == order.ArmOnAcceptance {
		e.armed = true
	}
	if !e.armed {
		if !found {
			return nil
		}
		e.armed = true
	}
	if !found {
		return nil
	}

	remaining := state.Remaining()
	if remaining.IsZero() {
		return nil
	}

	price := item.GetPrice(types.PriceDefault)
	if !e.hasExtrem {
		e.extremum = price
		e.hasExtrem = true
		return nil
	}

	sell := remaining.Sign() < 0
	if sell {
		e.extremum = math.Max(e.extremum, price)
	} else {
		e.extremum = math.Min(e.extremum, price)
	}

	var triggered bool
	if sell {
		triggered = price <= e.extremum*(1-leg.Percent)
	} else {
		triggered = price >= e.extremum*(1+leg.Percent)
	}
	if !triggered {
		return nil
	}

	fillPrice := eng.PriceFor(item, types.PriceDefault, remaining)
	fillSize := remaining
	if allowPartial {
		fillSize = eng.FillQuantity(item, remaining)
	}
	if fillSize.IsZero() {
		return nil
	}
	fee := fees.Fee(leg.AssetValue, fillSize, fillPrice)
	trade := fillTrade(state, leg.AssetValue, fillSize, fillPrice, fee, at)
	return []types.Trade{trade}
}

// Package executor turns an accepted order into fills. Each order
// variant gets a dedicated executor tracking status and residual
// quantity (spec.md §4.6); none of this has a teacher analogue (the
// teacher only ever submits IOC-market orders against a real exchange),
// so the state-machine shapes are grounded on the pack's own simulated
// exchange providers instead — see internal/account's grounding note and
// DESIGN.md.
package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// Executor advances one order's fill state by one event. allowPartial
// controls whether pricing.Engine.FillQuantity may cap the fill below
// the order's remaining size. Book.Step passes false only for FOK, where
// a partial fill is not acceptable; IOC may fill partially and then has
// its residual cancelled.
type Executor interface {
	Step(state *order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time, allowPartial bool) []types.Trade
}

// New builds the executor for a single-leg order. Bracket, Cancel and
// Update are not handled here or in Book (Book.Step skips them);
// internal/broker processes those when they are placed, since they
// reference other orders.
func New(ord order.Order) Executor {
	switch o := ord.(type) {
	case order.MarketOrder:
		return &marketExecutor{}
	case order.LimitOrder:
		return &limitExecutor{}
	case order.StopOrder:
		return &stopExecutor{}
	case order.StopLimitOrder:
		return &stopLimitExecutor{}
	case order.TrailOrder:
		return &trailExecutor{armOn: o.ArmOn}
	default:
		return nil
	}
}

// rangeFor extracts the low/high prices an executor checks trigger
// conditions against. PriceBar reports a true intrabar range; every
// other PriceItem variant only reports one or two prices, so both ends
// of the range collapse to whatever is available.
func rangeFor(item types.PriceItem) (low, high float64, ok bool) {
	switch v := item.(type) {
	case types.PriceBar:
		return v.Low, v.High, true
	case types.TradePrice:
		return v.Price, v.Price, true
	case types.PriceQuote:
		return v.Bid, v.Ask, true
	case types.OrderBook:
		var bestBid, bestAsk float64
		if len(v.Bids) > 0 {
			bestBid = v.Bids[0].Price
		}
		if len(v.Asks) > 0 {
			bestAsk = v.Asks[0].Price
		}
		return bestBid, bestAsk, true
	default:
		return 0, 0, false
	}
}

func itemFor(event types.Event, asset types.Asset) (types.PriceItem, bool) {
	item, ok := event.Prices()[asset]
	return item, ok
}

// fillTrade builds a Trade record and advances state's Filled/AvgFillPrice,
// transitioning to COMPLETED when the residual reaches zero.
func fillTrade(state *order.State, asset types.Asset, fillSize types.Size, price float64, fee types.Amount, at time.Time) types.Trade {
	totalBefore := state.Filled.Abs().Float64()
	priceBefore := state.AvgFillPrice
	totalAfter := totalBefore + fillSize.Abs().Float64()
	if totalAfter > 0 {
		state.AvgFillPrice = (priceBefore*totalBefore + price*fillSize.Abs().Float64()) / totalAfter
	}
	state.Filled = state.Filled.Add(fillSize)

	if state.Remaining().IsZero() {
		state.Transition(order.Completed, at)
	}

	return types.Trade{
		Time:    at,
		Asset:   asset,
		Size:    fillSize,
		Price:   price,
		Fee:     fee,
		OrderID: state.ID,
	}
}

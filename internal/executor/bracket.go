package executor

import "roboquant/pkg/order"

// BracketLink records how a broker-expanded Bracket order's three legs
// relate to each other: the take-profit and stop-loss children only
// activate once Entry completes, and a fill on either child cancels the
// sibling (spec.md §4.6 "Bracket(entry, tp, sl)").
type BracketLink struct {
	Entry      order.Order
	TakeProfit order.Order
	StopLoss   order.Order
}

// Expand decomposes a BracketOrder into its constituent legs for a
// caller (internal/broker) that registers the entry as an open order and
// the two children once the entry completes. Each child keeps the size
// it was built with; it is not resized to the entry's fill quantity.
func Expand(b order.BracketOrder) BracketLink {
	return BracketLink{Entry: b.Entry, TakeProfit: b.TakeProfit, StopLoss: b.StopLoss}
}

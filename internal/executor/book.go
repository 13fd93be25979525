package executor

import (
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// Book drives every open single-leg order's executor forward by one
// event, in the fixed order the caller supplies (spec.md §4.6:
// "Updates -> Cancels -> regular order executors, iterating in order of
// (acceptance time, id)" — Book only owns the "regular order executors"
// part; the broker filters Update/Cancel out before calling Step).
type Book struct {
	execs map[types.OrderID]Executor
}

// NewBook creates an empty executor book.
func NewBook() *Book {
	return &Book{execs: make(map[types.OrderID]Executor)}
}

// Step advances every accepted order in states by one event and returns
// every trade produced. states should already be sorted by
// (acceptance time, id); Book does not re-sort them.
func (b *Book) Step(states []*order.State, eng pricing.Engine, fees pricing.FeeModel, event types.Event, at time.Time) []types.Trade {
	var trades []types.Trade

	for _, st := range states {
		if st.Status != order.Accepted {
			continue
		}

		tif := tifOf(st.Order)
		if expired(tif, st.AcceptedAt, at) {
			st.Transition(order.Expired, at)
			delete(b.execs, st.ID)
			continue
		}

		exec, ok := b.execs[st.ID]
		if !ok {
			exec = New(st.Order)
			if exec == nil {
				continue // not a single-leg order; caller handles it
			}
			b.execs[st.ID] = exec
		}

		oneShot := tif.Kind == order.IOC || tif.Kind == order.FOK
		allowPartial := tif.Kind != order.FOK

		produced := exec.Step(st, eng, fees, event, at, allowPartial)
		trades = append(trades, produced...)

		if st.Status.Terminal() {
			delete(b.execs, st.ID)
			continue
		}

		if oneShot {
			st.Transition(order.Cancelled, at)
			delete(b.execs, st.ID)
		}
	}

	return trades
}

// Forget drops any tracked executor state for id, used when a Cancel or
// Update removes an order outside the normal Step flow.
func (b *Book) Forget(id types.OrderID) {
	delete(b.execs, id)
}

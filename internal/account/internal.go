// Package account holds the broker's mutable working state: cash,
// positions, open/closed orders and trades. pkg/account.Account is the
// read-only snapshot exported from here once per step; this package is
// never handed to a strategy or converter directly.
//
// The position fill-processing logic generalizes the teacher's
// strategy.Inventory.applyYesFill / applyNoFill (two fixed YES/NO legs)
// into Position.ApplyFill (one signed Size per asset); the Snapshot
// copy-out idiom is the same one Inventory.Snapshot uses.
package account

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// Internal is the broker's mutable portfolio: cash, positions, orders and
// trade history, plus the buying power last computed by an AccountModel.
// None of its exported methods are safe for concurrent use — a broker
// owns exactly one Internal and runs its step loop single-threaded,
// matching the engine's causal-ordering requirement (spec.md §1).
type Internal struct {
	BaseCurrency types.Currency
	LastUpdate   time.Time

	cash         types.Wallet
	positions    map[types.Asset]types.Position
	openOrders   map[types.OrderID]*order.State
	closedOrders []order.State
	trades       []types.Trade
	buyingPower  types.Amount
}

// New creates an Internal account seeded with an initial deposit.
func New(base types.Currency, at time.Time, initialDeposit types.Amount) *Internal {
	return &Internal{
		BaseCurrency: base,
		LastUpdate:   at,
		cash:         types.NewWallet(initialDeposit),
		positions:    make(map[types.Asset]types.Position),
		openOrders:   make(map[types.OrderID]*order.State),
		buyingPower:  initialDeposit,
	}
}

// Cash exposes the current cash wallet (read-only use; callers must not
// mutate the returned value's internals, which Wallet already guards
// against since its zero value is copy-safe).
func (in *Internal) Cash() types.Wallet { return in.cash }

// Position returns the current holding in asset, or a flat Position if
// none is recorded.
func (in *Internal) Position(asset types.Asset) types.Position {
	if pos, ok := in.positions[asset]; ok {
		return pos
	}
	return types.NewPosition(asset, types.ZeroSize, 0, in.LastUpdate)
}

// InitializeOrders assigns a fresh id and INITIAL status to each new
// order and enters it into openOrders.
func (in *Internal) InitializeOrders(at time.Time, orders ...order.Order) []*order.State {
	out := make([]*order.State, 0, len(orders))
	for _, ord := range orders {
		id := types.OrderID(uuid.NewString())
		st := order.NewState(id, ord, at)
		in.openOrders[id] = st
		out = append(out, st)
	}
	return out
}

// AcceptOrder transitions an open order to ACCEPTED.
func (in *Internal) AcceptOrder(id types.OrderID, at time.Time) error {
	st, ok := in.openOrders[id]
	if !ok {
		return fmt.Errorf("account: no open order %s to accept", id)
	}
	st.Transition(order.Accepted, at)
	return nil
}

// RejectOrder transitions an order to REJECTED and moves it to closed.
func (in *Internal) RejectOrder(id types.OrderID, at time.Time) error {
	st, ok := in.openOrders[id]
	if !ok {
		return fmt.Errorf("account: no open order %s to reject", id)
	}
	st.Transition(order.Rejected, at)
	in.closeOrder(id, st)
	return nil
}

// UpdateOrder moves an open order to the given terminal or non-terminal
// status; terminal statuses close the order out of openOrders.
func (in *Internal) UpdateOrder(id types.OrderID, status order.Status, at time.Time) error {
	st, ok := in.openOrders[id]
	if !ok {
		return fmt.Errorf("account: no open order %s to update", id)
	}
	st.Transition(status, at)
	if status.Terminal() {
		in.closeOrder(id, st)
	}
	return nil
}

func (in *Internal) closeOrder(id types.OrderID, st *order.State) {
	delete(in.openOrders, id)
	in.closedOrders = append(in.closedOrders, *st)
}

// SetPosition writes pos into the book, or removes the entry entirely
// when pos is flat — the book never holds size-0 positions.
func (in *Internal) SetPosition(pos types.Position) {
	if pos.Closed() {
		delete(in.positions, pos.AssetValue)
		return
	}
	in.positions[pos.AssetValue] = pos
}

// ApplyFill processes a single execution against the order it fills:
// updates the position via Position.ApplyFill, withdraws/deposits cash
// for the notional plus fee, and records a Trade.
func (in *Internal) ApplyFill(orderID types.OrderID, asset types.Asset, fillSize types.Size, fillPrice float64, fee types.Amount, at time.Time) {
	pos := in.Position(asset)
	newPos, realized := pos.ApplyFill(fillSize, fillPrice, at)
	in.SetPosition(newPos)

	notional := types.NewAmount(asset.Currency, fillSize.Float64()*fillPrice*asset.Multiplier)
	in.cash.Withdraw(notional)
	in.cash.Withdraw(fee)

	in.trades = append(in.trades, types.Trade{
		Time:    at,
		Asset:   asset,
		Size:    fillSize,
		Price:   fillPrice,
		Fee:     fee,
		PnL:     realized,
		OrderID: orderID,
	})
}

// UpdateMarketPrices marks every open position to the event's prices,
// leaving positions the event says nothing about untouched.
func (in *Internal) UpdateMarketPrices(event types.Event, priceType types.PriceKind) {
	for asset, pos := range in.positions {
		price, ok := event.GetPrice(asset, priceType)
		if !ok {
			continue
		}
		pos.MarketPrice = price
		pos.LastUpdate = event.Time
		in.positions[asset] = pos
	}
	in.LastUpdate = event.Time
}

// OpenOrderStates returns the open orders sorted by (acceptedAt/createdAt,
// id) — the ordering the executor step requires (spec.md §4.6).
func (in *Internal) OpenOrderStates() []*order.State {
	out := make([]*order.State, 0, len(in.openOrders))
	for _, st := range in.openOrders {
		out = append(out, st)
	}
	sortStates(out)
	return out
}

// OrderState looks up an order by id, whether it is still open or
// already closed.
func (in *Internal) OrderState(id types.OrderID) (*order.State, bool) {
	if st, ok := in.openOrders[id]; ok {
		return st, true
	}
	for i := range in.closedOrders {
		if in.closedOrders[i].ID == id {
			return &in.closedOrders[i], true
		}
	}
	return nil, false
}

// ReconcileClosed moves any open order whose Status has already gone
// terminal — set directly by an executor's State.Transition during the
// fill step, bypassing UpdateOrder — into closedOrders. The broker calls
// this once per step after running the executor book.
func (in *Internal) ReconcileClosed(at time.Time) {
	for id, st := range in.openOrders {
		if st.Status.Terminal() {
			if st.ClosedAt.IsZero() {
				st.ClosedAt = at
			}
			in.closeOrder(id, st)
		}
	}
}

func sortStates(states []*order.State) {
	// insertion sort: open-order counts per step are small, and this
	// keeps the comparison (orderTime, id) colocated instead of needing
	// a throwaway sort.Interface type.
	for i := 1; i < len(states); i++ {
		j := i
		for j > 0 && stateLess(states[j], states[j-1]) {
			states[j], states[j-1] = states[j-1], states[j]
			j--
		}
	}
}

func stateLess(a, b *order.State) bool {
	at, bt := orderTime(a), orderTime(b)
	if !at.Equal(bt) {
		return at.Before(bt)
	}
	return a.ID < b.ID
}

func orderTime(st *order.State) time.Time {
	if !st.AcceptedAt.IsZero() {
		return st.AcceptedAt
	}
	return st.CreatedAt
}

// ToAccount deep-copies the working state into a read-only snapshot.
func (in *Internal) ToAccount() account.Account {
	open := make([]order.State, 0, len(in.openOrders))
	for _, st := range in.OpenOrderStates() {
		open = append(open, *st)
	}
	return account.New(in.BaseCurrency, in.LastUpdate, in.cash, in.trades, open, in.closedOrders, in.positions, in.buyingPower)
}

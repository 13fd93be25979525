// Package account holds the immutable Account snapshot emitted by a
// broker after each sync — the read-only view shared with strategies,
// converters, and metrics loggers. It sits above pkg/types and pkg/order
// in the dependency graph so that pkg/types never needs to import
// pkg/order (which itself imports pkg/types).
package account

import (
	"sort"
	"time"

	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// Account is an immutable, cheaply-cloned snapshot of broker state at a
// point in event time. Mutation happens only on the broker's internal
// working copy (internal/account.Internal); this type is the read-only
// export of that state.
type Account struct {
	BaseCurrency types.Currency
	LastUpdate   time.Time
	Cash         types.Wallet
	Trades       []types.Trade
	OpenOrders   []order.State
	ClosedOrders []order.State
	Positions    map[types.Asset]types.Position
	BuyingPower  types.Amount
}

// New builds an Account snapshot, defensively copying all slice/map
// fields so later mutation of the broker's working copy cannot leak
// through to a snapshot already handed out.
func New(
	baseCurrency types.Currency,
	lastUpdate time.Time,
	cash types.Wallet,
	trades []types.Trade,
	openOrders []order.State,
	closedOrders []order.State,
	positions map[types.Asset]types.Position,
	buyingPower types.Amount,
) Account {
	posCopy := make(map[types.Asset]types.Position, len(positions))
	for k, v := range positions {
		posCopy[k] = v
	}

	return Account{
		BaseCurrency: baseCurrency,
		LastUpdate:   lastUpdate,
		Cash:         cash.Clone(),
		Trades:       append([]types.Trade(nil), trades...),
		OpenOrders:   append([]order.State(nil), openOrders...),
		ClosedOrders: append([]order.State(nil), closedOrders...),
		Positions:    posCopy,
		BuyingPower:  buyingPower,
	}
}

// Equity returns cash plus the market value of every open position, as a
// multi-currency Wallet (no conversion performed).
func (a Account) Equity() types.Wallet {
	equity := a.Cash.Clone()
	for _, pos := range a.Positions {
		if pos.Closed() {
			continue
		}
		equity.Deposit(pos.MarketValue())
	}
	return equity
}

// EquityAmount converts Equity into a single BaseCurrency amount using
// fx, valued at LastUpdate — never at load time, per the FX plug-in
// contract.
func (a Account) EquityAmount(fx types.FXConverter) (types.Amount, error) {
	return a.Equity().Convert(a.BaseCurrency, a.LastUpdate, fx)
}

// Position returns the position held in asset, or the zero (flat)
// Position if none exists.
func (a Account) Position(asset types.Asset) types.Position {
	if pos, ok := a.Positions[asset]; ok {
		return pos
	}
	return types.NewPosition(asset, types.ZeroSize, 0, a.LastUpdate)
}

// AssetsHeld returns the assets with a non-flat position, sorted by
// symbol for deterministic iteration.
func (a Account) AssetsHeld() []types.Asset {
	out := make([]types.Asset, 0, len(a.Positions))
	for asset, pos := range a.Positions {
		if !pos.Closed() {
			out = append(out, asset)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// HasOpenOrder reports whether asset has a live order outstanding.
func (a Account) HasOpenOrder(asset types.Asset) bool {
	for _, st := range a.OpenOrders {
		if leg, ok := st.Order.(interface{ Asset() types.Asset }); ok && leg.Asset() == asset {
			return true
		}
	}
	return false
}

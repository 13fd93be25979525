// Package broker simulates order placement and execution: it wires
// internal/account, internal/executor and internal/pricing together the
// way the teacher's internal/engine.Engine wires its own subsystems
// (feeds, book, inventory, maker) into one component-holding struct with
// a snapshot-producing method (GetMarketsSnapshot here becomes Sync).
package broker

import (
	"log/slog"
	"time"

	"roboquant/internal/account"
	"roboquant/internal/executor"
	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	pkgaccount "roboquant/pkg/account"
	"roboquant/pkg/types"
)

// Broker is the capability interface a run loop depends on, so callers
// never need to know they're talking to a SimBroker specifically
// (spec.md §9 "map each to a capability interface").
type Broker interface {
	Place(orders []order.Order, at time.Time)
	Sync(event types.Event) pkgaccount.Account

	// Close releases whatever resources this broker holds. The run loop
	// guarantees Close is called exactly once per run, on every exit path
	// (spec.md §5 "close-on-exit on all paths").
	Close() error
}

type pendingBracket struct {
	link executor.BracketLink
}

// SimBroker is the reference broker: it accepts every order a converter
// emits, settles fills against a configurable PricingEngine/FeeModel,
// and recomputes buying power via an account.Model after each event. It
// is a pure function of its own state plus the event stream, so two
// SimBrokers fed the same orders and events always reach the same
// account (spec.md §4.9 determinism).
type SimBroker struct {
	internal  *account.Internal
	model     account.Model
	fx        types.FXConverter
	engine    pricing.Engine
	fees      pricing.FeeModel
	priceType types.PriceKind

	book       *executor.Book
	pending    map[types.OrderID]*pendingBracket
	ocoPartner map[types.OrderID]types.OrderID

	logger *slog.Logger
}

// New creates a SimBroker with an already-seeded Internal account.
func New(internal *account.Internal, model account.Model, fx types.FXConverter, engine pricing.Engine, fees pricing.FeeModel, priceType types.PriceKind, logger *slog.Logger) *SimBroker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SimBroker{
		internal:   internal,
		model:      model,
		fx:         fx,
		engine:     engine,
		fees:       fees,
		priceType:  priceType,
		book:       executor.NewBook(),
		pending:    make(map[types.OrderID]*pendingBracket),
		ocoPartner: make(map[types.OrderID]types.OrderID),
		logger:     logger.With("component", "broker"),
	}
}

// Place submits new instructions: Cancel/Update are applied immediately
// against existing orders, Bracket orders are expanded with the take-
// profit/stop-loss legs held back until the entry fills, and every other
// order is accepted as a new open order (spec.md §4.6).
func (b *SimBroker) Place(orders []order.Order, at time.Time) {
	for _, ord := range orders {
		switch o := ord.(type) {
		case order.CancelOrder:
			b.cancel(o, at)
		case order.UpdateOrder:
			b.update(o, at)
		case order.BracketOrder:
			b.placeBracket(o, at)
		default:
			b.placeSingle(ord, at)
		}
	}
}

func (b *SimBroker) placeSingle(ord order.Order, at time.Time) {
	for _, st := range b.internal.InitializeOrders(at, ord) {
		if err := b.internal.AcceptOrder(st.ID, at); err != nil {
			b.logger.Error("accept order failed", "id", st.ID, "error", err)
		}
	}
}

func (b *SimBroker) placeBracket(bo order.BracketOrder, at time.Time) {
	link := executor.Expand(bo)
	states := b.internal.InitializeOrders(at, link.Entry)
	if len(states) != 1 {
		return
	}
	entry := states[0]
	if err := b.internal.AcceptOrder(entry.ID, at); err != nil {
		b.logger.Error("accept bracket entry failed", "id", entry.ID, "error", err)
		return
	}
	b.pending[entry.ID] = &pendingBracket{link: link}
}

func (b *SimBroker) cancel(c order.CancelOrder, at time.Time) {
	if err := b.internal.UpdateOrder(c.Target, order.Cancelled, at); err != nil {
		b.logger.Warn("cancel rejected: target not open", "target", c.Target)
		return
	}
	b.book.Forget(c.Target)
}

// update replaces the target's parameters in place, preserving its id,
// status and fill history. Rejected when the target isn't open or the
// replacement doesn't preserve asset and size (spec.md §4.6 "Update").
func (b *SimBroker) update(u order.UpdateOrder, at time.Time) {
	st, ok := b.internal.OrderState(u.Target)
	if !ok || !st.Status.Open() {
		b.logger.Warn("update rejected: target not open", "target", u.Target)
		return
	}

	oldLeg, ok1 := st.Order.(interface {
		Asset() types.Asset
		Size() types.Size
	})
	newLeg, ok2 := u.Replacement.(interface {
		Asset() types.Asset
		Size() types.Size
	})
	if !ok1 || !ok2 || oldLeg.Asset() != newLeg.Asset() || !oldLeg.Size().Equal(newLeg.Size()) {
		b.logger.Warn("update rejected: asset/size mismatch", "target", u.Target)
		return
	}

	st.Order = u.Replacement
	b.book.Forget(u.Target) // any armed stop/trail state no longer applies to the new parameters
	_ = at
}

// Sync advances every open order by one event, settles fills against the
// internal account, activates and resolves bracket legs, and recomputes
// buying power — returning the resulting read-only snapshot.
func (b *SimBroker) Sync(event types.Event) pkgaccount.Account {
	at := event.Time
	b.internal.UpdateMarketPrices(event, b.priceType)

	states := b.internal.OpenOrderStates()
	trades := b.book.Step(states, b.engine, b.fees, event, at)
	for _, trade := range trades {
		b.internal.ApplyFill(trade.OrderID, trade.Asset, trade.Size, trade.Price, trade.Fee, trade.Time)
	}

	b.internal.ReconcileClosed(at)
	b.activateBrackets(at)
	b.resolveOCO(at)

	if err := account.UpdateBuyingPower(b.internal, b.model, b.fx); err != nil {
		b.logger.Error("buying power update failed", "error", err)
	}

	return b.internal.ToAccount()
}

func (b *SimBroker) activateBrackets(at time.Time) {
	for entryID, pending := range b.pending {
		st, ok := b.internal.OrderState(entryID)
		if !ok {
			delete(b.pending, entryID)
			continue
		}
		if !st.Status.Terminal() {
			continue
		}
		delete(b.pending, entryID)
		if st.Status != order.Completed {
			continue // entry was rejected/cancelled/expired before filling
		}

		tpStates := b.internal.InitializeOrders(at, pending.link.TakeProfit)
		slStates := b.internal.InitializeOrders(at, pending.link.StopLoss)
		if len(tpStates) != 1 || len(slStates) != 1 {
			continue
		}
		tpID, slID := tpStates[0].ID, slStates[0].ID
		if err := b.internal.AcceptOrder(tpID, at); err != nil {
			b.logger.Error("accept bracket take-profit failed", "id", tpID, "error", err)
		}
		if err := b.internal.AcceptOrder(slID, at); err != nil {
			b.logger.Error("accept bracket stop-loss failed", "id", slID, "error", err)
		}
		b.ocoPartner[tpID] = slID
		b.ocoPartner[slID] = tpID
	}
}

// Close is a no-op: SimBroker holds no external resources, only the
// in-memory account/book state it was constructed with.
func (b *SimBroker) Close() error { return nil }

func (b *SimBroker) resolveOCO(at time.Time) {
	var resolved []types.OrderID
	for id, partner := range b.ocoPartner {
		st, ok := b.internal.OrderState(id)
		if !ok || st.Status != order.Completed {
			continue
		}
		if pst, ok := b.internal.OrderState(partner); ok && pst.Status.Open() {
			if err := b.internal.UpdateOrder(partner, order.Cancelled, at); err != nil {
				b.logger.Error("oco cancel failed", "target", partner, "error", err)
			}
			b.book.Forget(partner)
		}
		resolved = append(resolved, id, partner)
	}
	for _, id := range resolved {
		delete(b.ocoPartner, id)
	}
}

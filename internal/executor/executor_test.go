package executor

import (
	"testing"
	"time"

	"roboquant/internal/pricing"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

var testAsset = types.NewAsset("TEST", types.AssetStock, types.USD)

func bar(low, high, close float64) types.Event {
	return types.NewEvent(time.Now(), types.PriceBar{AssetValue: testAsset, Open: close, High: high, Low: low, Close: close})
}

func newAcceptedState(ord order.Order, at time.Time) *order.State {
	st := order.NewState("order-1", ord, at)
	st.Transition(order.Accepted, at)
	return st
}

func TestMarketExecutorFillsImmediately(t *testing.T) {
	t.Parallel()
	at := time.Now()
	st := newAcceptedState(order.NewMarketOrder(testAsset, types.NewSize(10)), at)

	trades := (&marketExecutor{}).Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at, true)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade, got %d", len(trades))
	}
	if st.Status != order.Completed {
		t.Errorf("expected COMPLETED, got %s", st.Status)
	}
	if !st.Remaining().IsZero() {
		t.Errorf("expected zero remaining, got %v", st.Remaining())
	}
}

func TestLimitExecutorWaitsForTrigger(t *testing.T) {
	t.Parallel()
	at := time.Now()
	st := newAcceptedState(order.NewLimitOrder(testAsset, types.NewSize(10), 95), at)

	noTrigger := (&limitExecutor{}).Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at, true)
	if len(noTrigger) != 0 {
		t.Fatalf("expected no fill above limit, got %d", len(noTrigger))
	}

	trades := (&limitExecutor{}).Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(90, 96, 94), at, true)
	if len(trades) != 1 {
		t.Fatalf("expected 1 fill once low touches limit, got %d", len(trades))
	}
	if trades[0].Price != 95 {
		t.Errorf("expected fill at limit price 95, got %v", trades[0].Price)
	}
}

func TestStopExecutorTriggersOnHighForBuy(t *testing.T) {
	t.Parallel()
	at := time.Now()
	st := newAcceptedState(order.NewStopOrder(testAsset, types.NewSize(10), 105), at)

	trades := (&stopExecutor{}).Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(100, 106, 105), at, true)
	if len(trades) != 1 {
		t.Fatalf("expected 1 trade once high touches stop, got %d", len(trades))
	}
}

func TestStopLimitArmsThenBehavesAsLimit(t *testing.T) {
	t.Parallel()
	at := time.Now()
	st := newAcceptedState(order.NewStopLimitOrder(testAsset, types.NewSize(10), 105, 103), at)
	exec := &stopLimitExecutor{}

	noArm := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(100, 102, 101), at, true)
	if len(noArm) != 0 {
		t.Fatalf("expected no fill before stop is touched, got %d", len(noArm))
	}

	arming := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(104, 106, 105), at, true)
	if len(arming) != 0 {
		t.Fatalf("arming step should not itself fill unless the limit is also satisfied, got %d", len(arming))
	}
	if !exec.armed {
		t.Fatalf("expected executor to be armed after stop touch")
	}

	trades := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(102, 104, 103), at, true)
	if len(trades) != 1 {
		t.Fatalf("expected fill once armed and limit satisfied, got %d", len(trades))
	}
}

func TestTrailExecutorTriggersOnRetrace(t *testing.T) {
	t.Parallel()
	at := time.Now()
	st := newAcceptedState(order.NewTrailOrder(testAsset, types.NewSize(-10), 0.05), at)
	exec := &trailExecutor{armOn: order.ArmOnAcceptance}

	seed := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at, true)
	if len(seed) != 0 {
		t.Fatalf("expected no fill on the seeding step, got %d", len(seed))
	}

	rise := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(109, 111, 110), at, true)
	if len(rise) != 0 {
		t.Fatalf("expected no fill while price rises, got %d", len(rise))
	}
	if exec.extremum != 110 {
		t.Errorf("expected extremum tracked at 110, got %v", exec.extremum)
	}

	drop := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(103, 105, 104), at, true)
	if len(drop) != 1 {
		t.Fatalf("expected fill once price retraces 5%% from 110, got %d", len(drop))
	}
}

func TestTrailExecutorArmOnFirstPriceWaitsForAPrice(t *testing.T) {
	t.Parallel()
	at := time.Now()
	trail := order.NewTrailOrder(testAsset, types.NewSize(-10), 0.05).WithArmOn(order.ArmOnFirstPrice)
	st := newAcceptedState(trail, at)
	exec := New(trail)

	other := types.NewAsset("OTHER", types.AssetStock, types.USD)
	ignored := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, types.NewEvent(at, types.PriceBar{AssetValue: other, Open: 50, High: 50, Low: 50, Close: 50}), at, true)
	if len(ignored) != 0 {
		t.Fatalf("expected no fill before any price for the order's own asset, got %d", len(ignored))
	}

	seed := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at, true)
	if len(seed) != 0 {
		t.Fatalf("expected no fill on the arming/seeding step, got %d", len(seed))
	}

	drop := exec.Step(st, pricing.NoCost{}, pricing.NoFee{}, bar(94, 96, 95), at, true)
	if len(drop) != 1 {
		t.Fatalf("expected fill once armed and price retraces, got %d", len(drop))
	}
}

func TestBookCancelsFOKWhenNotFullyFillable(t *testing.T) {
	t.Parallel()
	at := time.Now()
	ord := order.LimitOrder{Leg: order.Leg{AssetValue: testAsset, SizeValue: types.NewSize(10), Tif: order.TimeInForce{Kind: order.FOK}}, Limit: 95}
	st := newAcceptedState(ord, at)
	book := NewBook()

	trades := book.Step([]*order.State{st}, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at)
	if len(trades) != 0 {
		t.Fatalf("expected no fill above the limit, got %d", len(trades))
	}
	if st.Status != order.Cancelled {
		t.Errorf("expected FOK to cancel when not immediately fillable, got %s", st.Status)
	}
}

func TestBookCompletesFullyFilledIOC(t *testing.T) {
	t.Parallel()
	at := time.Now()
	ord := order.LimitOrder{Leg: order.Leg{AssetValue: testAsset, SizeValue: types.NewSize(10), Tif: order.TimeInForce{Kind: order.IOC}}, Limit: 95}
	st := newAcceptedState(ord, at)
	book := NewBook()

	trades := book.Step([]*order.State{st}, pricing.NoCost{}, pricing.NoFee{}, bar(90, 96, 94), at)
	if len(trades) != 1 {
		t.Fatalf("expected the triggered fill to still happen, got %d", len(trades))
	}
	if st.Status != order.Completed {
		t.Errorf("expected order fully filled and completed, got %s", st.Status)
	}
}

func TestBookExpiresGTD(t *testing.T) {
	t.Parallel()
	at := time.Now()
	expiry := at.Add(time.Hour)
	ord := order.LimitOrder{Leg: order.Leg{AssetValue: testAsset, SizeValue: types.NewSize(10), Tif: order.TimeInForce{Kind: order.GTD, Expires: expiry}}, Limit: 95}
	st := newAcceptedState(ord, at)
	book := NewBook()

	book.Step([]*order.State{st}, pricing.NoCost{}, pricing.NoFee{}, bar(99, 101, 100), at.Add(2*time.Hour))
	if st.Status != order.Expired {
		t.Errorf("expected EXPIRED after GTD lapses, got %s", st.Status)
	}
}

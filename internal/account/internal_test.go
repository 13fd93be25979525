package account

import (
	"testing"
	"time"

	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

type identityFX struct{}

func (identityFX) Convert(amount types.Amount, to types.Currency, at time.Time) (types.Amount, error) {
	if amount.Currency == to {
		return amount, nil
	}
	return types.NewAmount(to, amount.Float64()), nil
}

var testAsset = types.NewAsset("TEST", types.AssetStock, types.USD)

func TestInternalOrderLifecycle(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 100_000))

	states := in.InitializeOrders(time.Now(), order.NewMarketOrder(testAsset, types.NewSize(10)))
	if len(states) != 1 {
		t.Fatalf("expected 1 state, got %d", len(states))
	}
	id := states[0].ID
	if states[0].Status != order.Initial {
		t.Fatalf("expected INITIAL, got %s", states[0].Status)
	}

	if err := in.AcceptOrder(id, time.Now()); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if len(in.OpenOrderStates()) != 1 {
		t.Fatalf("expected order still open after accept")
	}

	if err := in.UpdateOrder(id, order.Completed, time.Now()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(in.OpenOrderStates()) != 0 {
		t.Fatalf("expected order closed after completion")
	}
	if len(in.closedOrders) != 1 {
		t.Fatalf("expected 1 closed order, got %d", len(in.closedOrders))
	}
}

func TestInternalApplyFillUpdatesPositionAndCash(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 100_000))

	in.ApplyFill("order-1", testAsset, types.NewSize(10), 100, types.NewAmount(types.USD, 1), time.Now())

	pos := in.Position(testAsset)
	if pos.Closed() {
		t.Fatalf("expected open position after fill")
	}
	if !pos.SizeValue.Equal(types.NewSize(10)) {
		t.Errorf("expected size 10, got %v", pos.SizeValue)
	}

	cash := in.Cash().Get(types.USD)
	want := 100_000.0 - 10*100 - 1
	if got := cash.Float64(); got != want {
		t.Errorf("expected cash %v, got %v", want, got)
	}

	if len(in.trades) != 1 {
		t.Fatalf("expected 1 trade recorded, got %d", len(in.trades))
	}
}

func TestInternalSetPositionRemovesFlat(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 100_000))
	in.SetPosition(types.NewPosition(testAsset, types.NewSize(5), 10, time.Now()))
	if _, ok := in.positions[testAsset]; !ok {
		t.Fatalf("expected position to be recorded")
	}

	in.SetPosition(types.NewPosition(testAsset, types.ZeroSize, 0, time.Now()))
	if _, ok := in.positions[testAsset]; ok {
		t.Errorf("expected flat position to be removed from the book")
	}
}

func TestInternalOpenOrderStatesAreOrdered(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 100_000))
	base := time.Now()

	states := in.InitializeOrders(base.Add(2*time.Second), order.NewMarketOrder(testAsset, types.NewSize(1)))
	states = append(states, in.InitializeOrders(base, order.NewMarketOrder(testAsset, types.NewSize(2)))...)
	_ = states

	ordered := in.OpenOrderStates()
	if len(ordered) != 2 {
		t.Fatalf("expected 2 open orders, got %d", len(ordered))
	}
	if ordered[0].CreatedAt.After(ordered[1].CreatedAt) {
		t.Errorf("expected open orders sorted by creation time")
	}
}

func TestCashAccountBuyingPowerIsCash(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 50_000))
	if err := UpdateBuyingPower(in, CashAccount{}, identityFX{}); err != nil {
		t.Fatalf("update buying power: %v", err)
	}
	if got := in.ToAccount().BuyingPower.Float64(); got != 50_000 {
		t.Errorf("expected buying power 50000, got %v", got)
	}
}

func TestMarginAccountAppliesLeverageAndExposure(t *testing.T) {
	t.Parallel()
	in := New(types.USD, time.Now(), types.NewAmount(types.USD, 10_000))
	in.SetPosition(types.NewPosition(testAsset, types.NewSize(100), 50, time.Now()))

	model := NewMarginAccount(2)
	if err := UpdateBuyingPower(in, model, identityFX{}); err != nil {
		t.Fatalf("update buying power: %v", err)
	}

	// equity = 10_000 cash + 100*50 market value = 15_000; exposure = 5_000
	// buyingPower = 15_000*2 - 5_000 = 25_000
	if got := in.ToAccount().BuyingPower.Float64(); got != 25_000 {
		t.Errorf("expected buying power 25000, got %v", got)
	}
}

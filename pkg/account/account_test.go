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

func TestAccountEquityAndEquityAmount(t *testing.T) {
	t.Parallel()
	now := time.Now()
	asset := types.NewAsset("TEST", types.AssetStock, types.USD)

	pos, _ := types.NewPosition(asset, types.ZeroSize, 0, now).ApplyFill(types.NewSize(10), 100, now)
	pos.MarketPrice = 120

	acc := New(types.USD, now, types.NewWallet(types.NewAmount(types.USD, 1000)),
		nil, nil, nil,
		map[types.Asset]types.Position{asset: pos},
		types.NewAmount(types.USD, 1000))

	equity := acc.Equity()
	if got := equity.Get(types.USD).Float64(); got != 1000+1200 {
		t.Errorf("equity = %v, want %v", got, 1000+1200)
	}

	amt, err := acc.EquityAmount(identityFX{})
	if err != nil {
		t.Fatalf("EquityAmount: %v", err)
	}
	if amt.Float64() != 2200 {
		t.Errorf("equity amount = %v, want 2200", amt.Float64())
	}
}

func TestAccountSnapshotIsolation(t *testing.T) {
	t.Parallel()
	now := time.Now()
	asset := types.NewAsset("TEST", types.AssetStock, types.USD)
	positions := map[types.Asset]types.Position{asset: types.NewPosition(asset, types.NewSize(5), 100, now)}

	acc := New(types.USD, now, types.NewWallet(), nil, nil, nil, positions, types.Amount{})

	positions[asset] = types.NewPosition(asset, types.NewSize(999), 1, now)
	if acc.Positions[asset].SizeValue.Float64() == 999 {
		t.Fatal("snapshot should not observe later mutation of the source map")
	}
}

func TestAccountHasOpenOrder(t *testing.T) {
	t.Parallel()
	asset := types.NewAsset("TEST", types.AssetStock, types.USD)
	other := types.NewAsset("OTHER", types.AssetStock, types.USD)

	st := order.NewState("id-1", order.NewMarketOrder(asset, types.NewSize(1)), time.Now())
	acc := New(types.USD, time.Now(), types.NewWallet(), nil, []order.State{*st}, nil, nil, types.Amount{})

	if !acc.HasOpenOrder(asset) {
		t.Error("expected open order for asset")
	}
	if acc.HasOpenOrder(other) {
		t.Error("did not expect open order for unrelated asset")
	}
}

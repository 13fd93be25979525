package converter

import (
	"testing"
	"time"

	"roboquant/internal/strategy"
	"roboquant/pkg/account"
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

func flatAccount(cash float64) account.Account {
	return account.New(types.USD, time.Now(), types.NewWallet(types.NewAmount(types.USD, cash)),
		nil, nil, nil, nil, types.NewAmount(types.USD, cash))
}

func priceEvent(price float64) types.Event {
	return types.NewEvent(time.Now(), types.TradePrice{AssetValue: testAsset, Price: price})
}

func TestFlexEntrySizing(t *testing.T) {
	t.Parallel()
	flex := NewFlex(identityFX{})
	flex.OrderPercentage = 0.01

	acc := flatAccount(100_000)
	event := priceEvent(100)
	sig := strategy.NewSignal(testAsset, 1, "test")
	sig.Type = strategy.Entry

	out := flex.Convert([]strategy.Signal{sig}, acc, event)
	if len(out) != 1 {
		t.Fatalf("expected one order, got %d", len(out))
	}
	market, ok := out[0].(order.MarketOrder)
	if !ok {
		t.Fatalf("expected MarketOrder, got %T", out[0])
	}
	if !market.SizeValue.Equal(types.NewSize(10)) {
		t.Errorf("expected size 10 (1%% of 100_000 / 100), got %v", market.SizeValue)
	}
}

func TestFlexRejectsShortWhenShortingDisabled(t *testing.T) {
	t.Parallel()
	flex := NewFlex(identityFX{})
	flex.Shorting = false

	sig := strategy.NewSignal(testAsset, -1, "test")
	sig.Type = strategy.Entry

	out := flex.Convert([]strategy.Signal{sig}, flatAccount(100_000), priceEvent(100))
	if len(out) != 0 {
		t.Errorf("expected shorting to be rejected, got %d orders", len(out))
	}
}

func TestFlexSkipsBelowMinPrice(t *testing.T) {
	t.Parallel()
	flex := NewFlex(identityFX{})
	flex.MinPrice = 50

	sig := strategy.NewSignal(testAsset, 1, "test")
	out := flex.Convert([]strategy.Signal{sig}, flatAccount(100_000), priceEvent(10))
	if len(out) != 0 {
		t.Errorf("expected signal below minPrice to be skipped, got %d orders", len(out))
	}
}

package runner

import (
	"context"
	"testing"
	"time"

	intaccount "roboquant/internal/account"
	"roboquant/internal/broker"
	pkgfeed "roboquant/internal/feed"
	"roboquant/internal/journal"
	"roboquant/internal/pricing"
	"roboquant/internal/strategy"
	pkgaccount "roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

var testAsset = types.NewAsset("TEST", types.AssetStock, types.USD)

type fixedFeed struct {
	events []types.Event
}

func (f fixedFeed) Timeframe() timeframe.Timeframe { return timeframe.Infinite(f.events[0].Time) }

func (f fixedFeed) Play(ctx context.Context, ch *pkgfeed.EventChannel) {
	defer ch.Close()
	for _, e := range f.events {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ch.Send(e)
	}
}

type buyOnceStrategy struct{ fired bool }

func (s *buyOnceStrategy) CreateSignals(event types.Event) []strategy.Signal {
	if s.fired {
		return nil
	}
	s.fired = true
	return []strategy.Signal{strategy.NewSignal(testAsset, 1, "test")}
}
func (s *buyOnceStrategy) Reset() { s.fired = false }

type fixedSizeConverter struct{}

func (fixedSizeConverter) Convert(signals []strategy.Signal, acc pkgaccount.Account, event types.Event) []order.Order {
	var out []order.Order
	for _, sig := range signals {
		if sig.Rating > 0 {
			out = append(out, order.NewMarketOrder(sig.Asset, types.NewSize(10)))
		}
	}
	return out
}

type identityFX struct{}

func (identityFX) Convert(amount types.Amount, to types.Currency, at time.Time) (types.Amount, error) {
	return types.Amount{Currency: to, Value: amount.Value}, nil
}

func bar(at time.Time, price float64) types.Event {
	return types.NewEvent(at, types.PriceBar{AssetValue: testAsset, Open: price, High: price, Low: price, Close: price})
}

func TestRunDrivesFullLoopAndTracksJournal(t *testing.T) {
	t.Parallel()
	start := time.Now()
	events := []types.Event{
		bar(start, 100),
		bar(start.Add(time.Minute), 101),
		bar(start.Add(2*time.Minute), 102),
	}

	internal := intaccount.New(types.USD, start, types.NewAmount(types.USD, 10_000))
	brk := broker.New(internal, intaccount.CashAccount{}, identityFX{}, pricing.NoCost{}, pricing.NoFee{}, types.PriceDefault, nil)
	logger := journal.NewMemoryLogger()
	j := journal.NewMetricsJournal(logger, "test-run", nil)

	spec := Spec{
		Name:      "test-run",
		Feed:      fixedFeed{events: events},
		Strategy:  &buyOnceStrategy{},
		Converter: fixedSizeConverter{},
		Broker:    brk,
		Journal:   j,
	}

	acc, err := Run(context.Background(), spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pos := acc.Position(testAsset)
	if !pos.Size().Equal(types.NewSize(10)) {
		t.Errorf("expected position size 10 after buy signal, got %v", pos.Size())
	}

	ts := logger.GetMetric("account.equity", "test-run")
	if ts.Len() != len(events) {
		t.Fatalf("expected one equity observation per event, got %d", ts.Len())
	}
}

func TestRunAsyncRecoversPanicIntoResult(t *testing.T) {
	t.Parallel()
	start := time.Now()
	spec := Spec{
		Name:      "panics",
		Feed:      fixedFeed{events: []types.Event{bar(start, 100)}},
		Strategy:  &buyOnceStrategy{},
		Converter: fixedSizeConverter{},
		Broker:    panicBroker{},
	}

	res := <-RunAsync(context.Background(), spec)
	if res.Err == nil {
		t.Fatal("expected RunAsync to report the panic as an error")
	}
	if res.Name != "panics" {
		t.Errorf("expected Result.Name to match spec.Name, got %q", res.Name)
	}
}

type panicBroker struct{}

func (panicBroker) Place([]order.Order, time.Time)      {}
func (panicBroker) Sync(types.Event) pkgaccount.Account { panic("duplicate order id") }
func (panicBroker) Close() error                        { return nil }

func TestRunManyCollectsAllResultsDespiteOneFailure(t *testing.T) {
	t.Parallel()
	start := time.Now()
	good := Spec{
		Name:      "good",
		Feed:      fixedFeed{events: []types.Event{bar(start, 100)}},
		Strategy:  &buyOnceStrategy{},
		Converter: fixedSizeConverter{},
		Broker: func() broker.Broker {
			internal := intaccount.New(types.USD, start, types.NewAmount(types.USD, 1_000))
			return broker.New(internal, intaccount.CashAccount{}, identityFX{}, pricing.NoCost{}, pricing.NoFee{}, types.PriceDefault, nil)
		}(),
	}
	bad := Spec{
		Name:      "bad",
		Feed:      fixedFeed{events: []types.Event{bar(start, 100)}},
		Strategy:  &buyOnceStrategy{},
		Converter: fixedSizeConverter{},
		Broker:    panicBroker{},
	}

	results := RunMany(context.Background(), []Spec{good, bad})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	var sawGood, sawBad bool
	for _, r := range results {
		if r.Name == "good" && r.Err == nil {
			sawGood = true
		}
		if r.Name == "bad" && r.Err != nil {
			sawBad = true
		}
	}
	if !sawGood || !sawBad {
		t.Fatalf("expected one successful and one failed result, got %+v", results)
	}
}

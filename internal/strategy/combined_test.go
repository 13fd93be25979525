package strategy

import (
	"testing"

	"roboquant/pkg/types"
)

type fixedStrategy struct {
	signals []Signal
}

func (f fixedStrategy) CreateSignals(types.Event) []Signal { return f.signals }
func (f fixedStrategy) Reset()                             {}

func TestCombinedResolverNoConflictsDropsDisagreement(t *testing.T) {
	t.Parallel()
	a := types.NewAsset("A", types.AssetStock, types.USD)
	b := types.NewAsset("B", types.AssetStock, types.USD)

	bullish := fixedStrategy{signals: []Signal{NewSignal(a, 1, "s1"), NewSignal(b, 1, "s1")}}
	bearish := fixedStrategy{signals: []Signal{NewSignal(a, -1, "s2")}}

	combined := NewCombined(ResolverNoConflicts, bullish, bearish)
	out := combined.CreateSignals(types.Event{})

	if len(out) != 1 || out[0].Asset != b {
		t.Fatalf("expected only B's non-conflicting signal to survive, got %+v", out)
	}
}

func TestCombinedResolverFirstKeepsEarliest(t *testing.T) {
	t.Parallel()
	a := types.NewAsset("A", types.AssetStock, types.USD)
	s1 := fixedStrategy{signals: []Signal{{Asset: a, Rating: 1, Source: "first"}}}
	s2 := fixedStrategy{signals: []Signal{{Asset: a, Rating: -1, Source: "second"}}}

	combined := NewCombined(ResolverFirst, s1, s2)
	out := combined.CreateSignals(types.Event{})

	if len(out) != 1 || out[0].Source != "first" {
		t.Fatalf("expected the first signal to win, got %+v", out)
	}
}

func TestParallelMatchesCombinedOutput(t *testing.T) {
	t.Parallel()
	a := types.NewAsset("A", types.AssetStock, types.USD)
	s1 := fixedStrategy{signals: []Signal{NewSignal(a, 1, "s1")}}
	s2 := fixedStrategy{signals: []Signal{NewSignal(a, 1, "s2")}}

	par := NewParallel(ResolverNone, s1, s2)
	out := par.CreateSignals(types.Event{})
	if len(out) != 2 {
		t.Fatalf("expected both substrategy signals under NONE, got %d", len(out))
	}
}

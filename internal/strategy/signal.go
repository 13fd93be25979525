// Package strategy implements the Strategy contract (spec.md §4.3):
// createSignals(event) -> [Signal]. Reference strategies (EMA crossover,
// RSI, Random, Combined/Parallel) and the HistoricPrice sliding-window
// helper all live here. The rolling-window eviction shape throughout is
// adapted from the teacher's internal/strategy/flow_tracker.go.
package strategy

import (
	"context"

	"roboquant/pkg/types"
)

// SignalType classifies whether a Signal opens, closes, or either.
type SignalType string

const (
	Entry SignalType = "ENTRY"
	Exit  SignalType = "EXIT"
	Both  SignalType = "BOTH"
)

// Signal is a strategy's opinion about one asset: a rating whose sign
// indicates direction (positive = bullish/buy, negative = bearish/sell)
// and magnitude indicates conviction.
type Signal struct {
	Asset       types.Asset
	Rating      float64
	TakeProfit  *float64
	StopLoss    *float64
	Probability *float64
	Source      string
	Type        SignalType
}

// NewSignal builds an ENTRY-or-EXIT-agnostic Signal (Type defaults to Both).
func NewSignal(asset types.Asset, rating float64, source string) Signal {
	return Signal{Asset: asset, Rating: rating, Source: source, Type: Both}
}

// Conflicts reports whether two signals disagree: same asset, opposite
// rating signs (spec.md §4.3).
func (s Signal) Conflicts(other Signal) bool {
	if s.Asset != other.Asset {
		return false
	}
	return sign(s.Rating) != 0 && sign(other.Rating) != 0 && sign(s.Rating) != sign(other.Rating)
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Strategy is stateful across events within a single run. Reset clears
// all accumulated state (warm-up windows, EMA values, RNG position) so
// the same Strategy value can be reused for a fresh run.
type Strategy interface {
	CreateSignals(event types.Event) []Signal
	Reset()
}

// ContextStrategy is implemented by strategies whose signal generation
// may want to observe run cancellation (e.g. a Parallel strategy
// fanning substrategies out onto goroutines).
type ContextStrategy interface {
	Strategy
	CreateSignalsContext(ctx context.Context, event types.Event) []Signal
}

package strategy

import (
	"context"
	"sort"
	"sync"

	"roboquant/pkg/types"
)

// Resolver is a built-in merge rule for combining signals from multiple
// substrategies that fired for the same asset.
type Resolver string

const (
	ResolverNone         Resolver = "NONE"          // keep everything as-is, no conflict handling
	ResolverFirst        Resolver = "FIRST"         // per asset, keep only the first signal seen
	ResolverLast         Resolver = "LAST"          // per asset, keep only the last signal seen
	ResolverNoConflicts  Resolver = "NO_CONFLICTS"  // drop every signal for an asset that has any conflict
	ResolverNoDuplicates Resolver = "NO_DUPLICATES" // per asset, keep only one signal (the first), regardless of conflict
)

// SignalResolver is a user-supplied alternative to the built-in Resolver
// constants: given all signals emitted this step, return the merged set.
type SignalResolver func(signals []Signal) []Signal

// Combined runs K substrategies in sequence and merges their output
// signals via either a Resolver or a custom SignalResolver.
type Combined struct {
	Strategies []Strategy
	Resolver   Resolver
	Custom     SignalResolver
}

// NewCombined creates a sequential Combined strategy using a built-in resolver.
func NewCombined(resolver Resolver, strategies ...Strategy) *Combined {
	return &Combined{Strategies: strategies, Resolver: resolver}
}

func (c *Combined) CreateSignals(event types.Event) []Signal {
	var all []Signal
	for _, s := range c.Strategies {
		all = append(all, s.CreateSignals(event)...)
	}
	return resolve(all, c.Resolver, c.Custom)
}

func (c *Combined) Reset() {
	for _, s := range c.Strategies {
		s.Reset()
	}
}

// Parallel runs K substrategies concurrently (one goroutine each) and
// merges their output the same way Combined does. Use when substrategies
// do non-trivial per-event work (e.g. remote feature lookups) that
// benefits from overlap; CreateSignals still returns only once every
// substrategy has reported for this event, preserving spec.md §5's
// "synchronous within a step" guarantee at the Strategy boundary.
type Parallel struct {
	Strategies []Strategy
	Resolver   Resolver
	Custom     SignalResolver
}

// NewParallel creates a concurrent Combined-equivalent strategy.
func NewParallel(resolver Resolver, strategies ...Strategy) *Parallel {
	return &Parallel{Strategies: strategies, Resolver: resolver}
}

func (p *Parallel) CreateSignals(event types.Event) []Signal {
	return p.CreateSignalsContext(context.Background(), event)
}

func (p *Parallel) CreateSignalsContext(ctx context.Context, event types.Event) []Signal {
	results := make([][]Signal, len(p.Strategies))
	var wg sync.WaitGroup
	for i, s := range p.Strategies {
		wg.Add(1)
		go func(i int, s Strategy) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			default:
			}
			results[i] = s.CreateSignals(event)
		}(i, s)
	}
	wg.Wait()

	var all []Signal
	for _, r := range results {
		all = append(all, r...)
	}
	return resolve(all, p.Resolver, p.Custom)
}

func (p *Parallel) Reset() {
	for _, s := range p.Strategies {
		s.Reset()
	}
}

func resolve(signals []Signal, resolver Resolver, custom SignalResolver) []Signal {
	if custom != nil {
		return custom(signals)
	}

	switch resolver {
	case ResolverFirst:
		return keepOnePerAsset(signals, true)
	case ResolverLast:
		return keepOnePerAsset(signals, false)
	case ResolverNoConflicts:
		return dropConflicting(signals)
	case ResolverNoDuplicates:
		return keepOnePerAsset(signals, true)
	case ResolverNone, "":
		fallthrough
	default:
		return signals
	}
}

func keepOnePerAsset(signals []Signal, first bool) []Signal {
	chosen := make(map[types.Asset]Signal)
	order := make([]types.Asset, 0, len(signals))
	for _, s := range signals {
		if _, ok := chosen[s.Asset]; !ok {
			order = append(order, s.Asset)
		}
		if _, ok := chosen[s.Asset]; !ok || !first {
			chosen[s.Asset] = s
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Symbol < order[j].Symbol })
	out := make([]Signal, 0, len(order))
	for _, a := range order {
		out = append(out, chosen[a])
	}
	return out
}

func dropConflicting(signals []Signal) []Signal {
	conflicted := make(map[types.Asset]bool)
	for i := range signals {
		for j := range signals {
			if i != j && signals[i].Conflicts(signals[j]) {
				conflicted[signals[i].Asset] = true
			}
		}
	}
	out := make([]Signal, 0, len(signals))
	for _, s := range signals {
		if !conflicted[s.Asset] {
			out = append(out, s)
		}
	}
	return out
}

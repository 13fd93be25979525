// Package fx provides the process-wide FX registry: a pluggable answer
// to "what is 1 unit of currency A worth in currency B at time T?".
// Registry is read-mostly (every event-loop tick calls Convert, rates
// are registered once at startup) and thread-safe via RWMutex, following
// the teacher's Inventory/FlowTracker pattern of a mutex-guarded struct
// with a narrow, defensively-copied public surface.
package fx

import (
	"fmt"
	"sync"
	"time"

	"roboquant/pkg/types"
)

// RateFunc answers the exchange rate (units of `to` per unit of `from`)
// at a given instant. A constant rate is a RateFunc that ignores its
// argument.
type RateFunc func(at time.Time) float64

// Registry implements types.FXConverter. The zero Registry is usable —
// every pair converts 1:1 against the same currency, and any other pair
// converts only once a rate has been registered.
type Registry struct {
	mu    sync.RWMutex
	rates map[pairKey]RateFunc
}

type pairKey struct {
	from, to types.Currency
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{rates: make(map[pairKey]RateFunc)}
}

// Register installs a constant rate for converting 1 unit of `from` into
// `to`. It also registers the inverse pair so Convert works both ways.
func (r *Registry) Register(from, to types.Currency, rate float64) {
	r.RegisterFunc(from, to, func(time.Time) float64 { return rate })
	if rate != 0 {
		r.RegisterFunc(to, from, func(time.Time) float64 { return 1 / rate })
	}
}

// RegisterFunc installs a time-varying rate function for converting 1
// unit of `from` into `to`. Unlike Register, no inverse is derived
// automatically since a time-varying rate's inverse is not simply 1/rate
// at every instant in the general case; register both directions
// explicitly if needed.
func (r *Registry) RegisterFunc(from, to types.Currency, fn RateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rates == nil {
		r.rates = make(map[pairKey]RateFunc)
	}
	r.rates[pairKey{from, to}] = fn
}

// Convert implements types.FXConverter.
func (r *Registry) Convert(amount types.Amount, to types.Currency, at time.Time) (types.Amount, error) {
	if amount.Currency == to {
		return amount, nil
	}

	r.mu.RLock()
	fn, ok := r.rates[pairKey{amount.Currency, to}]
	r.mu.RUnlock()
	if !ok {
		return types.Amount{}, fmt.Errorf("fx: no rate registered for %s -> %s", amount.Currency, to)
	}

	return types.NewAmount(to, amount.Float64()*fn(at)), nil
}

// Clear removes every registered rate. Intended for test isolation —
// a concurrently running backtest holding a *Registry reference would
// observe the wipe, so callers must not call Clear on a Registry shared
// across in-flight runs.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = make(map[pairKey]RateFunc)
}

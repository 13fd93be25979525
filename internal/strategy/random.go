package strategy

import (
	"math/rand"
	"sort"

	"roboquant/pkg/types"
)

// Random emits a +-1 rating with probability P for every priced asset,
// driven by a seedable RNG so backtests using it remain reproducible.
type Random struct {
	P    float64
	rng  *rand.Rand
	seed int64
}

// NewRandom creates a Random strategy seeded deterministically.
func NewRandom(p float64, seed int64) *Random {
	return &Random{P: p, seed: seed, rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) CreateSignals(event types.Event) []Signal {
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(r.seed))
	}
	prices := event.Prices()
	assets := make([]types.Asset, 0, len(prices))
	for asset := range prices {
		assets = append(assets, asset)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })

	var signals []Signal
	for _, asset := range assets {
		if r.rng.Float64() >= r.P {
			continue
		}
		rating := 1.0
		if r.rng.Intn(2) == 0 {
			rating = -1.0
		}
		signals = append(signals, NewSignal(asset, rating, "random"))
	}
	return signals
}

func (r *Random) Reset() { r.rng = rand.New(rand.NewSource(r.seed)) }

package strategy

import "roboquant/pkg/types"

type emaState struct {
	fast, slow   float64
	warm         int
	wasFastAbove bool
	seeded       bool
}

// EMACrossover maintains a fast and slow exponential moving average per
// asset. After `Slow` observations (warm-up), it emits BUY on the first
// cross of fast above slow and SELL on the first cross below.
type EMACrossover struct {
	Fast int
	Slow int

	state map[types.Asset]*emaState
}

// NewEMACrossover creates an EMA crossover strategy with the given fast
// and slow periods (Slow must exceed Fast for a meaningful signal).
func NewEMACrossover(fast, slow int) *EMACrossover {
	return &EMACrossover{Fast: fast, Slow: slow, state: make(map[types.Asset]*emaState)}
}

func smoothing(period int) float64 { return 1 - 2/(float64(period)+1) }

func (e *EMACrossover) CreateSignals(event types.Event) []Signal {
	if e.state == nil {
		e.state = make(map[types.Asset]*emaState)
	}
	var signals []Signal
	fastAlpha := smoothing(e.Fast)
	slowAlpha := smoothing(e.Slow)

	for asset, item := range event.Prices() {
		price := item.GetPrice(types.PriceDefault)
		st, ok := e.state[asset]
		if !ok {
			st = &emaState{}
			e.state[asset] = st
		}

		if !st.seeded {
			st.fast, st.slow = price, price
			st.seeded = true
			st.wasFastAbove = st.fast > st.slow
			continue
		}

		st.fast = fastAlpha*st.fast + (1-fastAlpha)*price
		st.slow = slowAlpha*st.slow + (1-slowAlpha)*price
		st.warm++

		if st.warm < e.Slow {
			continue
		}

		isFastAbove := st.fast > st.slow
		if isFastAbove != st.wasFastAbove {
			rating := -1.0
			if isFastAbove {
				rating = 1.0
			}
			signals = append(signals, NewSignal(asset, rating, "ema_crossover"))
		}
		st.wasFastAbove = isFastAbove
	}
	return signals
}

func (e *EMACrossover) Reset() { e.state = make(map[types.Asset]*emaState) }

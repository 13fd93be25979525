package strategy

import (
	"fmt"

	"roboquant/pkg/types"
)

type rsiState struct {
	avgGain, avgLoss float64
	prevPrice        float64
	seeded           bool
	warm             int
}

// RSI implements Wilder's relative strength index over N periods,
// emitting SELL above High and BUY below Low. Constructor validates
// 0 < Low < High < 100 per spec.md §4.3.
type RSI struct {
	Period int
	Low    float64
	High   float64

	state map[types.Asset]*rsiState
}

// NewRSI creates a Wilder's-RSI strategy. Panics if thresholds are
// invalid — this is a construction-time configuration error, not a
// runtime one (spec.md §7).
func NewRSI(period int, low, high float64) *RSI {
	if !(0 < low && low < high && high < 100) {
		panic(fmt.Sprintf("strategy: invalid RSI thresholds low=%v high=%v, require 0 < low < high < 100", low, high))
	}
	return &RSI{Period: period, Low: low, High: high, state: make(map[types.Asset]*rsiState)}
}

func (r *RSI) CreateSignals(event types.Event) []Signal {
	if r.state == nil {
		r.state = make(map[types.Asset]*rsiState)
	}
	var signals []Signal

	for asset, item := range event.Prices() {
		price := item.GetPrice(types.PriceDefault)
		st, ok := r.state[asset]
		if !ok {
			st = &rsiState{}
			r.state[asset] = st
		}

		if !st.seeded {
			st.prevPrice = price
			st.seeded = true
			continue
		}

		change := price - st.prevPrice
		st.prevPrice = price
		var gain, loss float64
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		if st.warm < r.Period {
			st.avgGain += gain
			st.avgLoss += loss
			st.warm++
			if st.warm == r.Period {
				st.avgGain /= float64(r.Period)
				st.avgLoss /= float64(r.Period)
			}
			continue
		}

		st.avgGain = (st.avgGain*float64(r.Period-1) + gain) / float64(r.Period)
		st.avgLoss = (st.avgLoss*float64(r.Period-1) + loss) / float64(r.Period)

		var rsi float64
		if st.avgLoss == 0 {
			rsi = 100
		} else {
			rs := st.avgGain / st.avgLoss
			rsi = 100 - 100/(1+rs)
		}

		switch {
		case rsi > r.High:
			signals = append(signals, NewSignal(asset, -1, "rsi"))
		case rsi < r.Low:
			signals = append(signals, NewSignal(asset, 1, "rsi"))
		}
	}
	return signals
}

func (r *RSI) Reset() { r.state = make(map[types.Asset]*rsiState) }

package converter

import (
	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

type atrState struct {
	value     float64
	prevClose float64
	warm      int
	seeded    bool
}

// ATR augments Flex-style sizing with an Average True Range stop/target:
// stop = price - AtrStopMult*ATR, limit (take-profit) = price +
// AtrProfitMult*ATR. When AtrSizing > 0, position size is additionally
// capped so the stop-loss distance times size never exceeds
// AtrSizing * equity.
type ATR struct {
	Period        int
	AtrStopMult   float64
	AtrProfitMult float64
	AtrSizing     float64 // 0 disables the cap

	Flex *Flex

	state map[types.Asset]*atrState
}

// NewATR creates an ATR converter wrapping a Flex converter for base
// sizing and order-rejection rules.
func NewATR(period int, stopMult, profitMult float64, base *Flex) *ATR {
	return &ATR{
		Period:        period,
		AtrStopMult:   stopMult,
		AtrProfitMult: profitMult,
		Flex:          base,
		state:         make(map[types.Asset]*atrState),
	}
}

func (a *ATR) updateATR(event types.Event) {
	if a.state == nil {
		a.state = make(map[types.Asset]*atrState)
	}
	for asset, item := range event.Prices() {
		bar, ok := item.(types.PriceBar)
		if !ok {
			continue
		}
		st, ok := a.state[asset]
		if !ok {
			st = &atrState{}
			a.state[asset] = st
		}

		if !st.seeded {
			st.prevClose = bar.Close
			st.seeded = true
			continue
		}

		tr := trueRange(bar.High, bar.Low, st.prevClose)
		st.prevClose = bar.Close

		if st.warm < a.Period {
			st.value += tr
			st.warm++
			if st.warm == a.Period {
				st.value /= float64(a.Period)
			}
			continue
		}
		st.value = (st.value*float64(a.Period-1) + tr) / float64(a.Period)
	}
}

func trueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if d := absf(high - prevClose); d > tr {
		tr = d
	}
	if d := absf(low - prevClose); d > tr {
		tr = d
	}
	return tr
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (a *ATR) Convert(signals []strategy.Signal, acc account.Account, event types.Event) []Instruction {
	a.updateATR(event)

	var out []Instruction
	for _, sig := range signals {
		st, ok := a.state[sig.Asset]
		if !ok || st.warm < a.Period {
			continue // not warmed up yet for this asset
		}

		price, found := event.GetPrice(sig.Asset, a.Flex.PriceType)
		if !found {
			continue
		}

		stop := price - a.AtrStopMult*st.value
		limit := price + a.AtrProfitMult*st.value
		augmented := sig
		augmented.StopLoss = &stop
		augmented.TakeProfit = &limit

		orders := a.Flex.Convert([]strategy.Signal{augmented}, acc, event)
		for _, ord := range orders {
			out = append(out, a.applySizingCap(ord, acc, st.value))
		}
	}
	return out
}

// applySizingCap shrinks a Bracket entry's size so that the stop-loss
// distance times size never exceeds AtrSizing * equity, when configured.
func (a *ATR) applySizingCap(ord Instruction, acc account.Account, atrValue float64) Instruction {
	if a.AtrSizing <= 0 {
		return ord
	}
	bracket, ok := ord.(order.BracketOrder)
	if !ok {
		return ord
	}
	entry, ok := bracket.Entry.(order.MarketOrder)
	if !ok {
		return ord
	}

	equityAmt, err := acc.EquityAmount(a.Flex.FX)
	if err != nil {
		return ord
	}
	maxLoss := a.AtrSizing * equityAmt.Float64()
	stopDistance := a.AtrStopMult * atrValue
	if stopDistance <= 0 {
		return ord
	}
	maxSize := types.NewSize(maxLoss / stopDistance)

	if entry.SizeValue.Abs().GreaterThan(maxSize) {
		capped := maxSize
		if entry.SizeValue.Sign() < 0 {
			capped = capped.Neg()
		}
		entry.SizeValue = capped
		bracket.Entry = entry
	}
	return bracket
}

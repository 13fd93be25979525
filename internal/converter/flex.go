package converter

import (
	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// OrderStyle selects which concrete order type Flex emits for an entry.
type OrderStyle string

const (
	StyleMarket  OrderStyle = "MARKET"
	StyleLimit   OrderStyle = "LIMIT"
	StyleBracket OrderStyle = "BRACKET" // only used when the signal carries TakeProfit/StopLoss
)

// Flex is the reference signal-to-order converter (spec.md §4.4).
type Flex struct {
	OrderPercentage float64 // fraction of equity per order, default 0.01
	Shorting        bool
	PriceType       types.PriceKind
	Fractions       int32 // decimal places for fractional sizing; 0 = integer only
	OneOrderOnly    bool
	SafetyMargin    float64 // fraction of buying power held back
	MinPrice        float64
	EnableMetrics   bool

	Style       OrderStyle
	LimitOffset float64 // x in limit = price * (1 +/- x); only used when Style == StyleLimit

	FX types.FXConverter
}

// NewFlex creates a Flex converter with spec-documented defaults.
func NewFlex(fx types.FXConverter) *Flex {
	return &Flex{
		OrderPercentage: 0.01,
		PriceType:       types.PriceDefault,
		Style:           StyleMarket,
		FX:              fx,
	}
}

func (f *Flex) Convert(signals []strategy.Signal, acc account.Account, event types.Event) []Instruction {
	var out []Instruction

	for _, sig := range signals {
		ord, ok := f.convertOne(sig, acc, event)
		if ok {
			out = append(out, ord)
		}
	}
	return out
}

func (f *Flex) convertOne(sig strategy.Signal, acc account.Account, event types.Event) (Instruction, bool) {
	price, found := event.GetPrice(sig.Asset, f.PriceType)
	if !found || price < f.MinPrice {
		return nil, false
	}

	if f.OneOrderOnly && acc.HasOpenOrder(sig.Asset) {
		return nil, false
	}

	pos := acc.Position(sig.Asset)

	if sig.Type == strategy.Exit || (!pos.Closed() && sign(sig.Rating) != 0 && sign(sig.Rating) != pos.SizeValue.Sign()) {
		// Exit/reducing signal: close the existing position.
		if pos.Closed() {
			return nil, false
		}
		return order.NewMarketOrder(sig.Asset, pos.SizeValue.Neg()), true
	}

	if !pos.Closed() {
		// Already holding in the same direction; Flex does not pyramid.
		return nil, false
	}

	if sign(sig.Rating) < 0 && !f.Shorting {
		return nil, false
	}

	equityAmt, err := acc.EquityAmount(f.FX)
	if err != nil {
		return nil, false
	}
	targetNotional := equityAmt.Float64() * f.OrderPercentage

	assetPriceAmt := types.NewAmount(sig.Asset.Currency, targetNotional)
	if sig.Asset.Currency != acc.BaseCurrency {
		converted, err := f.FX.Convert(types.NewAmount(acc.BaseCurrency, targetNotional), sig.Asset.Currency, event.Time)
		if err != nil {
			return nil, false
		}
		assetPriceAmt = converted
	}

	rawSize := assetPriceAmt.Float64() / price / sig.Asset.Multiplier
	size := types.NewSize(rawSize).Rounded(f.Fractions)
	if sign(sig.Rating) < 0 {
		size = size.Neg()
	}
	if size.IsZero() {
		return nil, false
	}

	projectedCost := size.Abs().Float64() * price * sig.Asset.Multiplier
	available := acc.BuyingPower.Float64() * (1 - f.SafetyMargin)
	if projectedCost > available {
		return nil, false
	}

	return f.buildOrder(sig, size, price), true
}

func (f *Flex) buildOrder(sig strategy.Signal, size types.Size, price float64) Instruction {
	if sig.TakeProfit != nil && sig.StopLoss != nil {
		entry := order.NewMarketOrder(sig.Asset, size)
		tp := order.NewLimitOrder(sig.Asset, size.Neg(), *sig.TakeProfit)
		sl := order.NewStopOrder(sig.Asset, size.Neg(), *sig.StopLoss)
		return order.NewBracketOrder(entry, tp, sl)
	}

	switch f.Style {
	case StyleLimit:
		offset := 1 + f.LimitOffset*float64(size.Sign())
		return order.NewLimitOrder(sig.Asset, size, price*offset)
	default:
		return order.NewMarketOrder(sig.Asset, size)
	}
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

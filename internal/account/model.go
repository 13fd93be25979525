package account

import (
	"roboquant/pkg/types"
)

// Model computes buying power from an Internal's current cash and
// positions (spec.md §4.8). updateBuyingPower is called by the broker
// once per step, after fills and mark-to-market have been applied.
type Model interface {
	updateBuyingPower(in *Internal, fx types.FXConverter) (types.Amount, error)
}

// CashAccount applies no leverage: buying power is cash, converted to
// the base currency. It does not reject short positions itself; a short
// fill on a cash account is accounted like any other.
type CashAccount struct{}

func (CashAccount) updateBuyingPower(in *Internal, fx types.FXConverter) (types.Amount, error) {
	return in.cash.Convert(in.BaseCurrency, in.LastUpdate, fx)
}

// MarginAccount allows shorting and leverage L: buying power is
// equity*L minus total gross exposure across positions.
type MarginAccount struct {
	Leverage float64
}

// NewMarginAccount creates a MarginAccount; leverage must be > 0.
func NewMarginAccount(leverage float64) MarginAccount {
	return MarginAccount{Leverage: leverage}
}

func (m MarginAccount) updateBuyingPower(in *Internal, fx types.FXConverter) (types.Amount, error) {
	equityWallet := in.cash.Clone()
	for _, pos := range in.positions {
		if pos.Closed() {
			continue
		}
		equityWallet.Deposit(pos.MarketValue())
	}
	equity, err := equityWallet.Convert(in.BaseCurrency, in.LastUpdate, fx)
	if err != nil {
		return types.Amount{}, err
	}

	var exposure float64
	for _, pos := range in.positions {
		if pos.Closed() {
			continue
		}
		mv := pos.MarketValue()
		converted, err := fx.Convert(mv, in.BaseCurrency, in.LastUpdate)
		if err != nil {
			return types.Amount{}, err
		}
		exposure += absf(converted.Float64())
	}

	buyingPower := equity.Float64()*m.Leverage - exposure
	return types.NewAmount(in.BaseCurrency, buyingPower), nil
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// UpdateBuyingPower recomputes and stores in.buyingPower using model.
func UpdateBuyingPower(in *Internal, model Model, fx types.FXConverter) error {
	bp, err := model.updateBuyingPower(in, fx)
	if err != nil {
		return err
	}
	in.buyingPower = bp
	return nil
}

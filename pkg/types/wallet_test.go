package types

import (
	"testing"
	"time"
)

// fixedRateFX converts at a flat rate, ignoring time, to test Wallet's
// arithmetic independent of any real FX registry implementation.
type fixedRateFX struct {
	rates map[Currency]float64 // units of `to` per unit of key currency
}

func (f fixedRateFX) Convert(amount Amount, to Currency, at time.Time) (Amount, error) {
	if amount.Currency == to {
		return amount, nil
	}
	rate := f.rates[amount.Currency]
	return NewAmount(to, amount.Float64()*rate), nil
}

func TestWalletConvertLinearity(t *testing.T) {
	t.Parallel()
	fx := fixedRateFX{rates: map[Currency]float64{EUR: 1.1, GBP: 1.3}}
	now := time.Now()

	w1 := NewWallet(NewAmount(USD, 100), NewAmount(EUR, 50))
	w2 := NewWallet(NewAmount(GBP, 20), NewAmount(USD, 10))

	sumThenConvert, err := w1.Add(w2).Convert(USD, now, fx)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	c1, err := w1.Convert(USD, now, fx)
	if err != nil {
		t.Fatalf("convert w1: %v", err)
	}
	c2, err := w2.Convert(USD, now, fx)
	if err != nil {
		t.Fatalf("convert w2: %v", err)
	}
	convertThenSum, err := c1.Add(c2)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if !sumThenConvert.Value.Equal(convertThenSum.Value) {
		t.Errorf("FX linearity violated: (w1+w2).Convert = %v, w1.Convert+w2.Convert = %v",
			sumThenConvert, convertThenSum)
	}
}

func TestWalletDepositWithdraw(t *testing.T) {
	t.Parallel()
	var w Wallet
	w.Deposit(NewAmount(USD, 100))
	w.Withdraw(NewAmount(USD, 40))

	if got := w.Get(USD); got.Float64() != 60 {
		t.Errorf("balance = %v, want 60", got)
	}
}

package types

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FXConverter answers "what is this amount worth in another currency at a
// given instant?" It is implemented by internal/fx.Registry; Wallet only
// depends on this interface so that pkg/types stays free of any concrete
// FX implementation (and of the import cycle that would create).
type FXConverter interface {
	Convert(amount Amount, to Currency, at time.Time) (Amount, error)
}

// Wallet is a mapping from Currency to balance. The zero Wallet is an
// empty, ready-to-use wallet.
type Wallet struct {
	balances map[Currency]decimal.Decimal
}

// NewWallet creates a Wallet optionally seeded with amounts.
func NewWallet(amounts ...Amount) Wallet {
	w := Wallet{balances: make(map[Currency]decimal.Decimal)}
	for _, a := range amounts {
		w.Deposit(a)
	}
	return w
}

func (w *Wallet) ensure() {
	if w.balances == nil {
		w.balances = make(map[Currency]decimal.Decimal)
	}
}

// Deposit adds amount to the wallet's balance in that currency.
func (w *Wallet) Deposit(amount Amount) {
	w.ensure()
	w.balances[amount.Currency] = w.balances[amount.Currency].Add(amount.Value)
}

// Withdraw subtracts amount from the wallet's balance in that currency.
// Unlike a real account, going negative is permitted here — the account
// model is responsible for rejecting orders that would do so where that
// matters (spec.md §4.8).
func (w *Wallet) Withdraw(amount Amount) {
	w.ensure()
	w.balances[amount.Currency] = w.balances[amount.Currency].Sub(amount.Value)
}

// Get returns the current balance in the given currency (zero if absent).
func (w Wallet) Get(currency Currency) Amount {
	return Amount{Currency: currency, Value: w.balances[currency]}
}

// Currencies returns the currencies currently held, sorted for determinism.
// A wallet may retain zero balances; spec.md §3 only requires that this
// not affect equality semantics used by the public API, so callers that
// care about "non-zero only" should filter the result themselves.
func (w Wallet) Currencies() []Currency {
	out := make([]Currency, 0, len(w.balances))
	for c := range w.balances {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy of the wallet.
func (w Wallet) Clone() Wallet {
	clone := Wallet{balances: make(map[Currency]decimal.Decimal, len(w.balances))}
	for c, v := range w.balances {
		clone.balances[c] = v
	}
	return clone
}

// Add returns a new wallet holding the sum of w and other, currency by
// currency. Never mutates either argument.
func (w Wallet) Add(other Wallet) Wallet {
	result := w.Clone()
	result.ensure()
	for c, v := range other.balances {
		result.balances[c] = result.balances[c].Add(v)
	}
	return result
}

// Neg returns a new wallet with every balance negated.
func (w Wallet) Neg() Wallet {
	result := Wallet{balances: make(map[Currency]decimal.Decimal, len(w.balances))}
	for c, v := range w.balances {
		result.balances[c] = v.Neg()
	}
	return result
}

// Convert sums every currency balance in the wallet, converted to a
// single target currency via fx at the given instant. spec.md §8 requires
// this to be linear: (w1+w2).Convert(c) == w1.Convert(c) + w2.Convert(c),
// which holds because each currency is converted independently and summed.
func (w Wallet) Convert(to Currency, at time.Time, fx FXConverter) (Amount, error) {
	total := Amount{Currency: to}
	for _, c := range w.Currencies() {
		amt := w.Get(c)
		if amt.Value.IsZero() {
			continue
		}
		converted, err := fx.Convert(amt, to, at)
		if err != nil {
			return Amount{}, err
		}
		total, err = total.Add(converted)
		if err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

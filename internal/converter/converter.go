// Package converter implements the SignalConverter contract (spec.md
// §4.4): convert(signals, account, event) -> [Instruction]. An
// Instruction is simply a concrete order.Order — the converter's whole
// job is turning a Strategy's opinion into something a Broker can place.
package converter

import (
	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

// Instruction is the concrete order a converter hands to the broker.
type Instruction = order.Order

// Converter turns signals into orders, applying sizing and risk caps.
type Converter interface {
	Convert(signals []strategy.Signal, acc account.Account, event types.Event) []Instruction
}

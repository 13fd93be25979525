package types

import "time"

// OrderID identifies an order, assigned by the broker on acceptance.
// Defined here (rather than in pkg/order) so that both pkg/order and
// Trade can reference it without creating an import cycle between the
// two packages.
type OrderID string

// Trade is an immutable fill record.
type Trade struct {
	Time    time.Time
	Asset   Asset
	Size    Size // signed: positive = bought, negative = sold
	Price   float64
	Fee     Amount
	PnL     float64
	OrderID OrderID
}

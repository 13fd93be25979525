package executor

import (
	"time"

	"roboquant/pkg/order"
)

// tifOf extracts the TimeInForce from any single-leg order; composite
// and modifier orders (Bracket/Cancel/Update) have no TIF of their own
// and default to GTC (they are never handed to Book.Step directly).
func tifOf(ord order.Order) order.TimeInForce {
	switch o := ord.(type) {
	case order.MarketOrder:
		return o.Tif
	case order.LimitOrder:
		return o.Tif
	case order.StopOrder:
		return o.Tif
	case order.StopLimitOrder:
		return o.Tif
	case order.TrailOrder:
		return o.Tif
	default:
		return order.TimeInForce{Kind: order.GTC}
	}
}

// expired reports whether an order's TIF has lapsed as of `at`, given
// when it was accepted.
func expired(tif order.TimeInForce, acceptedAt, at time.Time) bool {
	switch tif.Kind {
	case order.GTD:
		return !tif.Expires.IsZero() && !at.Before(tif.Expires)
	case order.DAY:
		if acceptedAt.IsZero() {
			return false
		}
		return at.UTC().YearDay() != acceptedAt.UTC().YearDay() || at.UTC().Year() != acceptedAt.UTC().Year()
	default:
		return false
	}
}

package types

import "time"

// Event is market data observed at a single instant: the time, and every
// PriceItem reported for it. Multiple runs read the same Event
// concurrently, so Event and everything reachable from it must be treated
// as read-only once published onto an EventChannel.
type Event struct {
	Time  time.Time
	Items []PriceItem
}

// NewEvent builds an Event from a time and items.
func NewEvent(t time.Time, items ...PriceItem) Event {
	return Event{Time: t, Items: items}
}

// Prices returns the most recent PriceItem per asset within this event.
// If the same asset appears more than once, the later item in Items wins,
// matching spec.md §3's "most recent PriceItem in the event".
func (e Event) Prices() map[Asset]PriceItem {
	out := make(map[Asset]PriceItem, len(e.Items))
	for _, item := range e.Items {
		out[item.Asset()] = item
	}
	return out
}

// GetPrice is a convenience lookup combining Prices and GetPrice(kind); it
// reports false when the event carries nothing for the asset.
func (e Event) GetPrice(asset Asset, kind PriceKind) (float64, bool) {
	for i := len(e.Items) - 1; i >= 0; i-- {
		if e.Items[i].Asset() == asset {
			return e.Items[i].GetPrice(kind), true
		}
	}
	return 0, false
}

// Empty reports whether the event carries no items (used for heartbeats on
// live feeds, which carry a Time but no PriceItems).
func (e Event) Empty() bool { return len(e.Items) == 0 }

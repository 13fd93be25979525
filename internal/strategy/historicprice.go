package strategy

import "roboquant/pkg/types"

// HistoricPrice maintains a per-asset sliding window of the last N
// observed prices (or, if Returns is set, period-over-period returns),
// invoking OnWindowUpdate once a window reaches capacity. The eviction
// shape (append, then drop from the front once over capacity) mirrors
// the teacher's FlowTracker.evictStaleLocked, adapted from a time-cutoff
// eviction to a fixed-length one.
type HistoricPrice struct {
	Size           int
	Returns        bool
	PriceKind      types.PriceKind
	OnWindowUpdate func(asset types.Asset, window []float64)

	windows map[types.Asset][]float64
	last    map[types.Asset]float64
}

// NewHistoricPrice creates a helper tracking the last size observations
// per asset.
func NewHistoricPrice(size int, onWindowUpdate func(types.Asset, []float64)) *HistoricPrice {
	return &HistoricPrice{
		Size:           size,
		PriceKind:      types.PriceDefault,
		OnWindowUpdate: onWindowUpdate,
		windows:        make(map[types.Asset][]float64),
		last:           make(map[types.Asset]float64),
	}
}

// Update feeds one event through the sliding window, invoking
// OnWindowUpdate for every asset whose window is at full capacity after
// the update.
func (h *HistoricPrice) Update(event types.Event) {
	if h.windows == nil {
		h.windows = make(map[types.Asset][]float64)
		h.last = make(map[types.Asset]float64)
	}
	for asset, item := range event.Prices() {
		price := item.GetPrice(h.PriceKind)
		value := price
		if h.Returns {
			prev, ok := h.last[asset]
			h.last[asset] = price
			if !ok || prev == 0 {
				continue
			}
			value = (price - prev) / prev
		}

		window := append(h.windows[asset], value)
		if len(window) > h.Size {
			window = window[len(window)-h.Size:]
		}
		h.windows[asset] = window

		if len(window) == h.Size && h.OnWindowUpdate != nil {
			h.OnWindowUpdate(asset, window)
		}
	}
}

// Window returns the current sliding window for asset, oldest first.
func (h *HistoricPrice) Window(asset types.Asset) []float64 {
	return append([]float64(nil), h.windows[asset]...)
}

// Reset clears all per-asset state.
func (h *HistoricPrice) Reset() {
	h.windows = make(map[types.Asset][]float64)
	h.last = make(map[types.Asset]float64)
}

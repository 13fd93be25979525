package historicstore

import (
	"context"

	"roboquant/internal/feed"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

// HistoricFeed replays a Store's contents, optionally narrowed to a
// sub-Timeframe, as a feed.AssetFeed. It is read-only and safe for
// concurrent Play calls once the backing Store is no longer being
// written to (spec.md §4.2 re-entrancy requirement).
type HistoricFeed struct {
	store *Store
	tf    timeframe.Timeframe
}

// NewHistoricFeed creates a feed over the store's full timeframe.
func NewHistoricFeed(store *Store) *HistoricFeed {
	return &HistoricFeed{store: store, tf: store.Timeframe()}
}

// Slice narrows replay to the intersection of f's timeframe and tf,
// enabling deterministic replay of any timeframe subset.
func (f *HistoricFeed) Slice(tf timeframe.Timeframe) *HistoricFeed {
	narrowed, ok := f.tf.Intersect(tf)
	if !ok {
		narrowed = timeframe.Timeframe{Start: tf.Start, End: tf.Start}
	}
	return &HistoricFeed{store: f.store, tf: narrowed}
}

func (f *HistoricFeed) Timeframe() timeframe.Timeframe { return f.tf }

func (f *HistoricFeed) Assets() []types.Asset { return f.store.Assets() }

// Play pushes every stored event within f's timeframe, in time order.
func (f *HistoricFeed) Play(ctx context.Context, ch *feed.EventChannel) {
	defer ch.Close()
	for i, t := range f.store.times {
		if !f.tf.Contains(t) {
			continue
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
		ch.Send(types.NewEvent(t, f.store.items[i]...))
	}
}

var _ feed.AssetFeed = (*HistoricFeed)(nil)

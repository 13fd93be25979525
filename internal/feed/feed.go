package feed

import (
	"context"

	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

// Feed is an abstract, re-entrant producer of Events. Implementations
// must be safe for concurrent Play calls; any shared state must be
// read-only after construction (spec.md §4.2).
type Feed interface {
	// Timeframe reports the range of event times this feed can produce.
	Timeframe() timeframe.Timeframe
	// Play pushes events in non-decreasing time order into ch and closes
	// ch on completion or ctx cancellation.
	Play(ctx context.Context, ch *EventChannel)
}

// AssetFeed additionally exposes the fixed set of assets it can price.
type AssetFeed interface {
	Feed
	Assets() []types.Asset
}

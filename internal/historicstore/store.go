// Package historicstore implements the in-memory, time-sorted price
// store described by spec.md §4.12: the backing structure CSV/Avro/
// QuestDB adapters parse into, and which then Plays as a feed.Feed in
// its own right. Structurally grounded on the teacher's
// internal/store/store.go persistence lifecycle — kept in-memory here
// rather than file-backed, since the durable side of that pattern lives
// on in internal/journal.SQLiteLogger.
package historicstore

import (
	"context"
	"sort"
	"time"

	"roboquant/internal/feed"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

// Store maps event time to the price items observed at that instant,
// kept sorted by time. Safe for concurrent Play/reads once construction
// (Add/AddAll/Merge) has finished, matching the Feed re-entrancy contract
// in spec.md §4.2. Not safe for concurrent writes.
type Store struct {
	index map[int64]int // unix-nano -> position in times/items
	times timeframe.Timeline
	items [][]types.PriceItem
}

// New creates an empty Store.
func New() *Store {
	return &Store{index: make(map[int64]int)}
}

// Add appends event.Items at event.Time, merging into any existing slot
// for that exact instant. Items are stored as given: a PriceBar with
// Open == 0 is accepted unchanged, and no item is rejected or rewritten.
func (s *Store) Add(event types.Event) {
	s.AddAll(event.Time, event.Items)
}

// AddAll appends items at the given instant, merging into any existing
// slot for that exact instant. Preserves sortedness: a binary search
// finds the slot for a new instant, and every existing index entry is
// then revisited, so each new instant costs O(n).
func (s *Store) AddAll(at time.Time, newItems []types.PriceItem) {
	if s.index == nil {
		s.index = make(map[int64]int)
	}
	key := at.UnixNano()
	if pos, ok := s.index[key]; ok {
		s.items[pos] = append(s.items[pos], newItems...)
		return
	}

	pos := sort.Search(len(s.times), func(i int) bool { return !s.times[i].Before(at) })
	s.times = append(s.times, time.Time{})
	copy(s.times[pos+1:], s.times[pos:])
	s.times[pos] = at

	s.items = append(s.items, nil)
	copy(s.items[pos+1:], s.items[pos:])
	s.items[pos] = append([]types.PriceItem(nil), newItems...)

	for k, p := range s.index {
		if p >= pos {
			s.index[k] = p + 1
		}
	}
	s.index[key] = pos
}

// Merge folds other's contents into s.
func (s *Store) Merge(other *Store) {
	for i, t := range other.times {
		s.AddAll(t, other.items[i])
	}
}

// Len returns the number of distinct instants stored.
func (s *Store) Len() int { return len(s.times) }

// First returns the earliest event, or false if the store is empty.
func (s *Store) First() (types.Event, bool) {
	if len(s.times) == 0 {
		return types.Event{}, false
	}
	return types.NewEvent(s.times[0], s.items[0]...), true
}

// Last returns the most recent event, or false if the store is empty.
func (s *Store) Last() (types.Event, bool) {
	if len(s.times) == 0 {
		return types.Event{}, false
	}
	i := len(s.times) - 1
	return types.NewEvent(s.times[i], s.items[i]...), true
}

// Timeline returns the sorted, distinct instants held by the store.
func (s *Store) Timeline() timeframe.Timeline {
	out := make(timeframe.Timeline, len(s.times))
	copy(out, s.times)
	return out
}

// Timeframe returns the [first, last] inclusive range covered.
func (s *Store) Timeframe() timeframe.Timeframe { return s.Timeline().Timeframe() }

// Assets returns the distinct assets priced anywhere in the store,
// sorted by symbol for determinism.
func (s *Store) Assets() []types.Asset {
	seen := make(map[types.Asset]bool)
	for _, items := range s.items {
		for _, item := range items {
			seen[item.Asset()] = true
		}
	}
	out := make([]types.Asset, 0, len(seen))
	for a := range seen {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Play replays the store's contents in time order as a feed.Feed would,
// restricted to ch's own timeframe filter (events outside it are dropped
// by EventChannel.Send itself). Play closes ch on completion or ctx
// cancellation, satisfying the Feed contract in spec.md §4.2.
func (s *Store) Play(ctx context.Context, ch *feed.EventChannel) {
	defer ch.Close()
	for i, t := range s.times {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ch.Send(types.NewEvent(t, s.items[i]...))
	}
}

// Package feed defines the Feed abstraction (timeframe + asset-scoped
// producer of Events) and the bounded EventChannel that connects a Feed
// to a run loop. Channel dispatch follows the teacher's
// internal/exchange/ws.go shape: a buffered channel per consumer rather
// than an unbounded queue. A full channel blocks the sender; only events
// outside the channel's timeframe are dropped, and without logging.
package feed

import (
	"sync"

	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

// DefaultCapacity is the default bounded-channel size (spec.md §4.1).
const DefaultCapacity = 100

// EventChannel is a bounded FIFO queue of Events scoped to a Timeframe.
// send blocks when full; events outside the timeframe are silently
// dropped as uninteresting, not treated as errors. Safe for one producer
// and any number of consumers; close is idempotent.
type EventChannel struct {
	ch        chan types.Event
	timeframe timeframe.Timeframe

	closeOnce sync.Once
	closed    chan struct{}
}

// NewEventChannel creates a channel with the given capacity and
// timeframe filter. A zero-value Timeframe{} (infinite, from time.Time{})
// accepts every event.
func NewEventChannel(capacity int, tf timeframe.Timeframe) *EventChannel {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EventChannel{
		ch:        make(chan types.Event, capacity),
		timeframe: tf,
		closed:    make(chan struct{}),
	}
}

// Timeframe returns the channel's accept filter.
func (c *EventChannel) Timeframe() timeframe.Timeframe { return c.timeframe }

// Send enqueues event, blocking if the channel is full. Events whose
// timestamp falls outside the channel's timeframe are dropped silently.
// Send on a closed channel is a no-op. Send and Close must be called
// from the same producer goroutine: each EventChannel is fed by the one
// Play call it was handed to, even when a Feed serves several concurrent
// Play calls on separate channels.
func (c *EventChannel) Send(event types.Event) {
	if !c.timeframe.Contains(event.Time) {
		return
	}
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.ch <- event:
	case <-c.closed:
	}
}

// Receive blocks until an event arrives or the channel closes. ok is
// false once the channel is closed and drained — end of stream.
func (c *EventChannel) Receive() (types.Event, bool) {
	event, ok := <-c.ch
	return event, ok
}

// Close is idempotent. After Close, Receive drains whatever was already
// enqueued, then reports end-of-stream.
func (c *EventChannel) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		close(c.ch)
	})
}

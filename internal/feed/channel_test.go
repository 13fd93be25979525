package feed

import (
	"testing"
	"time"

	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

func TestEventChannelDropsOutsideTimeframe(t *testing.T) {
	t.Parallel()
	base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tf := timeframe.New(base, base.Add(time.Hour))
	ch := NewEventChannel(10, tf)

	ch.Send(types.NewEvent(base.Add(-time.Minute))) // before start: dropped
	ch.Send(types.NewEvent(base.Add(30 * time.Minute)))
	ch.Send(types.NewEvent(base.Add(2 * time.Hour))) // after end: dropped
	ch.Close()

	var received []time.Time
	for {
		event, ok := ch.Receive()
		if !ok {
			break
		}
		received = append(received, event.Time)
	}

	if len(received) != 1 {
		t.Fatalf("expected exactly 1 event within timeframe, got %d", len(received))
	}
	if !received[0].Equal(base.Add(30 * time.Minute)) {
		t.Errorf("unexpected event time: %v", received[0])
	}
}

func TestEventChannelCloseIsIdempotentAndDrains(t *testing.T) {
	t.Parallel()
	ch := NewEventChannel(10, timeframe.Infinite(time.Time{}))
	ch.Send(types.NewEvent(time.Now()))
	ch.Close()
	ch.Close() // must not panic

	_, ok := ch.Receive()
	if !ok {
		t.Fatal("expected the buffered event to drain before end-of-stream")
	}
	_, ok = ch.Receive()
	if ok {
		t.Fatal("expected end-of-stream after drain")
	}
}

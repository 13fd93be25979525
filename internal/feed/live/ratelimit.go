// Package live implements the live-trading feed boundary: a REST
// bootstrap snapshot followed by a streaming WebSocket of deltas, with
// reconnect/backoff. Adapted directly from the teacher's
// internal/exchange/client.go (resty REST client) and
// internal/exchange/ws.go (reconnect/backoff/ping loop); the wire format
// itself is pluggable via Decoder/Snapshotter since a backtesting core
// has no single real exchange to hard-wire against.
package live

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is a continuously-refilling rate limiter. Adapted verbatim
// in shape from the teacher's internal/exchange/ratelimit.go, now
// guarding the REST bootstrap fetch instead of order/cancel/book
// categories specific to one exchange.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewTokenBucket creates a rate limiter with the given burst capacity and
// refill rate (tokens per second).
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

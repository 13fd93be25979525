package converter

import (
	"time"

	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/types"
)

// CircuitBreaker wraps another Converter and drops its output entirely
// once MaxOrders have been emitted within a rolling Window of event
// time. The rolling-window eviction is the same cutoff-and-slice
// shape as the teacher's internal/risk.Manager kill-switch check.
type CircuitBreaker struct {
	Inner     Converter
	MaxOrders int
	Window    time.Duration

	emittedAt []time.Time
}

// NewCircuitBreaker wraps inner with a rolling order-rate limit.
func NewCircuitBreaker(inner Converter, maxOrders int, window time.Duration) *CircuitBreaker {
	return &CircuitBreaker{Inner: inner, MaxOrders: maxOrders, Window: window}
}

func (c *CircuitBreaker) Convert(signals []strategy.Signal, acc account.Account, event types.Event) []Instruction {
	c.evict(event.Time)

	if len(c.emittedAt) >= c.MaxOrders {
		return nil
	}

	out := c.Inner.Convert(signals, acc, event)
	for range out {
		c.emittedAt = append(c.emittedAt, event.Time)
	}
	return out
}

// evict drops timestamps older than Window relative to `now`, the same
// cutoff-and-truncate approach as FlowTracker.evictStaleLocked.
func (c *CircuitBreaker) evict(now time.Time) {
	cutoff := now.Add(-c.Window)
	i := 0
	for i < len(c.emittedAt) && !c.emittedAt[i].After(cutoff) {
		i++
	}
	c.emittedAt = c.emittedAt[i:]
}

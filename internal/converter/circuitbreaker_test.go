package converter

import (
	"testing"
	"time"

	"roboquant/internal/strategy"
	"roboquant/pkg/account"
	"roboquant/pkg/order"
	"roboquant/pkg/types"
)

type alwaysOneOrder struct{}

func (alwaysOneOrder) Convert(signals []strategy.Signal, acc account.Account, event types.Event) []Instruction {
	return []Instruction{order.NewMarketOrder(testAsset, types.NewSize(1))}
}

func TestCircuitBreakerCapsOrdersWithinWindow(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(alwaysOneOrder{}, 5, time.Hour)
	base := time.Now()
	acc := flatAccount(100_000)

	placed := 0
	for i := 0; i < 100; i++ {
		event := types.NewEvent(base.Add(time.Duration(i) * time.Second))
		out := cb.Convert(nil, acc, event)
		placed += len(out)
	}
	if placed != 5 {
		t.Fatalf("expected exactly 5 orders placed within the window, got %d", placed)
	}
}

func TestCircuitBreakerReopensAfterWindow(t *testing.T) {
	t.Parallel()
	cb := NewCircuitBreaker(alwaysOneOrder{}, 1, time.Minute)
	acc := flatAccount(100_000)
	base := time.Now()

	first := cb.Convert(nil, acc, types.NewEvent(base))
	if len(first) != 1 {
		t.Fatalf("expected first order to pass, got %d", len(first))
	}
	blocked := cb.Convert(nil, acc, types.NewEvent(base.Add(time.Second)))
	if len(blocked) != 0 {
		t.Fatalf("expected second order to be blocked, got %d", len(blocked))
	}

	afterWindow := cb.Convert(nil, acc, types.NewEvent(base.Add(2*time.Minute)))
	if len(afterWindow) != 1 {
		t.Fatalf("expected a new order after the window elapses, got %d", len(afterWindow))
	}
}

package order

import (
	"testing"
	"time"

	"roboquant/pkg/types"
)

func TestStatusOpenTerminal(t *testing.T) {
	t.Parallel()

	open := []Status{Initial, Accepted}
	terminal := []Status{Completed, Cancelled, Expired, Rejected}

	for _, s := range open {
		if !s.Open() || s.Terminal() {
			t.Errorf("%s should be open, not terminal", s)
		}
	}
	for _, s := range terminal {
		if s.Open() || !s.Terminal() {
			t.Errorf("%s should be terminal, not open", s)
		}
	}
}

func TestStateTransitionLifecycle(t *testing.T) {
	t.Parallel()
	now := time.Now()
	st := NewState("id-1", NewMarketOrder(testAsset, types.NewSize(10)), now)

	if st.Status != Initial {
		t.Fatalf("expected INITIAL, got %s", st.Status)
	}

	st.Transition(Accepted, now)
	if st.Status != Accepted || st.AcceptedAt.IsZero() {
		t.Fatalf("expected ACCEPTED with timestamp, got %+v", st)
	}

	st.Transition(Completed, now.Add(time.Minute))
	if st.Status != Completed || st.ClosedAt.IsZero() {
		t.Fatalf("expected COMPLETED with closedAt, got %+v", st)
	}
}

func TestStateTransitionIllegalPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on illegal transition")
		}
	}()
	st := NewState("id-1", NewMarketOrder(testAsset, types.NewSize(10)), time.Now())
	st.Transition(Completed, time.Now()) // INITIAL -> COMPLETED is illegal
}

func TestStateRemaining(t *testing.T) {
	t.Parallel()
	st := NewState("id-1", NewMarketOrder(testAsset, types.NewSize(10)), time.Now())
	st.Filled = types.NewSize(4)
	if !st.Remaining().Equal(types.NewSize(6)) {
		t.Errorf("remaining = %v, want 6", st.Remaining())
	}
}

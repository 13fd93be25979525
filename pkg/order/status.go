package order

import (
	"fmt"
	"time"

	"roboquant/pkg/types"
)

// Status is the order lifecycle state machine:
// INITIAL -> ACCEPTED -> (COMPLETED | CANCELLED | EXPIRED | REJECTED).
// REJECTED can also be reached directly from INITIAL. All four listed
// after ACCEPTED are terminal.
type Status string

const (
	Initial   Status = "INITIAL"
	Accepted  Status = "ACCEPTED"
	Completed Status = "COMPLETED"
	Cancelled Status = "CANCELLED"
	Expired   Status = "EXPIRED"
	Rejected  Status = "REJECTED"
)

// Open reports whether an order in this status is still live.
func (s Status) Open() bool { return s == Initial || s == Accepted }

// Terminal reports whether this status ends the order's lifecycle.
func (s Status) Terminal() bool { return !s.Open() }

// transitions enumerates every legal Status -> Status edge.
var transitions = map[Status]map[Status]bool{
	Initial:  {Accepted: true, Rejected: true},
	Accepted: {Completed: true, Cancelled: true, Expired: true, Rejected: true},
}

// CanTransition reports whether moving from s to next is a legal edge in
// the order state machine.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// State wraps an Order with its broker-assigned identity and lifecycle
// bookkeeping. It is the unit the broker's open/closed order maps hold.
type State struct {
	ID         types.OrderID
	Order      Order
	Status     Status
	CreatedAt  time.Time
	AcceptedAt time.Time
	ClosedAt   time.Time

	Filled       types.Size // cumulative filled quantity, signed like Size()
	AvgFillPrice float64
}

// NewState creates a freshly initialized order state, status INITIAL.
func NewState(id types.OrderID, ord Order, at time.Time) *State {
	return &State{ID: id, Order: ord, Status: Initial, CreatedAt: at}
}

// Transition moves the state to next, recording timestamps and
// validating the edge. It panics on an illegal transition — the broker
// is expected to never attempt one; REJECTED is reached via Reject for
// recoverable business-rule failures instead.
func (s *State) Transition(next Status, at time.Time) {
	if !s.Status.CanTransition(next) {
		panic(fmt.Sprintf("order: illegal transition %s -> %s for %s", s.Status, next, s.ID))
	}
	s.Status = next
	switch next {
	case Accepted:
		s.AcceptedAt = at
	default:
		if next.Terminal() {
			s.ClosedAt = at
		}
	}
}

// Remaining returns the quantity still unfilled, computed from the
// order's total requested size less what has filled so far. Only
// meaningful for single-leg orders; callers should not call this on a
// BracketOrder/CancelOrder/UpdateOrder state.
func (s *State) Remaining() types.Size {
	leg, ok := s.Order.(interface{ Size() types.Size })
	if !ok {
		return types.ZeroSize
	}
	return leg.Size().Sub(s.Filled)
}

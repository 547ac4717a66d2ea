package flight

import (
	"fmt"
	"time"
)

// Phase names the awaited step a timeout budget was spent in. Error messages
// carry it so operators can tell a hung network from a slow queue.
type Phase string

// Budget-consuming phases of one request.
const (
	PhaseQueue     Phase = "queue wait"
	PhaseAuth      Phase = "auth preparation"
	PhaseHandshake Phase = "connection handshake"
	PhaseRead      Phase = "frame read"
)

// TimeoutError reports that one phase exhausted the request's budget.
type TimeoutError struct {
	Phase  Phase
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded the configured timeout budget of %s", e.Phase, e.Budget)
}

// Timeout marks the error as a timeout for net-style error inspection.
func (e *TimeoutError) Timeout() bool { return true }

// Deadline is the single absolute deadline of one request, computed once at
// request start. The zero value means no deadline.
type Deadline struct {
	budget time.Duration
	at     time.Time
}

// NewDeadline starts a deadline budget ticking now. A non-positive budget
// yields an unlimited deadline.
func NewDeadline(budget time.Duration) Deadline {
	if budget <= 0 {
		return Deadline{}
	}
	return Deadline{budget: budget, at: time.Now().Add(budget)}
}

// Unlimited reports whether no budget was configured.
func (d Deadline) Unlimited() bool { return d.at.IsZero() }

// Budget returns the originally configured budget.
func (d Deadline) Budget() time.Duration { return d.budget }

// Remaining returns the time left. ok is false for an unlimited deadline.
// The remaining value only ever shrinks across successive calls.
func (d Deadline) Remaining() (remaining time.Duration, ok bool) {
	if d.Unlimited() {
		return 0, false
	}
	return time.Until(d.at), true
}

// Check fails fast with a phase-tagged TimeoutError when the budget is
// already spent.
func (d Deadline) Check(phase Phase) error {
	if remaining, ok := d.Remaining(); ok && remaining <= 0 {
		return &TimeoutError{Phase: phase, Budget: d.budget}
	}
	return nil
}

// Timer returns a channel firing at the deadline plus a stop func. For an
// unlimited deadline the channel is nil and never fires.
func (d Deadline) Timer() (<-chan time.Time, func()) {
	if d.Unlimited() {
		return nil, func() {}
	}
	remaining, _ := d.Remaining()
	t := time.NewTimer(remaining)
	return t.C, func() { t.Stop() }
}

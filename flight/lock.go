package flight

import (
	"context"
	"sync"
)

// Lock is a FIFO mutex for one-request-at-a-time connections. Each Acquire
// appends itself to a chain of turns; a turn opens when its predecessor's
// release fires. The zero value is ready to use.
type Lock struct {
	mu   sync.Mutex
	tail chan struct{}
}

// Acquire blocks until it is this caller's turn, the context is cancelled,
// or the deadline expires. On success the returned release func must be
// called exactly once when the request reaches its terminal outcome; it is
// idempotent. On failure the slot is still forwarded to the next waiter, so
// a timed-out request never wedges the queue. Cancellation takes precedence
// over timeout when both fire.
func (l *Lock) Acquire(ctx context.Context, deadline Deadline) (release func(), err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	turn := make(chan struct{})
	l.mu.Lock()
	prev := l.tail
	l.tail = turn
	l.mu.Unlock()

	var once sync.Once
	// Bound to a local so the forward goroutine keeps a valid reference even
	// after an error return zeroes the named result.
	rel := func() { once.Do(func() { close(turn) }) }

	// forward hands the slot on after the predecessor finishes, for waiters
	// that gave up while parked.
	forward := func() {
		go func() {
			<-prev
			rel()
		}()
	}

	if prev != nil {
		timer, stop := deadline.Timer()
		defer stop()
		select {
		case <-prev:
		case <-ctx.Done():
			forward()
			return nil, ctx.Err()
		case <-timer:
			if ctxErr := ctx.Err(); ctxErr != nil {
				forward()
				return nil, ctxErr
			}
			forward()
			return nil, &TimeoutError{Phase: PhaseQueue, Budget: deadline.Budget()}
		}
	}

	// A request can be cancelled while parked; re-check after acquiring.
	if err := ctx.Err(); err != nil {
		rel()
		return nil, err
	}
	return rel, nil
}

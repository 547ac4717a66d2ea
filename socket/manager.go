package socket

import (
	"context"
	"net/http"

	"github.com/hupe1980/agentwire/flight"
	"github.com/hupe1980/agentwire/logging"
)

// Transport is the connection surface consumers drive: one Send per request,
// frames pulled one at a time, explicit lifecycle. *Conn implements it; tests
// substitute scripted fakes through DialFunc.
type Transport interface {
	Send(data []byte) error
	NextFrame(ctx context.Context, deadline flight.Deadline) (data []byte, ok bool, err error)
	Close(ctx context.Context) error
	IsReusable() bool
	State() State
}

var _ Transport = (*Conn)(nil)

// DialFunc opens one connection. Swappable in tests.
type DialFunc func(ctx context.Context, socketURL string, headers http.Header, deadline flight.Deadline, logger logging.Logger) (Transport, error)

// DialTransport adapts Dial to the DialFunc signature.
func DialTransport(ctx context.Context, socketURL string, headers http.Header, deadline flight.Deadline, logger logging.Logger) (Transport, error) {
	conn, err := Dial(ctx, socketURL, headers, deadline, logger)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Manager caches at most one connection per client instance, keyed by the
// canonical (url, header set) identity. A connection whose identity no
// longer matches, or which is no longer reusable, is torn down before a
// replacement is opened. There is no package-level state: each client owns
// its manager.
type Manager struct {
	logger logging.Logger
	dial   DialFunc

	mu   chan struct{} // one-slot semaphore; held across teardown + dial
	conn Transport
	key  string
}

// ManagerOptions configure a Manager.
type ManagerOptions struct {
	Logger logging.Logger
	Dial   DialFunc
}

// NewManager creates an empty Manager.
func NewManager(optFns ...func(o *ManagerOptions)) *Manager {
	opts := ManagerOptions{
		Logger: logging.NoOpLogger{},
		Dial:   DialTransport,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	m := &Manager{
		logger: opts.Logger,
		dial:   opts.Dial,
		mu:     make(chan struct{}, 1),
	}
	return m
}

func (m *Manager) lock(ctx context.Context) error {
	select {
	case m.mu <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) unlock() { <-m.mu }

// Ensure returns a connection for the given identity, reusing the cached one
// only when its identity matches and it is still reusable. A stale cached
// connection is detached first and its teardown awaited before a new dial,
// all bounded by the remaining timeout budget.
func (m *Manager) Ensure(ctx context.Context, socketURL string, headers http.Header, deadline flight.Deadline) (conn Transport, reused bool, err error) {
	key := Identity(socketURL, headers)

	if err := m.lock(ctx); err != nil {
		return nil, false, err
	}
	defer m.unlock()

	if m.conn != nil && m.key == key && m.conn.IsReusable() {
		m.logger.Debug("reusing cached connection", "identity", key)
		return m.conn, true, nil
	}

	if stale := m.detachLocked(); stale != nil {
		m.logger.Debug("dropping stale connection", "state", stale.State().String())
		_ = stale.Close(ctx)
	}
	if err := deadline.Check(flight.PhaseHandshake); err != nil {
		return nil, false, err
	}

	fresh, err := m.dial(ctx, socketURL, headers, deadline, m.logger)
	if err != nil {
		return nil, false, err
	}
	m.conn = fresh
	m.key = key
	m.logger.Debug("opened connection", "identity", key)
	return fresh, false, nil
}

// Reconnect always drops any cached connection first, then ensures a fresh one.
func (m *Manager) Reconnect(ctx context.Context, socketURL string, headers http.Header, deadline flight.Deadline) (Transport, error) {
	m.Drop(ctx)
	conn, _, err := m.Ensure(ctx, socketURL, headers, deadline)
	return conn, err
}

// Detach removes the cached connection without closing it, so callers can
// release other resources before awaiting the teardown. Returns nil when
// nothing is cached.
func (m *Manager) Detach() Transport {
	if err := m.lock(context.Background()); err != nil {
		return nil
	}
	defer m.unlock()
	return m.detachLocked()
}

func (m *Manager) detachLocked() Transport {
	conn := m.conn
	m.conn = nil
	m.key = ""
	return conn
}

// Drop detaches and closes any cached connection. The cache entry is gone
// before the close is awaited, so a concurrently starting request either
// misses the cache and opens fresh or sees a fully open connection.
func (m *Manager) Drop(ctx context.Context) {
	if conn := m.Detach(); conn != nil {
		_ = conn.Close(ctx)
	}
}

// Close tears down any cached connection. Idempotent.
func (m *Manager) Close(ctx context.Context) error {
	m.Drop(ctx)
	return nil
}

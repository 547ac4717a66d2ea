package socket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hupe1980/agentwire/flight"
	"github.com/hupe1980/agentwire/logging"
)

// State is the lifecycle state of a Conn.
type State int

// Connection states.
const (
	StateConnecting State = iota
	StateOpen
	StateClosing
	StateClosed
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// ErrNotOpen reports a send attempted while the connection is not in the
// Open state. Callers use it to trigger reconnection, not to retry forever.
var ErrNotOpen = errors.New("connection is not open")

// IsNotOpen reports whether err belongs to the "socket not open" class: the
// states a caller may safely react to with a single reconnect. A reused
// connection whose peer reset the link fails its first write with EPIPE or
// ECONNRESET while the state is still Open; those count as stale too.
func IsNotOpen(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotOpen) || errors.Is(err, websocket.ErrCloseSent) {
		return true
	}
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	return strings.Contains(err.Error(), "use of closed network connection")
}

const frameBufferSize = 64

// Conn owns one physical websocket. A single read loop feeds an ordered
// frame buffer; consumers pull frames one at a time via NextFrame. Frames
// that arrive before anyone asks are buffered in receipt order.
type Conn struct {
	ws     *websocket.Conn
	logger logging.Logger

	writeMu sync.Mutex // gorilla allows one concurrent writer

	mu             sync.Mutex
	state          State
	readErr        error
	closeRequested bool

	frames   chan []byte
	readDone chan struct{}
	quit     chan struct{} // unblocks a read loop stuck on a full buffer

	closeOnce sync.Once
}

// Dial opens a new connection, bounded by the remaining timeout budget, and
// starts its read loop.
func Dial(ctx context.Context, socketURL string, headers http.Header, deadline flight.Deadline, logger logging.Logger) (*Conn, error) {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if err := deadline.Check(flight.PhaseHandshake); err != nil {
		return nil, err
	}

	dialer := websocket.Dialer{}
	if remaining, ok := deadline.Remaining(); ok {
		dialer.HandshakeTimeout = remaining
	}

	c := &Conn{
		logger:   logger,
		state:    StateConnecting,
		frames:   make(chan []byte, frameBufferSize),
		readDone: make(chan struct{}),
		quit:     make(chan struct{}),
	}

	ws, resp, err := dialer.DialContext(ctx, socketURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("socket handshake failed (status %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("socket handshake failed: %w", err)
	}
	c.ws = ws
	c.mu.Lock()
	c.state = StateOpen
	c.mu.Unlock()

	go c.readLoop()
	return c, nil
}

// readLoop is the only reader of the socket. It buffers frames in arrival
// order and closes the frame channel on exit so parked consumers wake.
func (c *Conn) readLoop() {
	defer close(c.readDone)
	defer close(c.frames)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.finishRead(err)
			return
		}
		// Binary frames carry the same UTF-8 JSON text.
		select {
		case c.frames <- data:
		case <-c.quit:
			c.finishRead(nil)
			return
		}
	}
}

// finishRead records the read loop's exit reason: a clean close keeps
// readErr nil so consumers see the no-more-frames sentinel, anything else
// moves the connection to Errored.
func (c *Conn) finishRead(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeRequested || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		c.state = StateClosed
		return
	}
	c.state = StateErrored
	c.readErr = err
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsReusable reports whether the connection may serve another request:
// only Open with no recorded error qualifies.
func (c *Conn) IsReusable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateOpen && c.readErr == nil
}

// Send writes one outbound frame. It fails with an ErrNotOpen-class error
// when the connection is not Open so the caller can decide to reconnect.
func (c *Conn) Send(data []byte) error {
	if state := c.State(); state != StateOpen {
		return fmt.Errorf("send in state %s: %w", state, ErrNotOpen)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
		c.mu.Lock()
		c.state = StateErrored
		if c.readErr == nil {
			c.readErr = err
		}
		c.mu.Unlock()
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// NextFrame returns the next buffered frame, or parks the caller until one
// arrives, the socket closes, the context is cancelled, or the deadline
// expires. A clean close with no pending error yields (nil, false, nil):
// no more frames, distinguishable from a socket failure. Cancellation takes
// precedence over timeout when both fire.
func (c *Conn) NextFrame(ctx context.Context, deadline flight.Deadline) (data []byte, ok bool, err error) {
	// Once cancelled, no further frames are read, buffered or not.
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	// Fast path: a frame is already queued.
	select {
	case frame, open := <-c.frames:
		return c.frameResult(frame, open)
	default:
	}
	if err := deadline.Check(flight.PhaseRead); err != nil {
		return nil, false, err
	}

	timer, stop := deadline.Timer()
	defer stop()
	select {
	case frame, open := <-c.frames:
		return c.frameResult(frame, open)
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case <-timer:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		return nil, false, &flight.TimeoutError{Phase: flight.PhaseRead, Budget: deadline.Budget()}
	}
}

func (c *Conn) frameResult(frame []byte, open bool) ([]byte, bool, error) {
	if open {
		return frame, true, nil
	}
	c.mu.Lock()
	readErr := c.readErr
	c.mu.Unlock()
	if readErr != nil {
		return nil, false, fmt.Errorf("socket failed: %w", readErr)
	}
	return nil, false, nil
}

// Close requests a socket close and waits until the close actually lands
// before returning. It is idempotent; concurrent callers all block until
// teardown completes.
func (c *Conn) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeRequested = true
		if c.state == StateOpen || c.state == StateConnecting {
			c.state = StateClosing
		}
		c.mu.Unlock()
		close(c.quit)

		c.writeMu.Lock()
		deadline := time.Now().Add(5 * time.Second)
		if d, ok := ctx.Deadline(); ok {
			deadline = d
		}
		err := c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.writeMu.Unlock()
		if err != nil {
			// Peer is already gone; force the read loop to exit.
			_ = c.ws.Close()
		}
	})

	select {
	case <-c.readDone:
	case <-ctx.Done():
		_ = c.ws.Close()
		<-c.readDone
	}
	_ = c.ws.Close()

	c.mu.Lock()
	if c.state != StateErrored {
		c.state = StateClosed
	}
	c.mu.Unlock()
	return nil
}

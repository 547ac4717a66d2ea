package agentwire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/hupe1980/agentwire/flight"
	"github.com/hupe1980/agentwire/frame"
	"github.com/hupe1980/agentwire/logging"
	"github.com/hupe1980/agentwire/protocol"
	"github.com/hupe1980/agentwire/socket"
	"github.com/hupe1980/agentwire/wire"
)

// DefaultBaseURL is the service endpoint used when none is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultTimeout bounds one request end to end: queue wait, auth
// preparation, handshake and every frame read all draw from it.
const DefaultTimeout = 60 * time.Second

// Credentials are the per-request transport credentials: header overrides
// (nil value unsets) and query additions.
type Credentials struct {
	Headers map[string]*string
	Query   map[string]any
}

// CredentialsFunc resolves credentials when a request begins. It may block
// (token refresh); the call is bounded by the request's remaining budget.
type CredentialsFunc func(ctx context.Context) (*Credentials, error)

// Options configure a Client.
type Options struct {
	// BaseURL is the HTTP(S) service base; the socket URL derives from it.
	BaseURL string
	// APIKey is used for bearer auth when no Credentials func is set.
	APIKey string
	// Credentials overrides APIKey-based auth entirely when set.
	Credentials CredentialsFunc

	// DefaultHeaders is the bottom header layer; auth and per-request
	// overrides stack on top. A nil value unsets a header.
	DefaultHeaders map[string]*string
	// DefaultQuery is the bottom query layer; per-request values win.
	DefaultQuery map[string]any

	// Timeout is the per-request budget. Zero or negative means unlimited.
	Timeout time.Duration

	// DisableConnectionReuse forces a fresh socket per streamed request.
	DisableConnectionReuse bool

	// Logger defaults to NoOp.
	Logger logging.Logger

	// Dial overrides socket dialing (tests).
	Dial socket.DialFunc
}

// Client talks to the model-inference service over two transports: a
// synchronous request/response call and a persistent streaming socket that
// carries one logical request at a time. It implements Model.
type Client struct {
	opts    Options
	http    openai.Client
	manager *socket.Manager
	lock    *flight.Lock
	logger  logging.Logger
}

var _ Model = (*Client)(nil)

// NewClient creates a Client. The connection cache is owned by the instance;
// two clients never share a socket.
func NewClient(optFns ...func(o *Options)) *Client {
	opts := Options{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Logger:  logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	httpOpts := []option.RequestOption{option.WithBaseURL(opts.BaseURL)}
	if opts.APIKey != "" {
		httpOpts = append(httpOpts, option.WithAPIKey(opts.APIKey))
	}

	return &Client{
		opts: opts,
		http: openai.NewClient(httpOpts...),
		manager: socket.NewManager(func(o *socket.ManagerOptions) {
			o.Logger = opts.Logger
			if opts.Dial != nil {
				o.Dial = opts.Dial
			}
		}),
		lock:   &flight.Lock{},
		logger: opts.Logger,
	}
}

// Close tears down any cached streaming connection. Idempotent; safe to call
// while no request is in flight.
func (c *Client) Close(ctx context.Context) error {
	return c.manager.Close(ctx)
}

// GetResponse performs one synchronous request and awaits the full response.
func (c *Client) GetResponse(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	deadline := flight.NewDeadline(c.opts.Timeout)

	body, err := wire.RequestBody(req)
	if err != nil {
		return nil, err
	}
	creds, err := c.resolveCredentials(ctx, deadline)
	if err != nil {
		return nil, err
	}
	headers := socket.MergeHeaders(
		socket.HeaderLayer(c.opts.DefaultHeaders),
		socket.HeaderLayer(creds.Headers),
		socket.HeaderLayer(req.Settings.ExtraHeaders),
	)

	reqOpts := []option.RequestOption{}
	if remaining, ok := deadline.Remaining(); ok {
		reqOpts = append(reqOpts, option.WithRequestTimeout(remaining))
	}
	for key := range headers {
		reqOpts = append(reqOpts, option.WithHeader(key, headers.Get(key)))
	}
	for _, kv := range socket.QueryPairs(mergeQueryLayers(c.opts.DefaultQuery, creds.Query, req.Settings.ExtraQuery)) {
		reqOpts = append(reqOpts, option.WithQueryAdd(kv[0], kv[1]))
	}
	var httpRes *http.Response
	reqOpts = append(reqOpts, option.WithResponseInto(&httpRes))

	start := time.Now()
	var raw map[string]any
	if err := c.http.Post(ctx, "responses", body, &raw, reqOpts...); err != nil {
		return nil, fmt.Errorf("model request failed: %w", err)
	}

	resp, dropped, err := wire.ResponseFromWire(raw)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.logger.Info("dropped output items the client cannot represent", "count", dropped)
	}
	if httpRes != nil {
		resp.RequestID = httpRes.Header.Get("x-request-id")
	}
	c.logger.Debug("response received", "response_id", resp.ID, "duration", time.Since(start), "total_tokens", resp.Usage.TotalTokens)
	return resp, nil
}

// GetStreamedResponse performs one streamed request over the persistent
// socket. Each call produces a fresh, finite event sequence; the event
// channel closes after the terminal event and at most one error is sent on
// the error channel. Cancel via ctx.
func (c *Client) GetStreamedResponse(ctx context.Context, req *protocol.Request) (<-chan protocol.StreamEvent, <-chan error) {
	events := make(chan protocol.StreamEvent, 32)
	errCh := make(chan error, 1)
	go func() {
		defer close(events)
		defer close(errCh)
		if err := c.streamResponse(ctx, req, events); err != nil {
			errCh <- err
		}
	}()
	return events, errCh
}

// streamResponse drives one request through the streaming state machine:
// deadline, queue slot, credentials, connection, send, frame loop, terminal
// classification, reuse decision.
func (c *Client) streamResponse(ctx context.Context, req *protocol.Request, events chan<- protocol.StreamEvent) error {
	// The budget is computed once; every later step consumes from it.
	deadline := flight.NewDeadline(c.opts.Timeout)

	body, err := wire.RequestBody(req)
	if err != nil {
		return err
	}

	release, err := c.lock.Acquire(ctx, deadline)
	if err != nil {
		// Nothing was sent; propagate as-is (queue timeout or abort).
		return err
	}

	var (
		connActive bool
		keepConn   bool
	)
	defer func() {
		if keepConn {
			release()
			return
		}
		if !connActive {
			release()
			return
		}
		// Evict before anyone else can observe the connection, release the
		// queue before awaiting the actual teardown so close latency never
		// blocks the next request.
		stale := c.manager.Detach()
		release()
		if stale != nil {
			_ = stale.Close(context.WithoutCancel(ctx))
		}
	}()

	creds, err := c.resolveCredentials(ctx, deadline)
	if err != nil {
		return err
	}
	headers := socket.MergeHeaders(
		socket.HeaderLayer(c.opts.DefaultHeaders),
		socket.HeaderLayer(creds.Headers),
		socket.HeaderLayer(req.Settings.ExtraHeaders),
	)
	socketURL, err := socket.DeriveURL(c.opts.BaseURL, c.opts.DefaultQuery, mergeQueryLayers(creds.Query, req.Settings.ExtraQuery))
	if err != nil {
		return err
	}

	conn, reused, err := c.manager.Ensure(ctx, socketURL, headers, deadline)
	if err != nil {
		if isPassthrough(err) {
			return err
		}
		return &FeatureUnavailableError{Cause: err}
	}
	connActive = true

	payload, err := frame.EncodeRequest(body, frame.KindResponseCreate)
	if err != nil {
		return err
	}

	if err := conn.Send(payload); err != nil {
		if !socket.IsNotOpen(err) {
			return err
		}
		// A reused connection went stale between the reuse check and the
		// send. This is the only point where a resend is safe: nothing has
		// been read for this request yet.
		c.logger.Debug("cached connection stale on first send, reconnecting once", "reused", reused)
		conn, err = c.manager.Reconnect(ctx, socketURL, headers, deadline)
		if err != nil {
			if isPassthrough(err) {
				return err
			}
			return &FeatureUnavailableError{Cause: err}
		}
		reused = false
		if err := conn.Send(payload); err != nil {
			return &FeatureUnavailableError{Cause: err}
		}
	}

	sawEvent := false
	for {
		data, ok, err := conn.NextFrame(ctx, deadline)
		if err != nil {
			if isPassthrough(err) {
				return err
			}
			return c.classifyStreamFailure(err, reused, sawEvent)
		}
		if !ok {
			// Closed cleanly before the terminal event.
			return c.classifyStreamFailure(nil, reused, sawEvent)
		}

		ev, err := frame.DecodeFrame(data)
		if err != nil {
			// Includes application-level error frames; hard failure.
			return err
		}
		sawEvent = true

		semantic, dropped, err := frame.Normalize(ev)
		if err != nil {
			return err
		}
		if dropped > 0 {
			c.logger.Info("dropped output items the client cannot represent", "count", dropped)
		}
		for _, se := range semantic {
			select {
			case events <- se:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if frame.IsTerminal(ev.Type) {
			// Only a fully successful exchange leaves the socket in a state
			// worth keeping.
			if ev.Type == frame.EventResponseCompleted && !c.opts.DisableConnectionReuse {
				keepConn = true
			}
			return nil
		}
	}
}

// classifyStreamFailure applies the replay-safety taxonomy: a fresh
// connection that produced no event means the feature may be unavailable; a
// reused connection, or any failure after events started arriving, means
// the request may already have taken effect server-side.
func (c *Client) classifyStreamFailure(cause error, reused, sawEvent bool) error {
	if !reused && !sawEvent {
		if cause == nil {
			cause = errors.New("socket closed before any response event arrived")
		}
		return &FeatureUnavailableError{Cause: cause}
	}
	return &ReplayUnsafeError{Cause: cause}
}

// isPassthrough reports errors that must reach the caller unwrapped: the
// caller's own cancellation and phase timeouts.
func isPassthrough(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout *flight.TimeoutError
	return errors.As(err, &timeout)
}

// resolveCredentials runs the credentials hook bounded by the remaining
// budget. The default resolves bearer auth from the configured API key.
func (c *Client) resolveCredentials(ctx context.Context, deadline flight.Deadline) (*Credentials, error) {
	if err := deadline.Check(flight.PhaseAuth); err != nil {
		return nil, err
	}
	fn := c.opts.Credentials
	if fn == nil {
		fn = func(context.Context) (*Credentials, error) {
			if c.opts.APIKey == "" {
				return &Credentials{}, nil
			}
			auth := "Bearer " + c.opts.APIKey
			return &Credentials{Headers: map[string]*string{"Authorization": &auth}}, nil
		}
	}

	type result struct {
		creds *Credentials
		err   error
	}
	ch := make(chan result, 1)
	go func() {
		creds, err := fn(ctx)
		ch <- result{creds: creds, err: err}
	}()

	timer, stop := deadline.Timer()
	defer stop()
	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("resolving credentials: %w", r.err)
		}
		if r.creds == nil {
			return &Credentials{}, nil
		}
		return r.creds, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &flight.TimeoutError{Phase: flight.PhaseAuth, Budget: deadline.Budget()}
	}
}

// mergeQueryLayers folds query layers left to right; later layers win.
func mergeQueryLayers(layers ...map[string]any) map[string]any {
	merged := map[string]any{}
	for _, layer := range layers {
		for k, v := range layer {
			merged[k] = v
		}
	}
	return merged
}

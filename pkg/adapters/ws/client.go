// Package ws implements ports.Transport over a single persistent
// WebSocket connection.
//
// Lifecycle: a lost or failed socket arms exactly one pending reconnect at
// a fixed delay and keeps retrying until Disconnect. There is no retry
// cap; during an extended outage the client will knock on the endpoint
// forever. That tradeoff favors availability over politeness.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/observability"
	"github.com/avelst/skein/pkg/ports"
)

// DefaultReconnectDelay is the fixed pause between reconnect attempts.
const DefaultReconnectDelay = 3 * time.Second

// Envelope is the wire wrapper for every frame in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type subscription struct {
	id      uint64
	handler ports.Handler
}

type terminalSub struct {
	id      uint64
	handler ports.TerminalHandler
}

// Client is a reconnecting pub/sub WebSocket client.
type Client struct {
	url     string
	logger  *slog.Logger
	metrics *observability.TransportMetrics
	dialer  *websocket.Dialer
	policy  backoff.BackOff

	mu        sync.Mutex
	conn      *websocket.Conn
	gen       uint64 // increments per socket; stale read loops detect themselves
	closed    bool   // explicit Disconnect
	retry     *time.Timer
	nextSubID uint64
	subs      map[string][]subscription
	terminals []terminalSub
	notified  map[string]bool // run ids whose terminal event already fired

	writeMu sync.Mutex
}

// Ensure Client satisfies the transport port.
var _ ports.Transport = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics wires the transport counters.
func WithMetrics(m *observability.TransportMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithReconnectDelay overrides the fixed reconnect delay.
func WithReconnectDelay(d time.Duration) Option {
	return func(c *Client) {
		c.policy = backoff.NewConstantBackOff(d)
	}
}

// WithDialer replaces the websocket dialer (timeouts, TLS config).
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Client) {
		c.dialer = d
	}
}

// NewClient creates a Client for the given ws:// or wss:// URL. No
// connection is opened until Connect.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		url:      url,
		logger:   logging.NewNop(),
		metrics:  observability.NopTransportMetrics(),
		dialer:   websocket.DefaultDialer,
		policy:   backoff.NewConstantBackOff(DefaultReconnectDelay),
		subs:     make(map[string][]subscription),
		notified: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect opens the connection, first tearing down any stale socket and
// cancelling any pending reconnect. Idempotent: calling it while connected
// replaces the socket. A dial failure arms the reconnect timer and is also
// returned, so callers may ignore it.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.closed = false
	c.cancelRetryLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Warn("dial failed", "url", c.url, "error", err)
		c.armReconnect(gen)
		return fmt.Errorf("dial %s: %w", c.url, err)
	}

	c.mu.Lock()
	if c.closed || gen != c.gen {
		// Disconnect (or a newer Connect) won the race.
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.policy.Reset()
	c.mu.Unlock()

	c.logger.Info("connected", "url", c.url)
	go c.readLoop(conn, gen)
	return nil
}

// Disconnect closes the socket and cancels any pending reconnect.
// Idempotent.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.cancelRetryLocked()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Publish serializes {type: topic, data: payload} onto the socket. When no
// socket is up the message is dropped, a reconnect is triggered
// best-effort, and ErrNotConnected is returned. There is no queueing or
// replay; this is acceptable for telemetry, not for commands.
func (c *Client) Publish(topic string, payload any) error {
	c.mu.Lock()
	conn := c.conn
	gen := c.gen
	closed := c.closed
	c.mu.Unlock()

	if conn == nil {
		c.metrics.PublishesDropped.Inc()
		if !closed {
			c.armReconnect(gen)
		}
		return fmt.Errorf("publish %s: %w", topic, ports.ErrNotConnected)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("publish %s: marshal: %w", topic, err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteJSON(Envelope{Type: topic, Data: data}); err != nil {
		c.dropConn(conn, gen, err)
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler in the per-topic set. Dispatch preserves
// registration order. The disposer removes only that handler and prunes
// the topic entry when it empties.
func (c *Client) Subscribe(topic string, h ports.Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.subs[topic] = append(c.subs[topic], subscription{id: id, handler: h})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		entries := c.subs[topic]
		for i := range entries {
			if entries[i].id == id {
				c.subs[topic] = append(entries[:i:i], entries[i+1:]...)
				break
			}
		}
		if len(c.subs[topic]) == 0 {
			delete(c.subs, topic)
		}
	}
}

// OnTerminal registers a terminal-event observer, decoupled from the
// generic TopicStatus subscribers. It fires exactly once per run id when
// that run first reports success or error.
func (c *Client) OnTerminal(h ports.TerminalHandler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextSubID++
	id := c.nextSubID
	c.terminals = append(c.terminals, terminalSub{id: id, handler: h})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.terminals {
			if c.terminals[i].id == id {
				c.terminals = append(c.terminals[:i:i], c.terminals[i+1:]...)
				break
			}
		}
	}
}

// readLoop pumps frames off one socket until it dies. Any transport error
// force-closes the socket and re-arms the reconnect timer.
func (c *Client) readLoop(conn *websocket.Conn, gen uint64) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.dropConn(conn, gen, err)
			return
		}
		c.dispatch(raw)
	}
}

// dropConn handles loss of a specific socket generation. Stale generations
// (already replaced by a newer Connect) are ignored.
func (c *Client) dropConn(conn *websocket.Conn, gen uint64, cause error) {
	conn.Close()

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	c.mu.Unlock()

	c.logger.Warn("connection lost", "url", c.url, "error", cause)
	c.armReconnect(gen)
}

// armReconnect schedules a single pending reconnect. A second call while
// one is pending is a no-op.
func (c *Client) armReconnect(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.retry != nil || gen != c.gen {
		return
	}
	delay := c.policy.NextBackOff()
	c.metrics.Reconnects.Inc()
	c.logger.Info("scheduling reconnect", "delay", delay)
	c.retry = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.retry = nil
		closed := c.closed
		c.mu.Unlock()
		if !closed {
			// Errors arm the next attempt; nothing to surface here.
			_ = c.Connect(context.Background())
		}
	})
}

// cancelRetryLocked stops a pending reconnect. Caller holds c.mu.
func (c *Client) cancelRetryLocked() {
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
}

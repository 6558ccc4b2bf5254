package skein

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/adapters/rest"
	"github.com/avelst/skein/pkg/adapters/ws"
	"github.com/avelst/skein/pkg/observability"
	"github.com/avelst/skein/pkg/ports"
	"github.com/avelst/skein/pkg/session"
)

// Version is the library version, reported by the CLI.
const Version = "0.3.0"

// Client bundles the REST store, the websocket transport, and session
// construction against one workflow service.
type Client struct {
	rest      *rest.Client
	transport *ws.Client
	notifier  ports.Notifier
	logger    *slog.Logger
}

// Option defines a functional option for configuring the Client.
type Option func(*options)

type options struct {
	logger         *slog.Logger
	notifier       ports.Notifier
	registerer     prometheus.Registerer
	reconnectDelay time.Duration
	timeout        time.Duration
}

// WithLogger sets a custom structured logger for the client and
// everything it builds.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithNotifier wires a terminal-status notifier into sessions opened by
// this client.
func WithNotifier(n ports.Notifier) Option {
	return func(o *options) {
		o.notifier = n
	}
}

// WithMetrics registers transport metrics with the given registerer.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithReconnectDelay overrides the fixed reconnect delay (default 3s).
func WithReconnectDelay(d time.Duration) Option {
	return func(o *options) {
		o.reconnectDelay = d
	}
}

// WithRequestTimeout overrides the REST per-request timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// New creates a Client for the workflow service at serverURL. The
// websocket endpoint is derived from the same URL ("/ws" on the ws/wss
// scheme). No connection is opened until Connect.
func New(serverURL string, opts ...Option) (*Client, error) {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}

	wsURL, err := websocketURL(serverURL)
	if err != nil {
		return nil, err
	}

	restOpts := []rest.Option{rest.WithLogger(o.logger)}
	if o.timeout > 0 {
		restOpts = append(restOpts, rest.WithTimeout(o.timeout))
	}

	wsOpts := []ws.Option{ws.WithLogger(o.logger)}
	if o.registerer != nil {
		wsOpts = append(wsOpts, ws.WithMetrics(observability.NewTransportMetrics(o.registerer)))
	}
	if o.reconnectDelay > 0 {
		wsOpts = append(wsOpts, ws.WithReconnectDelay(o.reconnectDelay))
	}

	return &Client{
		rest:      rest.New(serverURL, restOpts...),
		transport: ws.NewClient(wsURL, wsOpts...),
		notifier:  o.notifier,
		logger:    o.logger,
	}, nil
}

// Connect opens the websocket. A dial failure is returned but the
// transport keeps retrying on its own; callers may treat the error as
// informational.
func (c *Client) Connect(ctx context.Context) error {
	return c.transport.Connect(ctx)
}

// Close tears down the websocket and releases HTTP resources.
func (c *Client) Close() error {
	c.transport.Disconnect()
	return c.rest.Close()
}

// Store returns the workflow store port backed by the service's REST API.
func (c *Client) Store() ports.WorkflowStore {
	return c.rest
}

// Orchestrator returns the run-execution port.
func (c *Client) Orchestrator() ports.Orchestrator {
	return c.rest
}

// Transport returns the shared status-event transport.
func (c *Client) Transport() ports.Transport {
	return c.transport
}

// OpenSession fetches a stored workflow and opens an attached editing
// session over it.
func (c *Client) OpenSession(ctx context.Context, workflowID string) (*session.Session, error) {
	w, err := c.rest.Get(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	s := session.New(w,
		session.WithTransport(c.transport),
		session.WithStore(c.rest),
		session.WithOrchestrator(c.rest),
		session.WithNotifier(c.notifier),
		session.WithLogger(c.logger),
	)
	if err := s.Attach(); err != nil {
		return nil, err
	}
	return s, nil
}

// websocketURL maps the service base URL to its websocket endpoint.
func websocketURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme %q", serverURL, u.Scheme)
	}
	u.Path = "/ws"
	return u.String(), nil
}

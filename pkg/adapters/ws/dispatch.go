package ws

import (
	"encoding/json"
	"time"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// dispatch parses one inbound frame and fans it out. Malformed and
// unrecognized frames are logged and discarded; the read loop never dies
// over bad input.
func (c *Client) dispatch(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.metrics.ParseErrors.Inc()
		c.logger.Warn("discarding malformed frame", "error", err)
		return
	}

	payload, ok := c.decode(env)
	if !ok {
		return
	}

	c.metrics.FramesDispatched.WithLabelValues(env.Type).Inc()
	for _, sub := range c.handlersFor(env.Type) {
		sub(payload)
	}

	if status, ok := payload.(ports.StatusEvent); ok && status.Status.Terminal() {
		c.fireTerminal(status.RunStatus)
	}
}

// decode maps an envelope onto the closed payload union. Every recognized
// type has a variant; everything else lands in the default branch and is
// dropped.
func (c *Client) decode(env Envelope) (ports.Payload, bool) {
	switch env.Type {
	case ports.TopicStatus:
		var status domain.RunStatus
		if err := json.Unmarshal(env.Data, &status); err != nil {
			c.metrics.ParseErrors.Inc()
			c.logger.Warn("discarding malformed status frame", "error", err)
			return nil, false
		}
		return ports.StatusEvent{RunStatus: status}, true
	case ports.TopicSubscriptionConfirmed:
		var confirmed ports.SubscriptionConfirmed
		if err := json.Unmarshal(env.Data, &confirmed); err != nil {
			c.metrics.ParseErrors.Inc()
			c.logger.Warn("discarding malformed subscription ack", "error", err)
			return nil, false
		}
		return confirmed, true
	case ports.TopicPong:
		var pong ports.Pong
		if err := json.Unmarshal(env.Data, &pong); err != nil {
			c.metrics.ParseErrors.Inc()
			c.logger.Warn("discarding malformed pong", "error", err)
			return nil, false
		}
		return pong, true
	default:
		c.logger.Debug("discarding frame with unknown type", "type", env.Type)
		return nil, false
	}
}

// handlersFor snapshots a topic's handlers so dispatch runs without the
// lock and a handler may unsubscribe itself.
func (c *Client) handlersFor(topic string) []ports.Handler {
	c.mu.Lock()
	defer c.mu.Unlock()
	entries := c.subs[topic]
	if len(entries) == 0 {
		return nil
	}
	out := make([]ports.Handler, len(entries))
	for i, e := range entries {
		out[i] = e.handler
	}
	return out
}

// fireTerminal notifies the terminal observers exactly once per run id.
// A re-emitted terminal frame reaches generic subscribers again but never
// re-fires this path.
func (c *Client) fireTerminal(status domain.RunStatus) {
	c.mu.Lock()
	if c.notified[status.RunID] {
		c.mu.Unlock()
		return
	}
	c.notified[status.RunID] = true
	observers := make([]ports.TerminalHandler, len(c.terminals))
	for i, t := range c.terminals {
		observers[i] = t.handler
	}
	c.mu.Unlock()

	for _, h := range observers {
		h(status)
	}
}

// Control frames understood by the orchestrator's websocket endpoint.

// SubscribeWorkflow asks the server to stream status frames for a flow.
func (c *Client) SubscribeWorkflow(workflowID string) error {
	return c.Publish("subscribe", map[string]string{"workflow_id": workflowID})
}

// UnsubscribeWorkflow stops the server-side stream for a flow.
func (c *Client) UnsubscribeWorkflow(workflowID string) error {
	return c.Publish("unsubscribe", map[string]string{"workflow_id": workflowID})
}

// Ping sends a keepalive; the server answers on TopicPong with the same
// timestamp.
func (c *Client) Ping() error {
	return c.Publish("ping", map[string]int64{"timestamp": time.Now().UnixMilli()})
}

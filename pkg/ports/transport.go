package ports

import (
	"context"
	"errors"

	"github.com/avelst/skein/pkg/domain"
)

// Recognized envelope types. Anything else is logged and dropped by the
// transport without aborting the dispatch loop.
const (
	// TopicStatus carries a domain.RunStatus telemetry frame.
	TopicStatus = "workflow.status"
	// TopicSubscriptionConfirmed acknowledges a workflow subscription.
	TopicSubscriptionConfirmed = "subscription_confirmed"
	// TopicPong answers a keepalive ping.
	TopicPong = "pong"
)

// ErrNotConnected is returned by Publish when no socket is up. The message
// is dropped; the transport arms a reconnect as a side effect. Acceptable
// for telemetry, not for commands.
var ErrNotConnected = errors.New("transport not connected")

// Payload is the closed union of decoded inbound frame payloads. Exactly
// the variants below implement it; unrecognized envelope types never reach
// a handler.
type Payload interface {
	payload()
}

// StatusEvent is the payload for TopicStatus.
type StatusEvent struct {
	domain.RunStatus
}

// SubscriptionConfirmed is the payload for TopicSubscriptionConfirmed.
type SubscriptionConfirmed struct {
	WorkflowID string `json:"workflow_id"`
}

// Pong is the payload for TopicPong.
type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

func (StatusEvent) payload()           {}
func (SubscriptionConfirmed) payload() {}
func (Pong) payload()                  {}

// Handler consumes the decoded payload of one frame. Handlers run
// synchronously on the dispatch goroutine, in registration order.
type Handler func(Payload)

// TerminalHandler observes terminal (success/error) run statuses exactly
// once per run, independently of the generic TopicStatus subscribers.
type TerminalHandler func(domain.RunStatus)

// Transport is one persistent connection to the status-event endpoint.
//
// Implementations reconnect with a fixed delay, indefinitely, until
// Disconnect. Both Connect and Disconnect are idempotent.
type Transport interface {
	// Connect opens the connection, tearing down any stale socket first.
	// A dial failure is returned AND schedules a reconnect; callers may
	// ignore the error when fire-and-forget semantics are acceptable.
	Connect(ctx context.Context) error

	// Disconnect closes the socket and cancels any pending reconnect.
	Disconnect()

	// Publish serializes {type: topic, data: payload} onto the socket.
	// Returns ErrNotConnected (and drops the message) when no socket is up.
	Publish(topic string, payload any) error

	// Subscribe registers a handler for a topic. Multiple handlers per
	// topic are allowed. The returned disposer removes exactly that handler.
	Subscribe(topic string, h Handler) (unsubscribe func())

	// OnTerminal registers an out-of-band observer for terminal statuses.
	OnTerminal(h TerminalHandler) (remove func())
}

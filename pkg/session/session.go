// Package session ties the sync core together for one workflow under
// edit: local mutations, the render bridge, and live telemetry share a
// single canonical snapshot here.
//
// A session owns its workflow exclusively. There is no multi-client
// locking or merge protocol; concurrent external edits resolve
// last-write-wins at save time.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/bridge"
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/edit"
	"github.com/avelst/skein/pkg/notify"
	"github.com/avelst/skein/pkg/ports"
	"github.com/avelst/skein/pkg/projection"
)

// Session is one editing session over one workflow.
type Session struct {
	controller *edit.Controller
	bridge     *bridge.Bridge
	projector  *projection.Projector
	transport  ports.Transport
	store      ports.WorkflowStore
	runner     ports.Orchestrator
	notifier   ports.Notifier
	logger     *slog.Logger

	mu       sync.Mutex
	workflow domain.Workflow
	lastRun  projection.Result
	detach   []func()
}

// Option configures the Session.
type Option func(*Session)

// WithTransport wires the status-event transport.
func WithTransport(t ports.Transport) Option {
	return func(s *Session) {
		s.transport = t
	}
}

// WithStore wires the external workflow store.
func WithStore(store ports.WorkflowStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithOrchestrator wires the remote execution service.
func WithOrchestrator(o ports.Orchestrator) Option {
	return func(s *Session) {
		s.runner = o
	}
}

// WithNotifier wires the terminal-status notifier.
func WithNotifier(n ports.Notifier) Option {
	return func(s *Session) {
		s.notifier = n
	}
}

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithController replaces the edit controller (deterministic ids in tests).
func WithController(c *edit.Controller) Option {
	return func(s *Session) {
		s.controller = c
	}
}

// New creates a Session owning a snapshot of the given workflow.
func New(w domain.Workflow, opts ...Option) *Session {
	s := &Session{
		workflow: domain.Clone(w),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.controller == nil {
		s.controller = edit.NewController(edit.WithLogger(s.logger))
	}
	s.bridge = bridge.New(bridge.WithLogger(s.logger))
	s.projector = projection.New(projection.WithLogger(s.logger))
	return s
}

// Workflow returns the current canonical snapshot. Callers treat it as
// read-only; all mutations go through the session.
func (s *Session) Workflow() domain.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflow
}

// Render maps the current snapshot to its renderable graph with the
// latest run state overlaid. When neither the workflow nor the run state
// changed, this is cache hits all the way down.
func (s *Session) Render() bridge.Graph {
	s.mu.Lock()
	w := s.workflow
	run := s.lastRun
	s.mu.Unlock()

	g := s.bridge.ToRenderable(w)
	if run.States == nil {
		return g
	}
	return s.bridge.ApplyRun(g, run)
}

// AddNode inserts a node of the given type at a canvas position.
func (s *Session) AddNode(nodeType string, pos domain.Position) domain.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, node := s.controller.AddNode(s.workflow, nodeType, pos)
	s.workflow = next
	return node
}

// Connect adds an edge; invariant violations reject the edit unchanged.
func (s *Session) Connect(sourceID, targetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.controller.Connect(s.workflow, sourceID, targetID)
	if err != nil {
		return err
	}
	s.workflow = next
	return nil
}

// DeleteSelection removes nodes and every edge touching them.
func (s *Session) DeleteSelection(nodeIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflow = s.controller.DeleteSelection(s.workflow, nodeIDs)
}

// MoveNode updates one node's canvas position.
func (s *Session) MoveNode(nodeID string, pos domain.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.controller.MoveNode(s.workflow, nodeID, pos)
	if err != nil {
		return err
	}
	s.workflow = next
	return nil
}

// UpdateNodeData shallow-merges a patch into one node's config bag.
func (s *Session) UpdateNodeData(nodeID string, patch map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.controller.UpdateNodeData(s.workflow, nodeID, patch)
	if err != nil {
		return err
	}
	s.workflow = next
	return nil
}

// ApplyDelta merges a render-layer change batch into the canonical model.
func (s *Session) ApplyDelta(delta bridge.Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workflow = s.bridge.FromRenderableChange(s.workflow, delta)
}

// Save writes the snapshot to the external store.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return fmt.Errorf("session has no store configured")
	}
	return s.store.Save(ctx, s.Workflow())
}

// Execute starts a remote run. Fire-and-forget: progress arrives through
// the attached transport.
func (s *Session) Execute(ctx context.Context, input map[string]any) (string, error) {
	if s.runner == nil {
		return "", fmt.Errorf("session has no orchestrator configured")
	}
	return s.runner.Execute(ctx, s.Workflow().ID, input)
}

// Attach subscribes the session to its workflow's telemetry and asks the
// server to stream it. Safe to call once per session.
func (s *Session) Attach() error {
	if s.transport == nil {
		return fmt.Errorf("session has no transport configured")
	}

	flowID := s.Workflow().ID
	unsubscribe := s.transport.Subscribe(ports.TopicStatus, func(p ports.Payload) {
		status, ok := p.(ports.StatusEvent)
		if !ok || status.FlowID != flowID {
			return
		}
		s.mu.Lock()
		s.lastRun = s.projector.OnStatus(status.RunStatus, s.workflow)
		s.mu.Unlock()
	})

	removeTerminal := s.transport.OnTerminal(func(status domain.RunStatus) {
		if status.FlowID != flowID || s.notifier == nil {
			return
		}
		title, message := notify.RunMessage(status)
		if err := s.notifier.Notify(title, message); err != nil {
			s.logger.Warn("failed to deliver notification", "error", err)
		}
	})

	s.mu.Lock()
	s.detach = append(s.detach, unsubscribe, removeTerminal)
	s.mu.Unlock()

	if err := s.transport.Publish("subscribe", map[string]string{"workflow_id": flowID}); err != nil {
		// The transport reconnects on its own; the handler above is
		// already in place for when frames start flowing.
		s.logger.Warn("subscribe control frame dropped", "flow_id", flowID, "error", err)
	}
	return nil
}

// Detach unsubscribes the session's status handler. The remote run, if
// any, keeps going; leaving a view never cancels execution.
func (s *Session) Detach() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	flowID := s.workflow.ID
	s.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
	if s.transport != nil {
		if err := s.transport.Publish("unsubscribe", map[string]string{"workflow_id": flowID}); err != nil {
			s.logger.Debug("unsubscribe control frame dropped", "flow_id", flowID, "error", err)
		}
	}
}

// RunState returns the latest projection result, if any run was observed.
func (s *Session) RunState() projection.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

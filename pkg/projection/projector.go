// Package projection derives per-node and per-edge visual state from run
// telemetry. It is a pure function of (latest status, workflow) with one
// piece of memory: once a run reports a terminal status, later frames for
// the same run id cannot change the picture.
package projection

import (
	"log/slog"
	"sync"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/domain"
)

// Result is the derived visual state for one run over one workflow.
type Result struct {
	RunID  string
	States map[string]domain.NodeState
}

// State returns the derived state for a node, defaulting to idle.
func (r Result) State(nodeID string) domain.NodeState {
	if s, ok := r.States[nodeID]; ok {
		return s
	}
	return domain.NodeIdle
}

// EdgeAnimated reports whether an edge should animate: it does iff its
// target node is running or already succeeded.
func (r Result) EdgeAnimated(e domain.Edge) bool {
	s := r.State(e.Target)
	return s == domain.NodeRunning || s == domain.NodeSuccess
}

// Projector folds status frames into Results. Zero value is not usable;
// call New.
type Projector struct {
	mu       sync.Mutex
	runID    string
	terminal bool
	frozen   Result
	logger   *slog.Logger
}

// Option configures the Projector.
type Option func(*Projector)

// WithLogger configures a logger for discarded telemetry.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Projector) {
		p.logger = logger
	}
}

// New creates a Projector.
func New(opts ...Option) *Projector {
	p := &Projector{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnStatus projects a status frame onto the workflow.
//
// Once a terminal status has been observed for a run id, every later frame
// for that run returns the frozen result; a frame with a new run id resets
// the projector. Identical (status, workflow) inputs always produce
// identical output.
func (p *Projector) OnStatus(status domain.RunStatus, w domain.Workflow) Result {
	p.mu.Lock()
	defer p.mu.Unlock()

	if status.RunID != p.runID {
		p.runID = status.RunID
		p.terminal = false
		p.frozen = Result{}
	}
	if p.terminal {
		p.logger.Debug("ignoring frame for terminated run", "run_id", status.RunID, "status", status.Status)
		return p.frozen
	}

	res := project(status, w)
	if status.Status.Terminal() {
		p.terminal = true
		p.frozen = res
	}
	return res
}

// project is the pure projection, free of run-lifecycle memory.
func project(status domain.RunStatus, w domain.Workflow) Result {
	states := make(map[string]domain.NodeState, len(w.Nodes))
	for _, n := range w.Nodes {
		states[n.ID] = domain.NodeIdle
	}

	for _, id := range status.CompletedNodeIDs {
		if _, ok := states[id]; ok {
			states[id] = domain.NodeSuccess
		}
	}

	// Older orchestrators omit completed_node_ids. Approximate the
	// completed set as every node preceding the current one in declared
	// order. This is an index heuristic, not reachability: it misreports
	// branched or reordered flows, and is kept for wire compatibility.
	if status.CompletedNodeIDs == nil && status.CurrentNodeID != "" && status.Status != domain.RunError {
		if cur := w.NodeIndex(status.CurrentNodeID); cur >= 0 {
			for i := 0; i < cur; i++ {
				states[w.Nodes[i].ID] = domain.NodeSuccess
			}
		}
	}

	if status.CurrentNodeID != "" {
		if _, ok := states[status.CurrentNodeID]; ok {
			if status.Status == domain.RunError {
				states[status.CurrentNodeID] = domain.NodeError
			} else {
				states[status.CurrentNodeID] = domain.NodeRunning
			}
		}
	}

	return Result{RunID: status.RunID, States: states}
}

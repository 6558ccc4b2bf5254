// Package bridge maps the canonical workflow model to and from the
// renderable graph the visualization layer consumes.
//
// The mapping is pure; a Bridge instance only adds memoization. The memo
// compares snapshots with domain.Equal, never by pointer identity, which is
// what breaks the update loop between the render layer and the canonical
// store: a fresh-but-identical value per render pass maps to the cached
// graph.
package bridge

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/domain"
)

// Renderable shapes. The render layer picks a widget per shape; unknown
// node types fall back to ShapeDefault.
const (
	ShapeInput   = "input"  // start nodes
	ShapeOutput  = "output" // end nodes
	ShapeApplet  = "applet" // writer, artist, memory
	ShapeDefault = "default"
)

// RenderNode is one node as the visualization layer sees it.
type RenderNode struct {
	ID       string
	Shape    string
	Type     string
	Position domain.Position
	Data     map[string]any
	State    domain.NodeState
}

// RenderEdge is one edge as the visualization layer sees it.
type RenderEdge struct {
	ID       string
	Source   string
	Target   string
	Animated bool
}

// Graph is the full renderable projection of a workflow. Callers treat it
// as read-only; edits flow back through Delta.
type Graph struct {
	WorkflowID string
	Nodes      []RenderNode
	Edges      []RenderEdge
}

// Bridge memoizes the canonical-to-renderable mapping.
type Bridge struct {
	mu     sync.Mutex
	last   *domain.Workflow
	cached Graph
	logger *slog.Logger
}

// Option configures the Bridge.
type Option func(*Bridge)

// WithLogger configures a logger for defensive filtering events.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a Bridge with an empty memo.
func New(opts ...Option) *Bridge {
	b := &Bridge{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ToRenderable maps the workflow to its renderable graph. When the
// workflow is structurally unchanged since the previous call, the cached
// graph is returned and the mapping does not re-run.
func (b *Bridge) ToRenderable(w domain.Workflow) Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.last != nil && domain.Equal(*b.last, w) {
		return b.cached
	}

	snapshot := domain.Clone(w)
	b.last = &snapshot
	b.cached = b.mapWorkflow(w)
	return b.cached
}

func (b *Bridge) mapWorkflow(w domain.Workflow) Graph {
	g := Graph{
		WorkflowID: w.ID,
		Nodes:      make([]RenderNode, 0, len(w.Nodes)),
		Edges:      make([]RenderEdge, 0, len(w.Edges)),
	}

	known := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		known[n.ID] = true
		g.Nodes = append(g.Nodes, RenderNode{
			ID:       n.ID,
			Shape:    shapeFor(n.Type),
			Type:     n.Type,
			Position: n.Position,
			Data:     renderData(n),
			State:    domain.NodeIdle,
		})
	}

	for _, e := range w.Edges {
		// An edge to a missing node is a model defect; render what is
		// coherent and keep going.
		if !known[e.Source] || !known[e.Target] {
			b.logger.Warn("dropping edge with unknown endpoint", "edge", e.ID, "source", e.Source, "target", e.Target)
			continue
		}
		g.Edges = append(g.Edges, RenderEdge{ID: e.ID, Source: e.Source, Target: e.Target, Animated: e.Animated})
	}
	return g
}

// renderData returns the node's config bag with type defaults filled in
// for missing keys. The canonical bag is never mutated.
func renderData(n domain.Node) map[string]any {
	defaults := domain.DefaultData(n.Type)
	out := make(map[string]any, len(defaults)+len(n.Data))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range n.Data {
		out[k] = v
	}
	return out
}

func shapeFor(nodeType string) string {
	switch nodeType {
	case domain.NodeTypeStart:
		return ShapeInput
	case domain.NodeTypeEnd:
		return ShapeOutput
	case domain.NodeTypeWriter, domain.NodeTypeArtist, domain.NodeTypeMemory:
		return ShapeApplet
	default:
		return ShapeDefault
	}
}

// ValidateConnection is the directionality hook consumed by the edit
// controller: start nodes reject incoming edges, end nodes reject
// outgoing ones.
func ValidateConnection(w domain.Workflow, sourceID, targetID string) error {
	if src := w.Node(sourceID); src != nil && src.Type == domain.NodeTypeEnd {
		return fmt.Errorf("edge out of end node %s: %w", sourceID, domain.ErrDirectionality)
	}
	if dst := w.Node(targetID); dst != nil && dst.Type == domain.NodeTypeStart {
		return fmt.Errorf("edge into start node %s: %w", targetID, domain.ErrDirectionality)
	}
	return nil
}

// Package edit applies local user mutations to the canonical workflow
// model under referential-integrity invariants.
//
// Every mutator returns a fresh Workflow value and leaves its input
// untouched. The render bridge relies on that discipline: it compares
// snapshots structurally to decide whether re-mapping is needed, so a
// mutation must never show through in an older snapshot.
package edit

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/bridge"
	"github.com/avelst/skein/pkg/domain"
)

// Controller owns the mutation rules for one editing session.
type Controller struct {
	newID  func() string
	logger *slog.Logger
}

// Option configures the Controller.
type Option func(*Controller)

// WithIDGenerator replaces the id source (deterministic ids in tests).
func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) {
		c.newID = fn
	}
}

// WithLogger configures a logger for rejected operations.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// NewController creates a Controller with UUID ids and a no-op logger.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		newID:  uuid.NewString,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddNode inserts a fresh node of the given type with its type-specific
// default config. It never auto-connects the node to anything.
func (c *Controller) AddNode(w domain.Workflow, nodeType string, pos domain.Position) (domain.Workflow, domain.Node) {
	out := domain.Clone(w)
	node := domain.Node{
		ID:       c.newID(),
		Type:     nodeType,
		Position: pos,
		Data:     domain.DefaultData(nodeType),
	}
	out.Nodes = append(out.Nodes, node)
	return out, node
}

// Connect appends a new edge between two existing nodes.
//
// Rejected as a no-op (the input workflow is returned unchanged):
// self-loops, duplicate (source, target) pairs, edges into a start node or
// out of an end node, and references to missing nodes. The caller decides
// any user-facing messaging.
func (c *Controller) Connect(w domain.Workflow, sourceID, targetID string) (domain.Workflow, error) {
	if sourceID == targetID {
		return w, fmt.Errorf("connect %s -> %s: %w", sourceID, targetID, domain.ErrSelfLoop)
	}
	if w.Node(sourceID) == nil {
		return w, fmt.Errorf("connect: source %s: %w", sourceID, domain.ErrNodeNotFound)
	}
	if w.Node(targetID) == nil {
		return w, fmt.Errorf("connect: target %s: %w", targetID, domain.ErrNodeNotFound)
	}
	if w.HasEdge(sourceID, targetID) {
		return w, fmt.Errorf("connect %s -> %s: %w", sourceID, targetID, domain.ErrDuplicateEdge)
	}
	if err := bridge.ValidateConnection(w, sourceID, targetID); err != nil {
		c.logger.Debug("connection rejected", "source", sourceID, "target", targetID, "error", err)
		return w, err
	}

	out := domain.Clone(w)
	out.Edges = append(out.Edges, domain.Edge{
		ID:     c.newID(),
		Source: sourceID,
		Target: targetID,
	})
	return out, nil
}

// DeleteNode removes a node and cascades removal of every edge that
// references it. Deleting an unknown node is a no-op.
func (c *Controller) DeleteNode(w domain.Workflow, nodeID string) domain.Workflow {
	return c.DeleteSelection(w, []string{nodeID})
}

// DeleteSelection removes a set of nodes and every edge touching any of
// them, so referential integrity holds after the mutation.
func (c *Controller) DeleteSelection(w domain.Workflow, nodeIDs []string) domain.Workflow {
	doomed := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		doomed[id] = true
	}

	out := domain.Clone(w)
	nodes := out.Nodes[:0]
	for _, n := range out.Nodes {
		if !doomed[n.ID] {
			nodes = append(nodes, n)
		}
	}
	out.Nodes = nodes

	edges := out.Edges[:0]
	for _, e := range out.Edges {
		if !doomed[e.Source] && !doomed[e.Target] {
			edges = append(edges, e)
		}
	}
	out.Edges = edges
	return out
}

// MoveNode updates a node's position. Nothing else changes, no cascade.
func (c *Controller) MoveNode(w domain.Workflow, nodeID string, pos domain.Position) (domain.Workflow, error) {
	if w.Node(nodeID) == nil {
		return w, fmt.Errorf("move %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	out := domain.Clone(w)
	out.Node(nodeID).Position = pos
	return out, nil
}

// UpdateNodeData shallow-merges patch into the node's config bag. Type and
// position are untouched; keys absent from the patch survive.
func (c *Controller) UpdateNodeData(w domain.Workflow, nodeID string, patch map[string]any) (domain.Workflow, error) {
	if w.Node(nodeID) == nil {
		return w, fmt.Errorf("update %s: %w", nodeID, domain.ErrNodeNotFound)
	}
	out := domain.Clone(w)
	node := out.Node(nodeID)
	if node.Data == nil {
		node.Data = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		node.Data[k] = v
	}
	return out, nil
}

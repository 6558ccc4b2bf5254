package domain

// Workflow is the canonical node/edge graph for one visually-edited flow.
//
// Ownership: a workflow is mutated exclusively through pkg/edit during an
// editing session. Mutators return fresh values (see Clone), so two
// snapshots never share nodes, edges, or data bags.
type Workflow struct {
	ID       string         `json:"id" yaml:"id"`
	Name     string         `json:"name" yaml:"name"`
	Nodes    []Node         `json:"nodes" yaml:"nodes"`
	Edges    []Edge         `json:"edges" yaml:"edges"`
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Node returns the node with the given id, or nil if absent.
func (w *Workflow) Node(id string) *Node {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return &w.Nodes[i]
		}
	}
	return nil
}

// NodeIndex returns the position of a node in the declared node order,
// or -1 if absent. The projection layer uses declared order as a linear
// approximation of execution order.
func (w *Workflow) NodeIndex(id string) int {
	for i := range w.Nodes {
		if w.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// HasEdge reports whether any edge with the given source and target exists.
func (w *Workflow) HasEdge(source, target string) bool {
	for i := range w.Edges {
		if w.Edges[i].Source == source && w.Edges[i].Target == target {
			return true
		}
	}
	return false
}

package domain

import "reflect"

// Equal reports structural equality of two workflows. Identity is
// irrelevant: a freshly cloned workflow is Equal to its source. The render
// bridge relies on this to skip re-mapping when a new value with the same
// shape arrives each pass.
//
// Node and edge order is significant; the declared order carries meaning
// for the projection fallback.
func Equal(a, b Workflow) bool {
	if a.ID != b.ID || a.Name != b.Name {
		return false
	}
	if len(a.Nodes) != len(b.Nodes) || len(a.Edges) != len(b.Edges) {
		return false
	}
	for i := range a.Nodes {
		if !nodeEqual(a.Nodes[i], b.Nodes[i]) {
			return false
		}
	}
	for i := range a.Edges {
		if a.Edges[i] != b.Edges[i] {
			return false
		}
	}
	return reflect.DeepEqual(a.Metadata, b.Metadata)
}

func nodeEqual(a, b Node) bool {
	if a.ID != b.ID || a.Type != b.Type || a.Position != b.Position {
		return false
	}
	// Data is a free-form bag; DeepEqual is the only honest comparison.
	return reflect.DeepEqual(a.Data, b.Data)
}

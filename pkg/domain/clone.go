package domain

// Clone returns a deep copy of the workflow. Nothing is shared with the
// original: node slices, edge slices, and every map reachable from a Data
// or Metadata bag are copied recursively.
//
// This replaces serialization round-trips for copying: a marshal/unmarshal
// clone silently drops non-serializable values and re-types numbers.
func Clone(w Workflow) Workflow {
	out := Workflow{
		ID:       w.ID,
		Name:     w.Name,
		Metadata: cloneMap(w.Metadata),
	}
	if w.Nodes != nil {
		out.Nodes = make([]Node, len(w.Nodes))
		for i, n := range w.Nodes {
			out.Nodes[i] = Node{
				ID:       n.ID,
				Type:     n.Type,
				Position: n.Position,
				Data:     cloneMap(n.Data),
			}
		}
	}
	if w.Edges != nil {
		out.Edges = make([]Edge, len(w.Edges))
		copy(out.Edges, w.Edges)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		// Scalars (and anything opaque) are copied by value.
		return t
	}
}

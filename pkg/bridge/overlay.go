package bridge

import (
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/projection"
)

// ApplyRun overlays a projection result onto a renderable graph, returning
// a new graph with node states and edge animations filled in. The input
// graph (and the memoized one behind it) is left untouched, so the overlay
// can be recomputed per telemetry frame without invalidating the mapping
// cache.
func (b *Bridge) ApplyRun(g Graph, res projection.Result) Graph {
	out := Graph{
		WorkflowID: g.WorkflowID,
		Nodes:      make([]RenderNode, len(g.Nodes)),
		Edges:      make([]RenderEdge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)

	for i := range out.Nodes {
		out.Nodes[i].State = res.State(out.Nodes[i].ID)
	}
	for i := range out.Edges {
		e := out.Edges[i]
		out.Edges[i].Animated = res.EdgeAnimated(domain.Edge{ID: e.ID, Source: e.Source, Target: e.Target})
	}
	return out
}

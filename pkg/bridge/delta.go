package bridge

import "github.com/avelst/skein/pkg/domain"

// NodeChange is one render-layer edit to merge back into the canonical
// model. Nil Position means the node did not move; Data keys shallow-merge
// into the config bag.
type NodeChange struct {
	ID       string
	Position *domain.Position
	Data     map[string]any
}

// Delta is a batch of render-layer changes from one interaction.
type Delta struct {
	Nodes []NodeChange
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Nodes) == 0
}

// FromRenderableChange merges a render-layer delta back into the canonical
// workflow. The merge is non-destructive: every canonical field the delta
// does not touch survives unchanged. Changes naming unknown nodes are
// logged and skipped.
func (b *Bridge) FromRenderableChange(w domain.Workflow, delta Delta) domain.Workflow {
	if delta.Empty() {
		return w
	}

	out := domain.Clone(w)
	for _, ch := range delta.Nodes {
		node := out.Node(ch.ID)
		if node == nil {
			b.logger.Warn("dropping change for unknown node", "node", ch.ID)
			continue
		}
		if ch.Position != nil {
			node.Position = *ch.Position
		}
		if len(ch.Data) > 0 {
			if node.Data == nil {
				node.Data = make(map[string]any, len(ch.Data))
			}
			for k, v := range ch.Data {
				node.Data[k] = v
			}
		}
	}
	return out
}

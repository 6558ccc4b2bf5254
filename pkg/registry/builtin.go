package registry

import "github.com/avelst/skein/pkg/domain"

// builtins returns the stock templates offered by the canvas gallery.
// Positions are laid out left to right on a single row per branch.
func builtins() map[string]domain.Workflow {
	return map[string]domain.Workflow{
		"blank": {
			Name: "Blank",
			Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Position: domain.Position{X: 100, Y: 200}, Data: domain.DefaultData(domain.NodeTypeStart)},
				{ID: "end", Type: domain.NodeTypeEnd, Position: domain.Position{X: 500, Y: 200}},
			},
		},
		"writer-pipeline": {
			Name: "Writer Pipeline",
			Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Position: domain.Position{X: 100, Y: 200}, Data: domain.DefaultData(domain.NodeTypeStart)},
				{ID: "writer", Type: domain.NodeTypeWriter, Position: domain.Position{X: 350, Y: 200}, Data: map[string]any{
					"prompt": "Write a short article about the input topic.",
					"model":  "gpt-4.1",
				}},
				{ID: "end", Type: domain.NodeTypeEnd, Position: domain.Position{X: 600, Y: 200}},
			},
			Edges: []domain.Edge{
				{ID: "e1", Source: "start", Target: "writer"},
				{ID: "e2", Source: "writer", Target: "end"},
			},
		},
		"illustrated-post": {
			Name: "Illustrated Post",
			Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Position: domain.Position{X: 100, Y: 200}, Data: domain.DefaultData(domain.NodeTypeStart)},
				{ID: "writer", Type: domain.NodeTypeWriter, Position: domain.Position{X: 320, Y: 200}, Data: map[string]any{
					"prompt": "Draft a blog post for the input topic.",
					"model":  "gpt-4.1",
				}},
				{ID: "artist", Type: domain.NodeTypeArtist, Position: domain.Position{X: 540, Y: 200}, Data: map[string]any{
					"prompt":    "Create a cover illustration for the drafted post.",
					"generator": "stability",
					"style":     "photorealistic",
				}},
				{ID: "memory", Type: domain.NodeTypeMemory, Position: domain.Position{X: 760, Y: 200}, Data: map[string]any{
					"operation": "store",
					"key":       "latest_post",
				}},
				{ID: "end", Type: domain.NodeTypeEnd, Position: domain.Position{X: 980, Y: 200}},
			},
			Edges: []domain.Edge{
				{ID: "e1", Source: "start", Target: "writer"},
				{ID: "e2", Source: "writer", Target: "artist"},
				{ID: "e3", Source: "artist", Target: "memory"},
				{ID: "e4", Source: "memory", Target: "end"},
			},
		},
		"content-moderation": {
			Name: "Content Moderation",
			Nodes: []domain.Node{
				{ID: "start", Type: domain.NodeTypeStart, Position: domain.Position{X: 100, Y: 250}, Data: domain.DefaultData(domain.NodeTypeStart)},
				{ID: "moderate", Type: domain.NodeTypeWriter, Position: domain.Position{X: 320, Y: 250}, Data: map[string]any{
					"prompt": "Classify the submission as approved, needs_review, or flagged.",
					"model":  "gpt-4.1",
				}},
				{ID: "approve", Type: domain.NodeTypeWriter, Position: domain.Position{X: 560, Y: 120}, Data: map[string]any{
					"prompt": "Publish the approved submission.",
					"model":  "gpt-4.1",
				}},
				{ID: "review", Type: domain.NodeTypeMemory, Position: domain.Position{X: 560, Y: 250}, Data: map[string]any{
					"operation": "store",
					"key":       "review_queue",
				}},
				{ID: "reject", Type: domain.NodeTypeWriter, Position: domain.Position{X: 560, Y: 380}, Data: map[string]any{
					"prompt": "Write a rejection note for the flagged submission.",
					"model":  "gpt-4.1",
				}},
				{ID: "end", Type: domain.NodeTypeEnd, Position: domain.Position{X: 800, Y: 250}},
			},
			Edges: []domain.Edge{
				{ID: "e1", Source: "start", Target: "moderate"},
				{ID: "e2", Source: "moderate", Target: "approve"},
				{ID: "e3", Source: "moderate", Target: "review"},
				{ID: "e4", Source: "moderate", Target: "reject"},
				{ID: "e5", Source: "approve", Target: "end"},
				{ID: "e6", Source: "review", Target: "end"},
				{ID: "e7", Source: "reject", Target: "end"},
			},
		},
	}
}

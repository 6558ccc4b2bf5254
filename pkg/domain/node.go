package domain

// Known node types. The set is open: a workflow may carry types this
// library has never seen, and they flow through untouched.
const (
	// NodeTypeStart marks the entry point of a flow. No incoming edges.
	NodeTypeStart = "start"
	// NodeTypeEnd marks a sink. No outgoing edges.
	NodeTypeEnd = "end"
	// NodeTypeWriter generates text from a prompt.
	NodeTypeWriter = "writer"
	// NodeTypeArtist generates an image from a prompt.
	NodeTypeArtist = "artist"
	// NodeTypeMemory stores or retrieves context between steps.
	NodeTypeMemory = "memory"
)

// Position locates a node on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a single step in a workflow.
//
// Data is the semantic config bag (prompts, operation mode, initial input)
// plus transient per-run status written by the projection layer. It is
// schemaless on purpose; use DecodeConfig for typed access.
type Node struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Position Position       `json:"position" yaml:"position"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// DefaultData returns the type-specific default config bag for a freshly
// created node. Callers own the returned map.
func DefaultData(nodeType string) map[string]any {
	switch nodeType {
	case NodeTypeStart:
		return map[string]any{"input": ""}
	case NodeTypeWriter:
		return map[string]any{"prompt": "", "model": "gpt-4.1"}
	case NodeTypeArtist:
		return map[string]any{"prompt": "", "generator": "stability", "style": "photorealistic"}
	case NodeTypeMemory:
		return map[string]any{"operation": "store", "key": ""}
	default:
		return map[string]any{}
	}
}

package graph

import (
	"fmt"
	"strings"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/projection"
)

// GenerateMermaid produces a Mermaid flowchart syntax string for a workflow.
// It applies semantic styling:
// - Start: ((Circle))
// - End: ([Stadium])
// - Memory: [(Database)]
// - Default (writer, artist): [Rectangle]
// When a run projection is provided, per-node states are rendered as
// overlay classes and animated edges as thick arrows.
func GenerateMermaid(w domain.Workflow, run *projection.Result) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range w.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeEnd:
			opener, closer = "([", "])"
		case domain.NodeTypeMemory:
			opener, closer = "[(", ")]"
		}

		label := node.Type
		if name, ok := node.Data["label"].(string); ok && name != "" {
			label = name
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escapeMermaidLabel(label), closer))
	}

	for _, edge := range w.Edges {
		arrow := "-->"
		if run != nil && run.EdgeAnimated(edge) {
			arrow = "==>"
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(edge.Source), arrow, sanitizeMermaidID(edge.Target)))
	}

	if run != nil {
		sb.WriteString("\n    %% Run Overlay\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme.
		sb.WriteString("    classDef running fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		sb.WriteString("    classDef success fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:4px,color:#000;\n")

		for _, node := range w.Nodes {
			state := run.State(node.ID)
			if state == domain.NodeIdle {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(node.ID), state))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}

func escapeMermaidLabel(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/avelst/skein/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// It detects the terminal background automatically.
func NewRenderer() func(string) (string, error) {
	r, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// StateBadge renders a colored badge for a node's visual state.
func StateBadge(state domain.NodeState) string {
	p := termenv.ColorProfile()
	switch state {
	case domain.NodeRunning:
		return termenv.String("● running").Foreground(p.Color("#fbc02d")).String()
	case domain.NodeSuccess:
		return termenv.String("✔ success").Foreground(p.Color("#2e7d32")).String()
	case domain.NodeError:
		return termenv.String("✖ error").Foreground(p.Color("#c62828")).String()
	default:
		return termenv.String("○ idle").Faint().String()
	}
}

// StatusLine renders a one-line summary of a run status frame.
func StatusLine(status domain.RunStatus) string {
	p := termenv.ColorProfile()
	switch status.Status {
	case domain.RunSuccess:
		return termenv.String(fmt.Sprintf("run %s finished (%d steps)", status.RunID, status.Progress)).
			Foreground(p.Color("#2e7d32")).String()
	case domain.RunError:
		return termenv.String(fmt.Sprintf("run %s failed at %s: %s", status.RunID, status.CurrentNodeID, status.Error)).
			Foreground(p.Color("#c62828")).String()
	default:
		return fmt.Sprintf("run %s: %d/%d at %s", status.RunID, status.Progress, status.TotalSteps, status.CurrentNodeID)
	}
}

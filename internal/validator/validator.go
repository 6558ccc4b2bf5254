// Package validator checks whole-workflow integrity before a save or an
// execute is worth attempting. The edit controller upholds these
// invariants incrementally; this is the belt-and-braces pass for
// workflows arriving from files or external stores.
package validator

import (
	"fmt"
	"strings"

	"github.com/avelst/skein/pkg/domain"
)

// Report collects everything wrong (or merely suspicious) about a workflow.
type Report struct {
	Errors   []string
	Warnings []string
}

// OK reports whether the workflow passed with no errors.
func (r Report) OK() bool {
	return len(r.Errors) == 0
}

// Err folds the errors into a single error, or nil when OK.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("found %d errors:\n- %s", len(r.Errors), strings.Join(r.Errors, "\n- "))
}

// ValidateWorkflow checks referential integrity, id uniqueness, edge
// duplication, start/end directionality, and reachability from the start
// node. Unreachable nodes are warnings: the canvas allows half-built flows.
func ValidateWorkflow(w domain.Workflow) Report {
	var rep Report

	seen := make(map[string]bool, len(w.Nodes))
	for _, n := range w.Nodes {
		if seen[n.ID] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("duplicate node id: %q", n.ID))
		}
		seen[n.ID] = true
	}

	pairs := make(map[string]bool, len(w.Edges))
	adjacency := make(map[string][]string, len(w.Nodes))
	for _, e := range w.Edges {
		if !seen[e.Source] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("edge %q references missing source %q", e.ID, e.Source))
		}
		if !seen[e.Target] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("edge %q references missing target %q", e.ID, e.Target))
		}
		if e.Source == e.Target {
			rep.Errors = append(rep.Errors, fmt.Sprintf("edge %q is a self-loop on %q", e.ID, e.Source))
		}

		pair := e.Source + "->" + e.Target
		if pairs[pair] {
			rep.Errors = append(rep.Errors, fmt.Sprintf("duplicate edge %s", pair))
		}
		pairs[pair] = true

		if src := w.Node(e.Source); src != nil && src.Type == domain.NodeTypeEnd {
			rep.Errors = append(rep.Errors, fmt.Sprintf("edge %q leaves end node %q", e.ID, e.Source))
		}
		if dst := w.Node(e.Target); dst != nil && dst.Type == domain.NodeTypeStart {
			rep.Errors = append(rep.Errors, fmt.Sprintf("edge %q enters start node %q", e.ID, e.Target))
		}

		adjacency[e.Source] = append(adjacency[e.Source], e.Target)
	}

	rep.Warnings = append(rep.Warnings, reachability(w, adjacency)...)
	return rep
}

// reachability crawls from every start node and reports what it never saw.
func reachability(w domain.Workflow, adjacency map[string][]string) []string {
	var queue []string
	for _, n := range w.Nodes {
		if n.Type == domain.NodeTypeStart {
			queue = append(queue, n.ID)
		}
	}
	if len(queue) == 0 {
		return []string{"workflow has no start node"}
	}

	visited := make(map[string]bool, len(w.Nodes))
	for _, id := range queue {
		visited[id] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[current] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var warnings []string
	for _, n := range w.Nodes {
		if !visited[n.ID] {
			warnings = append(warnings, fmt.Sprintf("node %q is unreachable from any start node", n.ID))
		}
	}
	return warnings
}

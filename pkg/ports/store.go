package ports

import (
	"context"

	"github.com/avelst/skein/pkg/domain"
)

// WorkflowStore persists workflows outside this process. The sync core
// never persists anything itself; saves are last-write-wins.
type WorkflowStore interface {
	// List returns every stored workflow.
	List(ctx context.Context) ([]domain.Workflow, error)

	// Get retrieves one workflow.
	// Returns domain.ErrWorkflowNotFound if the id is unknown.
	Get(ctx context.Context, id string) (domain.Workflow, error)

	// Save creates or overwrites a workflow.
	Save(ctx context.Context, w domain.Workflow) error

	// Delete removes a workflow. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// Orchestrator starts runs and answers status polls. Telemetry streams
// separately over Transport; RunStatus here is the request/response path.
type Orchestrator interface {
	// Execute starts a run of the stored workflow and returns its run id.
	Execute(ctx context.Context, workflowID string, input map[string]any) (string, error)

	// RunStatus returns the latest status for a run.
	// Returns domain.ErrRunNotFound if the run id is unknown.
	RunStatus(ctx context.Context, runID string) (domain.RunStatus, error)
}

// Notifier delivers the out-of-band terminal-status side effect (an OS
// notification in the desktop builds).
type Notifier interface {
	Notify(title, message string) error
}

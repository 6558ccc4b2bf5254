package domain

// RunState is the lifecycle state of one run as reported by the orchestrator.
type RunState string

const (
	RunRunning RunState = "running"
	RunSuccess RunState = "success"
	RunError   RunState = "error"
)

// Terminal reports whether the state accepts no further transitions.
func (s RunState) Terminal() bool {
	return s == RunSuccess || s == RunError
}

// RunStatus is one telemetry frame for a run. It is streamed incrementally
// over the transport and never persisted client-side.
//
// CompletedNodeIDs may be absent on older orchestrators; the projector then
// falls back to a declared-order approximation.
type RunStatus struct {
	RunID            string         `json:"run_id"`
	FlowID           string         `json:"flow_id"`
	Status           RunState       `json:"status"`
	CurrentNodeID    string         `json:"current_node_id,omitempty"`
	CompletedNodeIDs []string       `json:"completed_node_ids,omitempty"`
	Progress         int            `json:"progress"`
	TotalSteps       int            `json:"total_steps"`
	Results          map[string]any `json:"results,omitempty"`
	Error            string         `json:"error,omitempty"`
}

// NodeState is the per-node visual state derived from a RunStatus.
type NodeState string

const (
	NodeIdle    NodeState = "idle"
	NodeRunning NodeState = "running"
	NodeSuccess NodeState = "success"
	NodeError   NodeState = "error"
)

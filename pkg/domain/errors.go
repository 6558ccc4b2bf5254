package domain

import "errors"

// ErrWorkflowNotFound is returned when a workflow id cannot be found in a store.
var ErrWorkflowNotFound = errors.New("workflow not found")

// ErrRunNotFound is returned when a run id is unknown to the orchestrator.
var ErrRunNotFound = errors.New("run not found")

// ErrNodeNotFound is returned when a mutation references a missing node.
var ErrNodeNotFound = errors.New("node not found")

// ErrSelfLoop is returned when a connection would join a node to itself.
var ErrSelfLoop = errors.New("self-loop rejected")

// ErrDuplicateEdge is returned when a (source, target) pair already exists.
var ErrDuplicateEdge = errors.New("duplicate edge rejected")

// ErrDirectionality is returned when an edge would enter a start node or
// leave an end node.
var ErrDirectionality = errors.New("edge violates start/end directionality")

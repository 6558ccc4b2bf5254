package projection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein/pkg/domain"
)

func threeStepFlow() domain.Workflow {
	return domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			{ID: "n1", Type: domain.NodeTypeStart},
			{ID: "n2", Type: domain.NodeTypeWriter},
			{ID: "n3", Type: domain.NodeTypeArtist},
			{ID: "n4", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "n1", Target: "n2"},
			{ID: "e2", Source: "n2", Target: "n3"},
			{ID: "e3", Source: "n3", Target: "n4"},
		},
	}
}

func TestOnStatus_CompletedAndCurrent(t *testing.T) {
	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunRunning,
		CurrentNodeID:    "n3",
		CompletedNodeIDs: []string{"n1", "n2"},
	}, threeStepFlow())

	assert.Equal(t, domain.NodeSuccess, res.State("n1"))
	assert.Equal(t, domain.NodeSuccess, res.State("n2"))
	assert.Equal(t, domain.NodeRunning, res.State("n3"))
	assert.Equal(t, domain.NodeIdle, res.State("n4"))
}

func TestOnStatus_ErrorMarksCurrentNode(t *testing.T) {
	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:         "r1",
		Status:        domain.RunError,
		CurrentNodeID: "n3",
		Error:         "applet exploded",
	}, threeStepFlow())

	assert.Equal(t, domain.NodeError, res.State("n3"))
}

func TestOnStatus_IndexFallback(t *testing.T) {
	// No completed_node_ids on the wire: everything before the current
	// node in declared order counts as done.
	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:         "r1",
		Status:        domain.RunRunning,
		CurrentNodeID: "n3",
	}, threeStepFlow())

	assert.Equal(t, domain.NodeSuccess, res.State("n1"))
	assert.Equal(t, domain.NodeSuccess, res.State("n2"))
	assert.Equal(t, domain.NodeRunning, res.State("n3"))
	assert.Equal(t, domain.NodeIdle, res.State("n4"))
}

func TestOnStatus_EmptyCompletedListDisablesFallback(t *testing.T) {
	// An explicitly empty list means "nothing completed", not "unknown".
	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunRunning,
		CurrentNodeID:    "n3",
		CompletedNodeIDs: []string{},
	}, threeStepFlow())

	assert.Equal(t, domain.NodeIdle, res.State("n1"))
	assert.Equal(t, domain.NodeIdle, res.State("n2"))
	assert.Equal(t, domain.NodeRunning, res.State("n3"))
}

func TestOnStatus_Idempotent(t *testing.T) {
	p := New()
	status := domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunRunning,
		CurrentNodeID:    "n2",
		CompletedNodeIDs: []string{"n1"},
	}
	w := threeStepFlow()

	first := p.OnStatus(status, w)
	second := p.OnStatus(status, w)
	assert.Equal(t, first, second)
}

func TestOnStatus_TerminalFreezesRun(t *testing.T) {
	p := New()
	w := threeStepFlow()

	terminal := p.OnStatus(domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunSuccess,
		CompletedNodeIDs: []string{"n1", "n2", "n3", "n4"},
	}, w)
	require.Equal(t, domain.NodeSuccess, terminal.State("n4"))

	// A late frame for the same run cannot reopen the picture.
	late := p.OnStatus(domain.RunStatus{
		RunID:         "r1",
		Status:        domain.RunRunning,
		CurrentNodeID: "n2",
	}, w)
	assert.Equal(t, terminal, late)

	// A new run id thaws the projector.
	fresh := p.OnStatus(domain.RunStatus{
		RunID:            "r2",
		Status:           domain.RunRunning,
		CurrentNodeID:    "n1",
		CompletedNodeIDs: []string{},
	}, w)
	assert.Equal(t, domain.NodeRunning, fresh.State("n1"))
	assert.Equal(t, domain.NodeIdle, fresh.State("n4"))
}

func TestOnStatus_UnknownNodeIDsIgnored(t *testing.T) {
	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunRunning,
		CurrentNodeID:    "ghost",
		CompletedNodeIDs: []string{"phantom", "n1"},
	}, threeStepFlow())

	assert.Equal(t, domain.NodeSuccess, res.State("n1"))
	assert.Equal(t, domain.NodeIdle, res.State("ghost"), "unknown ids default to idle, never panic")
}

func TestEndToEnd_StartWriterEnd(t *testing.T) {
	w := domain.Workflow{
		ID: "wf",
		Nodes: []domain.Node{
			{ID: "start", Type: domain.NodeTypeStart},
			{ID: "writer", Type: domain.NodeTypeWriter},
			{ID: "end", Type: domain.NodeTypeEnd},
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "start", Target: "writer"},
			{ID: "e2", Source: "writer", Target: "end"},
		},
	}

	p := New()
	res := p.OnStatus(domain.RunStatus{
		RunID:            "r1",
		Status:           domain.RunRunning,
		CurrentNodeID:    "writer",
		CompletedNodeIDs: []string{"start"},
	}, w)

	assert.Equal(t, domain.NodeSuccess, res.State("start"))
	assert.Equal(t, domain.NodeRunning, res.State("writer"))
	assert.Equal(t, domain.NodeIdle, res.State("end"))
	assert.True(t, res.EdgeAnimated(w.Edges[0]), "start->writer animates")
	assert.False(t, res.EdgeAnimated(w.Edges[1]), "writer->end stays still")
}

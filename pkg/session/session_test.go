package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/edit"
	"github.com/avelst/skein/pkg/ports"
)

// fakeTransport delivers frames synchronously, in-process.
type fakeTransport struct {
	handlers  map[string][]ports.Handler
	terminals []ports.TerminalHandler
	published []string
}

var _ ports.Transport = (*fakeTransport)(nil)

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: make(map[string][]ports.Handler)}
}

func (f *fakeTransport) Connect(context.Context) error { return nil }
func (f *fakeTransport) Disconnect()                   {}

func (f *fakeTransport) Publish(topic string, payload any) error {
	f.published = append(f.published, topic)
	return nil
}

func (f *fakeTransport) Subscribe(topic string, h ports.Handler) func() {
	f.handlers[topic] = append(f.handlers[topic], h)
	i := len(f.handlers[topic]) - 1
	return func() { f.handlers[topic][i] = nil }
}

func (f *fakeTransport) OnTerminal(h ports.TerminalHandler) func() {
	f.terminals = append(f.terminals, h)
	i := len(f.terminals) - 1
	return func() { f.terminals[i] = nil }
}

func (f *fakeTransport) emit(status domain.RunStatus) {
	for _, h := range f.handlers[ports.TopicStatus] {
		if h != nil {
			h(ports.StatusEvent{RunStatus: status})
		}
	}
	if status.Status.Terminal() {
		for _, h := range f.terminals {
			if h != nil {
				h(status)
			}
		}
	}
}

type recordingNotifier struct {
	titles []string
}

func (r *recordingNotifier) Notify(title, _ string) error {
	r.titles = append(r.titles, title)
	return nil
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func pipeline() domain.Workflow {
	return domain.Workflow{
		ID: "wf-1",
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
}

func TestSession_EditsReplaceSnapshot(t *testing.T) {
	s := New(pipeline(), WithController(edit.NewController(edit.WithIDGenerator(seqIDs("id")))))

	node := s.AddNode(domain.NodeTypeMemory, domain.Position{X: 10, Y: 20})
	require.NoError(t, s.Connect("writer", node.ID))

	w := s.Workflow()
	assert.Len(t, w.Nodes, 4)
	assert.True(t, w.HasEdge("writer", node.ID))

	assert.ErrorIs(t, s.Connect(node.ID, node.ID), domain.ErrSelfLoop)
	assert.Len(t, s.Workflow().Edges, 3, "rejected edit must leave the snapshot unchanged")
}

func TestSession_OriginalWorkflowNotAliased(t *testing.T) {
	original := pipeline()
	s := New(original)

	require.NoError(t, s.UpdateNodeData("writer", map[string]any{"prompt": "changed"}))

	assert.Nil(t, original.Nodes[1].Data, "session edits must not leak into the caller's value")
}

func TestSession_AttachProjectsStatusForOwnFlowOnly(t *testing.T) {
	ft := newFakeTransport()
	s := New(pipeline(), WithTransport(ft))
	require.NoError(t, s.Attach())

	assert.Equal(t, []string{"subscribe"}, ft.published)

	ft.emit(domain.RunStatus{
		RunID:         "run-1",
		FlowID:        "wf-1",
		Status:        domain.RunRunning,
		CurrentNodeID: "writer",
		CompletedNodeIDs: []string{
			"start",
		},
	})

	g := s.Render()
	byID := map[string]domain.NodeState{}
	for _, n := range g.Nodes {
		byID[n.ID] = n.State
	}
	assert.Equal(t, domain.NodeSuccess, byID["start"])
	assert.Equal(t, domain.NodeRunning, byID["writer"])
	assert.Equal(t, domain.NodeIdle, byID["end"])

	// A frame for a different workflow leaves the projection alone.
	ft.emit(domain.RunStatus{RunID: "run-x", FlowID: "other", Status: domain.RunError})
	assert.Equal(t, "run-1", s.RunState().RunID)
}

func TestSession_TerminalStatusNotifies(t *testing.T) {
	ft := newFakeTransport()
	rec := &recordingNotifier{}
	s := New(pipeline(), WithTransport(ft), WithNotifier(rec))
	require.NoError(t, s.Attach())

	ft.emit(domain.RunStatus{RunID: "run-1", FlowID: "other", Status: domain.RunSuccess})
	assert.Empty(t, rec.titles, "foreign runs never notify")

	ft.emit(domain.RunStatus{RunID: "run-2", FlowID: "wf-1", Status: domain.RunError, Error: "boom"})
	assert.Equal(t, []string{"Workflow failed"}, rec.titles)
}

func TestSession_DetachStopsProjectionButKeepsState(t *testing.T) {
	ft := newFakeTransport()
	s := New(pipeline(), WithTransport(ft))
	require.NoError(t, s.Attach())

	ft.emit(domain.RunStatus{RunID: "run-1", FlowID: "wf-1", Status: domain.RunRunning, CurrentNodeID: "start"})
	s.Detach()
	assert.Equal(t, []string{"subscribe", "unsubscribe"}, ft.published)

	ft.emit(domain.RunStatus{RunID: "run-1", FlowID: "wf-1", Status: domain.RunRunning, CurrentNodeID: "end"})
	assert.Equal(t, domain.NodeIdle, s.RunState().State("end"), "detached sessions see no further frames")
	assert.Equal(t, domain.NodeRunning, s.RunState().State("start"), "the last projection survives detach")
}

func TestSession_RenderMemoizesAcrossIdenticalFrames(t *testing.T) {
	ft := newFakeTransport()
	s := New(pipeline(), WithTransport(ft))
	require.NoError(t, s.Attach())

	g1 := s.Render()
	g2 := s.Render()
	assert.Same(t, &g1.Nodes[0], &g2.Nodes[0], "stable snapshot must reuse the mapped graph")

	ft.emit(domain.RunStatus{RunID: "run-1", FlowID: "wf-1", Status: domain.RunRunning, CurrentNodeID: "start"})
	overlaid := s.Render()
	assert.NotSame(t, &g1.Nodes[0], &overlaid.Nodes[0], "the overlay must never write into the memoized graph")
	assert.Equal(t, domain.NodeIdle, g1.Nodes[0].State)
}

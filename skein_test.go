package skein_test

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein"
	"github.com/avelst/skein/internal/devserver"
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/registry"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingNotifier) Notify(title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingNotifier) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.titles...)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestClient_EndToEnd(t *testing.T) {
	server := devserver.New(devserver.WithStepDelay(0))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	rec := &recordingNotifier{}
	client, err := skein.New(ts.URL,
		skein.WithNotifier(rec),
		skein.WithReconnectDelay(20*time.Millisecond),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	require.NoError(t, client.Connect(ctx))

	flow, err := registry.NewRegistry().Instantiate("writer-pipeline", "E2E")
	require.NoError(t, err)
	require.NoError(t, client.Store().Save(ctx, flow))

	sess, err := client.OpenSession(ctx, flow.ID)
	require.NoError(t, err)
	defer sess.Detach()

	runID, err := sess.Execute(ctx, map[string]any{"input": "hello"})
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	waitFor(t, 2*time.Second, func() bool {
		titles := rec.snapshot()
		return len(titles) == 1 && titles[0] == "Workflow finished"
	}, "terminal notification never arrived")

	g := sess.Render()
	for _, n := range g.Nodes {
		assert.Equal(t, domain.NodeSuccess, n.State, "node %s", n.ID)
	}

	// The service and the stream agree on the final status.
	status, err := client.Orchestrator().RunStatus(ctx, runID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSuccess, status.Status)
}

func TestClient_OpenSession_UnknownWorkflow(t *testing.T) {
	server := devserver.New()
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	client, err := skein.New(ts.URL)
	require.NoError(t, err)
	defer client.Close()

	_, err = client.OpenSession(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrWorkflowNotFound)
}

func TestNew_RejectsUnsupportedScheme(t *testing.T) {
	_, err := skein.New("ftp://example.com")
	assert.ErrorContains(t, err, "unsupported scheme")
}

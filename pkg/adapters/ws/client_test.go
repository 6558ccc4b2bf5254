package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// echoServer is a minimal loopback endpoint: it hands every accepted
// connection to the test and reflects nothing on its own.
type echoServer struct {
	*httptest.Server
	conns chan *websocket.Conn
}

func newEchoServer(t *testing.T) *echoServer {
	t.Helper()
	upgrader := websocket.Upgrader{}
	es := &echoServer{conns: make(chan *websocket.Conn, 8)}
	es.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		es.conns <- conn
		// Drain inbound frames so pings/publishes do not back up.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(es.Close)
	return es
}

func (es *echoServer) wsURL() string {
	return "ws" + strings.TrimPrefix(es.URL, "http")
}

func (es *echoServer) accept(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case c := <-es.conns:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client connection")
		return nil
	}
}

func sendStatus(t *testing.T, conn *websocket.Conn, status domain.RunStatus) {
	t.Helper()
	data, err := json.Marshal(status)
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Envelope{Type: ports.TopicStatus, Data: data}))
}

// collector records dispatched payloads thread-safely.
type collector struct {
	mu     sync.Mutex
	events []ports.Payload
}

func (c *collector) handler() ports.Handler {
	return func(p ports.Payload) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, p)
	}
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestSubscribe_DispatchInRegistrationOrder(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()
	server := es.accept(t)

	var mu sync.Mutex
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		c.Subscribe(ports.TopicStatus, func(ports.Payload) {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
		})
	}

	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunRunning})

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})
	mu.Lock()
	assert.Equal(t, []string{"first", "second", "third"}, order)
	mu.Unlock()
}

func TestUnsubscribe_HandlerNeverInvokedAgain(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()
	server := es.accept(t)

	gone := &collector{}
	kept := &collector{}
	unsubscribe := c.Subscribe(ports.TopicStatus, gone.handler())
	c.Subscribe(ports.TopicStatus, kept.handler())

	unsubscribe()
	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunRunning})

	waitFor(t, func() bool { return kept.len() == 1 })
	assert.Zero(t, gone.len(), "unsubscribed handler must never fire")
}

func TestDispatch_MalformedAndUnknownFramesAreDropped(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()
	server := es.accept(t)

	got := &collector{}
	c.Subscribe(ports.TopicStatus, got.handler())

	// Garbage, unknown type, malformed payload, then a good frame. The
	// dispatch loop must survive all of it.
	require.NoError(t, server.WriteMessage(websocket.TextMessage, []byte("not json at all")))
	require.NoError(t, server.WriteJSON(Envelope{Type: "mystery.topic", Data: json.RawMessage(`{}`)}))
	require.NoError(t, server.WriteJSON(Envelope{Type: ports.TopicStatus, Data: json.RawMessage(`"not an object"`)}))
	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunRunning, CurrentNodeID: "n1"})

	waitFor(t, func() bool { return got.len() == 1 })
	status, ok := got.events[0].(ports.StatusEvent)
	require.True(t, ok)
	assert.Equal(t, "n1", status.CurrentNodeID)
}

func TestTerminal_FiresExactlyOncePerRun(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()
	server := es.accept(t)

	generic := &collector{}
	c.Subscribe(ports.TopicStatus, generic.handler())

	var mu sync.Mutex
	var terminals []string
	c.OnTerminal(func(s domain.RunStatus) {
		mu.Lock()
		terminals = append(terminals, s.RunID+"/"+string(s.Status))
		mu.Unlock()
	})

	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunRunning})
	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunSuccess})
	// Duplicate terminal frame: generic path sees it, terminal path does not.
	sendStatus(t, server, domain.RunStatus{RunID: "r1", Status: domain.RunSuccess})
	sendStatus(t, server, domain.RunStatus{RunID: "r2", Status: domain.RunError, Error: "boom"})

	waitFor(t, func() bool { return generic.len() == 4 })
	mu.Lock()
	assert.Equal(t, []string{"r1/success", "r2/error"}, terminals)
	mu.Unlock()
}

func TestPublish_WhileDisconnectedDropsAndReports(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/ws", WithReconnectDelay(time.Hour))
	defer c.Disconnect()

	err := c.Publish("ping", map[string]int64{"timestamp": 1})
	assert.ErrorIs(t, err, ports.ErrNotConnected)
}

func TestConnect_ReconnectsAfterSocketLoss(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL(), WithReconnectDelay(20*time.Millisecond))
	require.NoError(t, c.Connect(context.Background()))
	defer c.Disconnect()

	got := &collector{}
	c.Subscribe(ports.TopicStatus, got.handler())

	first := es.accept(t)
	first.Close() // force an unexpected close

	// The client must come back on its own and keep dispatching.
	second := es.accept(t)
	sendStatus(t, second, domain.RunStatus{RunID: "r2", Status: domain.RunRunning})
	waitFor(t, func() bool { return got.len() == 1 })
}

func TestDisconnect_CancelsPendingReconnect(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL(), WithReconnectDelay(30*time.Millisecond))
	require.NoError(t, c.Connect(context.Background()))

	first := es.accept(t)
	first.Close()
	c.Disconnect()

	select {
	case <-es.conns:
		t.Fatal("client reconnected after explicit Disconnect")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestConnect_Idempotent(t *testing.T) {
	es := newEchoServer(t)
	c := NewClient(es.wsURL())
	defer c.Disconnect()

	require.NoError(t, c.Connect(context.Background()))
	es.accept(t)
	require.NoError(t, c.Connect(context.Background()))
	second := es.accept(t)

	// The replacement socket is live.
	got := &collector{}
	c.Subscribe(ports.TopicStatus, got.handler())
	sendStatus(t, second, domain.RunStatus{RunID: "r1", Status: domain.RunRunning})
	waitFor(t, func() bool { return got.len() == 1 })

	c.Disconnect()
	c.Disconnect() // second call is a no-op
}

package devserver

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/avelst/skein/pkg/ports"
)

// hub tracks connected websocket clients and their per-workflow
// subscriptions, mirroring the orchestrator's connection manager.
type hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]bool
}

type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	flows   map[string]bool // subscribed workflow ids
}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func newHub(logger *slog.Logger) *hub {
	return &hub{logger: logger, clients: make(map[*client]bool)}
}

func (h *hub) add(conn *websocket.Conn) *client {
	c := &client{conn: conn, flows: make(map[string]bool)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	return c
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.conn.Close()
}

// broadcast sends a frame to every client subscribed to the workflow.
// Clients with no subscriptions receive everything, which keeps ad-hoc
// watch sessions simple.
func (h *hub) broadcast(flowID, frameType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("failed to marshal broadcast payload", "error", err)
		return
	}
	frame := envelope{Type: frameType, Data: data}

	h.mu.Lock()
	targets := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if len(c.flows) == 0 || c.flows[flowID] {
			targets = append(targets, c)
		}
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.send(frame); err != nil {
			h.logger.Warn("dropping unreachable client", "error", err)
			h.remove(c)
		}
	}
}

func (c *client) send(frame envelope) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(frame)
}

// serve pumps control frames from one client until the socket drops.
func (h *hub) serve(c *client) {
	defer h.remove(c)
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.logger.Warn("ignoring malformed client frame", "error", err)
			continue
		}

		switch env.Type {
		case "subscribe":
			var req struct {
				WorkflowID string `json:"workflow_id"`
			}
			if err := json.Unmarshal(env.Data, &req); err != nil || req.WorkflowID == "" {
				continue
			}
			h.mu.Lock()
			c.flows[req.WorkflowID] = true
			h.mu.Unlock()
			ack, _ := json.Marshal(map[string]string{"workflow_id": req.WorkflowID})
			if err := c.send(envelope{Type: ports.TopicSubscriptionConfirmed, Data: ack}); err != nil {
				return
			}
		case "unsubscribe":
			var req struct {
				WorkflowID string `json:"workflow_id"`
			}
			if err := json.Unmarshal(env.Data, &req); err != nil {
				continue
			}
			h.mu.Lock()
			delete(c.flows, req.WorkflowID)
			h.mu.Unlock()
		case "ping":
			if err := c.send(envelope{Type: ports.TopicPong, Data: env.Data}); err != nil {
				return
			}
		default:
			h.logger.Debug("ignoring unknown client frame", "type", env.Type)
		}
	}
}

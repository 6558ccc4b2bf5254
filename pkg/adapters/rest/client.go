// Package rest implements the workflow store and orchestrator ports over
// the execution service's HTTP API. Request/response bodies follow the
// canonical model shapes; the streaming telemetry path lives in
// pkg/adapters/ws, not here.
package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"resty.dev/v3"

	"github.com/avelst/skein/internal/logging"
	"github.com/avelst/skein/pkg/domain"
	"github.com/avelst/skein/pkg/ports"
)

// Client talks to the workflow service.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

var (
	_ ports.WorkflowStore = (*Client)(nil)
	_ ports.Orchestrator  = (*Client)(nil)
)

// Option configures the Client.
type Option func(*Client)

// WithLogger configures a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the per-request timeout (default 15s).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:   resty.New().SetBaseURL(baseURL).SetTimeout(15 * time.Second),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying HTTP resources.
func (c *Client) Close() error {
	return c.http.Close()
}

// List returns every stored workflow.
func (c *Client) List(ctx context.Context) ([]domain.Workflow, error) {
	var flows []domain.Workflow
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&flows).
		Get("/api/flows")
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list workflows: unexpected status %d", resp.StatusCode())
	}
	return flows, nil
}

// Get retrieves one workflow.
func (c *Client) Get(ctx context.Context, id string) (domain.Workflow, error) {
	var flow domain.Workflow
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&flow).
		SetPathParam("id", id).
		Get("/api/flows/{id}")
	if err != nil {
		return domain.Workflow{}, fmt.Errorf("get workflow %s: %w", id, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.Workflow{}, fmt.Errorf("get workflow %s: %w", id, domain.ErrWorkflowNotFound)
	}
	if resp.IsError() {
		return domain.Workflow{}, fmt.Errorf("get workflow %s: unexpected status %d", id, resp.StatusCode())
	}
	return flow, nil
}

// Save creates or overwrites a workflow. Last write wins; there is no
// merge protocol for concurrent editors.
func (c *Client) Save(ctx context.Context, w domain.Workflow) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(w).
		Post("/api/flows")
	if err != nil {
		return fmt.Errorf("save workflow %s: %w", w.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("save workflow %s: unexpected status %d", w.ID, resp.StatusCode())
	}
	return nil
}

// Delete removes a workflow.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/api/flows/{id}")
	if err != nil {
		return fmt.Errorf("delete workflow %s: %w", id, err)
	}
	if resp.IsError() && resp.StatusCode() != http.StatusNotFound {
		return fmt.Errorf("delete workflow %s: unexpected status %d", id, resp.StatusCode())
	}
	return nil
}

// Execute starts a run of a stored workflow. Fire-and-forget: progress
// arrives over the transport, not this call.
func (c *Client) Execute(ctx context.Context, workflowID string, input map[string]any) (string, error) {
	var accepted struct {
		RunID string `json:"run_id"`
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&accepted).
		SetPathParam("id", workflowID).
		Post("/api/flows/{id}/execute")
	if err != nil {
		return "", fmt.Errorf("execute workflow %s: %w", workflowID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", fmt.Errorf("execute workflow %s: %w", workflowID, domain.ErrWorkflowNotFound)
	}
	if resp.IsError() {
		return "", fmt.Errorf("execute workflow %s: unexpected status %d", workflowID, resp.StatusCode())
	}
	c.logger.Info("run started", "flow_id", workflowID, "run_id", accepted.RunID)
	return accepted.RunID, nil
}

// RunStatus polls the latest status for a run.
func (c *Client) RunStatus(ctx context.Context, runID string) (domain.RunStatus, error) {
	var status domain.RunStatus
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		SetPathParam("id", runID).
		Get("/api/runs/{id}")
	if err != nil {
		return domain.RunStatus{}, fmt.Errorf("run status %s: %w", runID, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.RunStatus{}, fmt.Errorf("run status %s: %w", runID, domain.ErrRunNotFound)
	}
	if resp.IsError() {
		return domain.RunStatus{}, fmt.Errorf("run status %s: unexpected status %d", runID, resp.StatusCode())
	}
	return status, nil
}

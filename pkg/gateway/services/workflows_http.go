package services

import (
	"context"
	"net/http"
	"time"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// WorkflowsHTTP is the default Workflows implementation: a thin JSON-over-HTTP
// client for the external workflow engine (durable execution, DAG
// compilation, and retries all live there —).
type WorkflowsHTTP struct {
	*httpClient
}

// NewWorkflowsHTTP constructs a Workflows client against baseURL.
func NewWorkflowsHTTP(baseURL string, timeout time.Duration) *WorkflowsHTTP {
	return &WorkflowsHTTP{httpClient: newHTTPClient(baseURL, "workflows", timeout)}
}

// List returns every workflow visible to auth's tenant.
func (c *WorkflowsHTTP) List(ctx context.Context, auth *gwauth.AuthContext) ([]Workflow, error) {
	var out []Workflow
	var raw struct {
		Items []Workflow `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/workflows", nil, &raw); err != nil {
		return nil, err
	}
	out = raw.Items
	return out, nil
}

// FindByID returns a single workflow by id.
func (c *WorkflowsHTTP) FindByID(ctx context.Context, auth *gwauth.AuthContext, id string) (*Workflow, error) {
	var w Workflow
	if err := c.do(ctx, auth, http.MethodGet, "/workflows/"+id, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Create creates a new workflow.
func (c *WorkflowsHTTP) Create(ctx context.Context, auth *gwauth.AuthContext, w Workflow) (*Workflow, error) {
	var out Workflow
	if err := c.do(ctx, auth, http.MethodPost, "/workflows", w, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing workflow's definition.
func (c *WorkflowsHTTP) Update(ctx context.Context, auth *gwauth.AuthContext, w Workflow) (*Workflow, error) {
	var out Workflow
	if err := c.do(ctx, auth, http.MethodPut, "/workflows/"+w.ID, w, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMetadata patches a workflow's metadata without touching its graph.
func (c *WorkflowsHTTP) UpdateMetadata(ctx context.Context, auth *gwauth.AuthContext, id string, metadata map[string]any) (*Workflow, error) {
	var out Workflow
	if err := c.do(ctx, auth, http.MethodPatch, "/workflows/"+id+"/metadata", metadata, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a workflow.
func (c *WorkflowsHTTP) Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodDelete, "/workflows/"+id, nil, nil)
}

// Run starts a new execution of workflowID and returns the engine-assigned
// run id. The Background-Task Engine wraps this call with task-store
// bookkeeping; this method itself is a plain synchronous start request.
func (c *WorkflowsHTTP) Run(ctx context.Context, auth *gwauth.AuthContext, workflowID string, inputs map[string]any) (string, error) {
	var out struct {
		RunID string `json:"runId"`
	}
	body := map[string]any{"inputs": inputs}
	if err := c.do(ctx, auth, http.MethodPost, "/workflows/"+workflowID+"/run", body, &out); err != nil {
		return "", err
	}
	return out.RunID, nil
}

// ListRuns returns every run of workflowID visible to auth's tenant.
func (c *WorkflowsHTTP) ListRuns(ctx context.Context, auth *gwauth.AuthContext, workflowID string) ([]Run, error) {
	var raw struct {
		Items []Run `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/workflows/"+workflowID+"/runs", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// ListChildRuns returns runs spawned as children of runID (e.g. sub-workflow
// invocations).
func (c *WorkflowsHTTP) ListChildRuns(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]Run, error) {
	var raw struct {
		Items []Run `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/children", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// GetRunStatus calls the engine's describeWorkflow operation — the
// cache-miss path of the Run-Status Resolver.
func (c *WorkflowsHTTP) GetRunStatus(ctx context.Context, auth *gwauth.AuthContext, runID string) (*DescribeResult, error) {
	var out DescribeResult
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRunResult returns a completed run's output payload.
func (c *WorkflowsHTTP) GetRunResult(ctx context.Context, auth *gwauth.AuthContext, runID string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/result", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunConfig returns the resolved configuration a run was started with.
func (c *WorkflowsHTTP) GetRunConfig(ctx context.Context, auth *gwauth.AuthContext, runID string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/config", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelRun requests cancellation of an in-flight run.
func (c *WorkflowsHTTP) CancelRun(ctx context.Context, auth *gwauth.AuthContext, runID string) error {
	return c.do(ctx, auth, http.MethodPost, "/runs/"+runID+"/cancel", nil, nil)
}

// EnsureRunAccess performs the engine's own tenant-access check for runID,
// which must be called before any node-I/O read.
func (c *WorkflowsHTTP) EnsureRunAccess(ctx context.Context, auth *gwauth.AuthContext, runID string) error {
	return c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/access-check", nil, nil)
}

// FindRunByID returns the gateway's own stored run record, used by the
// Run-Status Resolver's cache-hit path — distinct from GetRunStatus, which
// always asks the live engine.
func (c *WorkflowsHTTP) FindRunByID(ctx context.Context, auth *gwauth.AuthContext, runID string) (*Run, error) {
	var r Run
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CacheTerminalStatus persists a newly observed terminal status against the
// stored run record. Callers treat failures here as non-fatal.
func (c *WorkflowsHTTP) CacheTerminalStatus(ctx context.Context, runID string, status RunStatus, closeTime *time.Time) error {
	body := map[string]any{"status": status, "closeTime": closeTime}
	return c.do(ctx, nil, http.MethodPost, "/runs/"+runID+"/cache-status", body, nil)
}

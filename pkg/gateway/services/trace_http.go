package services

import (
	"context"
	"net/http"
	"time"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// TraceHTTP is the default Trace implementation.
type TraceHTTP struct {
	*httpClient
}

// NewTraceHTTP constructs a Trace client against baseURL.
func NewTraceHTTP(baseURL string, timeout time.Duration) *TraceHTTP {
	return &TraceHTTP{httpClient: newHTTPClient(baseURL, "trace", timeout)}
}

// ListEvents returns runID's full execution trace, consumed both by
// get_run_trace and by the Run-Status Resolver's trace-inference fallback
//.
func (c *TraceHTTP) ListEvents(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]TraceEvent, error) {
	var raw struct {
		Items []TraceEvent `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/trace", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// LogStreamHTTP is the default LogStream implementation.
type LogStreamHTTP struct {
	*httpClient
}

// NewLogStreamHTTP constructs a LogStream client against baseURL.
func NewLogStreamHTTP(baseURL string, timeout time.Duration) *LogStreamHTTP {
	return &LogStreamHTTP{httpClient: newHTTPClient(baseURL, "log-stream", timeout)}
}

// GetRunLogs returns runID's captured execution log lines.
func (c *LogStreamHTTP) GetRunLogs(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]LogLine, error) {
	var raw struct {
		Items []LogLine `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/logs", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// NodeIOHTTP is the default NodeIOService implementation.
type NodeIOHTTP struct {
	*httpClient
}

// NewNodeIOHTTP constructs a NodeIOService client against baseURL.
func NewNodeIOHTTP(baseURL string, timeout time.Duration) *NodeIOHTTP {
	return &NodeIOHTTP{httpClient: newHTTPClient(baseURL, "node-io", timeout)}
}

// ListRunNodeIO returns every node's captured I/O for runID. Callers must
// invoke Workflows.EnsureRunAccess before calling this.
func (c *NodeIOHTTP) ListRunNodeIO(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]NodeIO, error) {
	var raw struct {
		Items []NodeIO `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/node-io", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// GetNodeIO returns one node's captured I/O within runID. Callers must
// invoke Workflows.EnsureRunAccess before calling this — the tenant-access
// check on the run must happen before the node-level read.
func (c *NodeIOHTTP) GetNodeIO(ctx context.Context, auth *gwauth.AuthContext, runID, nodeID string) (*NodeIO, error) {
	var io NodeIO
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/node-io/"+nodeID, nil, &io); err != nil {
		return nil, err
	}
	return &io, nil
}

// ComponentsHTTP is the default Components implementation. Component reads
// carry no permission path (: "always allowed").
type ComponentsHTTP struct {
	*httpClient
}

// NewComponentsHTTP constructs a Components client against baseURL.
func NewComponentsHTTP(baseURL string, timeout time.Duration) *ComponentsHTTP {
	return &ComponentsHTTP{httpClient: newHTTPClient(baseURL, "components", timeout)}
}

// List returns the full component catalog.
func (c *ComponentsHTTP) List(ctx context.Context) ([]map[string]any, error) {
	var raw struct {
		Items []map[string]any `json:"items"`
	}
	if err := c.do(ctx, nil, http.MethodGet, "/components", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// Get returns one component's definition.
func (c *ComponentsHTTP) Get(ctx context.Context, id string) (map[string]any, error) {
	var out map[string]any
	if err := c.do(ctx, nil, http.MethodGet, "/components/"+id, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

package services

import (
	"context"
	"net/http"
	"time"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// HumanInputsHTTP is the default HumanInputs implementation.
type HumanInputsHTTP struct {
	*httpClient
}

// NewHumanInputsHTTP constructs a HumanInputs client against baseURL.
func NewHumanInputsHTTP(baseURL string, timeout time.Duration) *HumanInputsHTTP {
	return &HumanInputsHTTP{httpClient: newHTTPClient(baseURL, "human-inputs", timeout)}
}

// List returns every pending/resolved human-input row for runID.
func (c *HumanInputsHTTP) List(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]HumanInput, error) {
	var raw struct {
		Items []HumanInput `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/runs/"+runID+"/human-inputs", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// Get returns a single human-input row.
func (c *HumanInputsHTTP) Get(ctx context.Context, auth *gwauth.AuthContext, id string) (*HumanInput, error) {
	var h HumanInput
	if err := c.do(ctx, auth, http.MethodGet, "/human-inputs/"+id, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Resolve submits responseData for id. The caller (the dispatcher) must
// have already overridden responseData["status"] with the server-derived
// value before calling this — see HumanInputAction.ResolvedStatus.
func (c *HumanInputsHTTP) Resolve(ctx context.Context, auth *gwauth.AuthContext, id string, responseData map[string]any) (*HumanInput, error) {
	var out HumanInput
	if err := c.do(ctx, auth, http.MethodPost, "/human-inputs/"+id+"/resolve", responseData, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

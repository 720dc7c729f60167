package services

import (
	"context"
	"net/http"
	"time"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// SchedulesHTTP is the default Schedules implementation.
type SchedulesHTTP struct {
	*httpClient
}

// NewSchedulesHTTP constructs a Schedules client against baseURL.
func NewSchedulesHTTP(baseURL string, timeout time.Duration) *SchedulesHTTP {
	return &SchedulesHTTP{httpClient: newHTTPClient(baseURL, "schedules", timeout)}
}

// List returns every schedule visible to auth's tenant.
func (c *SchedulesHTTP) List(ctx context.Context, auth *gwauth.AuthContext) ([]Schedule, error) {
	var raw struct {
		Items []Schedule `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/schedules", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// Get returns a single schedule.
func (c *SchedulesHTTP) Get(ctx context.Context, auth *gwauth.AuthContext, id string) (*Schedule, error) {
	var s Schedule
	if err := c.do(ctx, auth, http.MethodGet, "/schedules/"+id, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Create creates a schedule. s.InputPayload must already carry the nested
// runtimeInputs/nodeOverrides shape — the dispatcher performs the
// flat-to-nested translation before calling this method.
func (c *SchedulesHTTP) Create(ctx context.Context, auth *gwauth.AuthContext, s Schedule) (*Schedule, error) {
	var out Schedule
	if err := c.do(ctx, auth, http.MethodPost, "/schedules", s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing schedule.
func (c *SchedulesHTTP) Update(ctx context.Context, auth *gwauth.AuthContext, s Schedule) (*Schedule, error) {
	var out Schedule
	if err := c.do(ctx, auth, http.MethodPut, "/schedules/"+s.ID, s, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Pause disables a schedule's future firings without deleting it.
func (c *SchedulesHTTP) Pause(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodPost, "/schedules/"+id+"/pause", nil, nil)
}

// Resume re-enables a paused schedule.
func (c *SchedulesHTTP) Resume(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodPost, "/schedules/"+id+"/resume", nil, nil)
}

// Trigger fires a schedule immediately, out of band from its cron
// expression, and returns the resulting run id.
func (c *SchedulesHTTP) Trigger(ctx context.Context, auth *gwauth.AuthContext, id string) (string, error) {
	var out struct {
		RunID string `json:"runId"`
	}
	if err := c.do(ctx, auth, http.MethodPost, "/schedules/"+id+"/trigger", nil, &out); err != nil {
		return "", err
	}
	return out.RunID, nil
}

// Delete removes a schedule.
func (c *SchedulesHTTP) Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodDelete, "/schedules/"+id, nil, nil)
}

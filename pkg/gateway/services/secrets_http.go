package services

import (
	"context"
	"net/http"
	"time"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// SecretsHTTP is the default Secrets implementation. Plaintext secret
// values are sent to the backing service and never echoed back by it; this
// client's return types carry metadata only (: secret encryption at rest
// is out of scope for the gateway).
type SecretsHTTP struct {
	*httpClient
}

// NewSecretsHTTP constructs a Secrets client against baseURL.
func NewSecretsHTTP(baseURL string, timeout time.Duration) *SecretsHTTP {
	return &SecretsHTTP{httpClient: newHTTPClient(baseURL, "secrets", timeout)}
}

// List returns every secret's metadata visible to auth's tenant.
func (c *SecretsHTTP) List(ctx context.Context, auth *gwauth.AuthContext) ([]Secret, error) {
	var raw struct {
		Items []Secret `json:"items"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/secrets", nil, &raw); err != nil {
		return nil, err
	}
	return raw.Items, nil
}

// Create stores a new secret.
func (c *SecretsHTTP) Create(ctx context.Context, auth *gwauth.AuthContext, name, value string) (*Secret, error) {
	var out Secret
	body := map[string]any{"name": name, "value": value}
	if err := c.do(ctx, auth, http.MethodPost, "/secrets", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rotate replaces a secret's value, keeping its id and name.
func (c *SecretsHTTP) Rotate(ctx context.Context, auth *gwauth.AuthContext, id, value string) (*Secret, error) {
	var out Secret
	body := map[string]any{"value": value}
	if err := c.do(ctx, auth, http.MethodPost, "/secrets/"+id+"/rotate", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update renames a secret.
func (c *SecretsHTTP) Update(ctx context.Context, auth *gwauth.AuthContext, id, name string) (*Secret, error) {
	var out Secret
	body := map[string]any{"name": name}
	if err := c.do(ctx, auth, http.MethodPatch, "/secrets/"+id, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a secret.
func (c *SecretsHTTP) Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodDelete, "/secrets/"+id, nil, nil)
}

package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// ArtifactsHTTP is the default Artifacts implementation.
type ArtifactsHTTP struct {
	*httpClient
}

// NewArtifactsHTTP constructs an Artifacts client against baseURL.
func NewArtifactsHTTP(baseURL string, timeout time.Duration) *ArtifactsHTTP {
	return &ArtifactsHTTP{httpClient: newHTTPClient(baseURL, "artifacts", timeout)}
}

// rawArtifact captures both spellings a backing service may use for the
// content type field; normalizeMimeType picks the populated one.
type rawArtifact struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	RunID       string    `json:"runId"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (r rawArtifact) normalize() Artifact {
	return Artifact{
		ID:        r.ID,
		TenantID:  r.TenantID,
		RunID:     r.RunID,
		Name:      r.Name,
		MimeType:  normalizeMimeType(r.MimeType, r.ContentType),
		Size:      r.Size,
		CreatedAt: r.CreatedAt,
	}
}

// ListArtifacts returns every artifact visible to auth's tenant, normalizing
// whichever of the array/object-wrapper response shapes the backing
// service used.
func (c *ArtifactsHTTP) ListArtifacts(ctx context.Context, auth *gwauth.AuthContext) ([]Artifact, error) {
	return c.list(ctx, auth, "/artifacts")
}

// ListRunArtifacts returns every artifact produced by runID.
func (c *ArtifactsHTTP) ListRunArtifacts(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]Artifact, error) {
	return c.list(ctx, auth, "/runs/"+runID+"/artifacts")
}

func (c *ArtifactsHTTP) list(ctx context.Context, auth *gwauth.AuthContext, path string) ([]Artifact, error) {
	var data json.RawMessage
	if err := c.do(ctx, auth, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}
	var raws []rawArtifact
	if len(data) > 0 {
		if err := normalizeList(data, &raws); err != nil {
			return nil, apperror.Internal("decode artifacts response", err)
		}
	}
	out := make([]Artifact, len(raws))
	for i, r := range raws {
		out[i] = r.normalize()
	}
	return out, nil
}

// DownloadArtifact fetches an artifact's full content and metadata. The
// backing service returns the buffer base64-encoded within a JSON envelope;
// decoding it here keeps the wire format internal to this client.
func (c *ArtifactsHTTP) DownloadArtifact(ctx context.Context, auth *gwauth.AuthContext, id string) (*ArtifactBlob, error) {
	var env struct {
		rawArtifact
		Buffer string `json:"buffer"`
	}
	if err := c.do(ctx, auth, http.MethodGet, "/artifacts/"+id+"/download", nil, &env); err != nil {
		return nil, err
	}
	buf, err := base64.StdEncoding.DecodeString(env.Buffer)
	if err != nil {
		return nil, err
	}
	return &ArtifactBlob{Buffer: buf, Artifact: env.rawArtifact.normalize()}, nil
}

// DeleteArtifact removes an artifact.
func (c *ArtifactsHTTP) DeleteArtifact(ctx context.Context, auth *gwauth.AuthContext, id string) error {
	return c.do(ctx, auth, http.MethodDelete, "/artifacts/"+id, nil, nil)
}

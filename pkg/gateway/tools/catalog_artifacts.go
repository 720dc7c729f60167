package tools

import (
	"bytes"
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// sniffWindow is how many leading bytes view_artifact inspects for a null
// byte when the MIME type itself doesn't already mark the blob as text.
const sniffWindow = 512

var textLikeMimePrefixes = []string{
	"text/",
	"application/json",
	"application/xml",
	"application/yaml",
}

func isTextLike(mimeType string, blob []byte) bool {
	for _, prefix := range textLikeMimePrefixes {
		if strings.HasPrefix(mimeType, prefix) {
			return true
		}
	}
	n := sniffWindow
	if n > len(blob) {
		n = len(blob)
	}
	return !bytes.Contains(blob[:n], []byte{0})
}

func (r *Registry) artifactSpecs() []Spec {
	return []Spec{
		{
			Name:           "list_artifacts",
			Description:    "List artifacts visible to the caller's tenant.",
			PermissionPath: "artifacts.read",
			Kind:           KindSync,
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, _ map[string]any) (any, error) {
				if r.deps.Facade.Artifacts == nil {
					return nil, unavailable("artifacts")
				}
				return r.deps.Facade.Artifacts.ListArtifacts(ctx, auth)
			},
		},
		{
			Name:           "list_run_artifacts",
			Description:    "List artifacts produced by a run.",
			PermissionPath: "artifacts.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Artifacts == nil {
					return nil, unavailable("artifacts")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Artifacts.ListRunArtifacts(ctx, auth, runID)
			},
		},
		{
			Name:           "view_artifact",
			Description:    "View a window of a stored artifact's content. Text-like content is returned as a UTF-8 string slice; other content returns metadata only.",
			PermissionPath: "artifacts.read",
			Kind:           KindSync,
			Params: []mcp.ToolOption{
				mcp.WithString("artifactId", mcp.Required()),
				mcp.WithNumber("offset"),
				mcp.WithNumber("limit"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Artifacts == nil {
					return nil, unavailable("artifacts")
				}
				id, err := stringArg(args, "artifactId")
				if err != nil {
					return nil, err
				}
				offset := optionalIntArg(args, "offset", 0)
				limit := optionalIntArg(args, "limit", 65536)
				if offset < 0 {
					offset = 0
				}
				if limit < 0 {
					limit = 0
				}

				blob, err := r.deps.Facade.Artifacts.DownloadArtifact(ctx, auth, id)
				if err != nil {
					return nil, err
				}

				out := map[string]any{
					"artifactId": blob.Artifact.ID,
					"name":       blob.Artifact.Name,
					"mimeType":   blob.Artifact.MimeType,
					"size":       blob.Artifact.Size,
				}

				if !isTextLike(blob.Artifact.MimeType, blob.Buffer) {
					out["binary"] = true
					return out, nil
				}

				total := len(blob.Buffer)
				start := offset
				if start > total {
					start = total
				}
				end := start + limit
				if end > total {
					end = total
				}
				out["content"] = string(blob.Buffer[start:end])
				out["hasMore"] = end < total
				return out, nil
			},
		},
		{
			Name:           "delete_artifact",
			Description:    "Delete a stored artifact.",
			PermissionPath: "artifacts.delete",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("artifactId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Artifacts == nil {
					return nil, unavailable("artifacts")
				}
				id, err := stringArg(args, "artifactId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Artifacts.DeleteArtifact(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "artifactId": id}, nil
			},
		},
	}
}

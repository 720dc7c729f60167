package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

type fakeArtifacts struct {
	services.Artifacts

	blob      *services.ArtifactBlob
	downloadErr error
	deleteErr   error
	deletedID   string
}

func (f *fakeArtifacts) DownloadArtifact(_ context.Context, _ *gwauth.AuthContext, _ string) (*services.ArtifactBlob, error) {
	if f.downloadErr != nil {
		return nil, f.downloadErr
	}
	return f.blob, nil
}

func (f *fakeArtifacts) DeleteArtifact(_ context.Context, _ *gwauth.AuthContext, id string) error {
	f.deletedID = id
	return f.deleteErr
}

func newArtifactsRegistry(artifacts services.Artifacts) *Registry {
	return &Registry{deps: Deps{Facade: &services.Facade{Artifacts: artifacts}}}
}

func findSpec(t *testing.T, specs []Spec, name string) Spec {
	t.Helper()
	for _, s := range specs {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("spec %q not found", name)
	return Spec{}
}

func TestViewArtifactPopulatesMetadataFromNestedField(t *testing.T) {
	t.Parallel()
	blob := &services.ArtifactBlob{
		Buffer: []byte("hello world"),
		Artifact: services.Artifact{
			ID:       "artifact-1",
			Name:     "report.txt",
			MimeType: "text/plain",
			Size:     11,
		},
	}
	r := newArtifactsRegistry(&fakeArtifacts{blob: blob})
	spec := findSpec(t, r.artifactSpecs(), "view_artifact")

	out, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{"artifactId": "artifact-1"})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "artifact-1", m["artifactId"])
	assert.Equal(t, "report.txt", m["name"])
	assert.Equal(t, "text/plain", m["mimeType"])
	assert.Equal(t, int64(11), m["size"])
	assert.Equal(t, "hello world", m["content"])
	assert.Equal(t, false, m["hasMore"])
}

func TestViewArtifactWindowsContentByOffsetAndLimit(t *testing.T) {
	t.Parallel()
	blob := &services.ArtifactBlob{
		Buffer:   []byte("0123456789"),
		Artifact: services.Artifact{ID: "a1", MimeType: "text/plain"},
	}
	r := newArtifactsRegistry(&fakeArtifacts{blob: blob})
	spec := findSpec(t, r.artifactSpecs(), "view_artifact")

	out, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{
		"artifactId": "a1",
		"offset":     float64(2),
		"limit":      float64(4),
	})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "2345", m["content"])
	assert.Equal(t, true, m["hasMore"])
}

func TestViewArtifactBinaryContentSkipsWindowing(t *testing.T) {
	t.Parallel()
	blob := &services.ArtifactBlob{
		Buffer:   []byte{0x00, 0x01, 0x02, 'x'},
		Artifact: services.Artifact{ID: "a1", MimeType: "application/octet-stream"},
	}
	r := newArtifactsRegistry(&fakeArtifacts{blob: blob})
	spec := findSpec(t, r.artifactSpecs(), "view_artifact")

	out, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{"artifactId": "a1"})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, true, m["binary"])
	_, hasContent := m["content"]
	assert.False(t, hasContent)
}

func TestViewArtifactMissingArtifactIDIsValidationError(t *testing.T) {
	t.Parallel()
	r := newArtifactsRegistry(&fakeArtifacts{})
	spec := findSpec(t, r.artifactSpecs(), "view_artifact")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{})
	assert.Error(t, err)
}

func TestArtifactSpecsReturnUnavailableWhenServiceNil(t *testing.T) {
	t.Parallel()
	r := newArtifactsRegistry(nil)
	spec := findSpec(t, r.artifactSpecs(), "list_artifacts")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{})
	assert.Error(t, err)
}

func TestDeleteArtifactReturnsConfirmation(t *testing.T) {
	t.Parallel()
	fake := &fakeArtifacts{}
	r := newArtifactsRegistry(fake)
	spec := findSpec(t, r.artifactSpecs(), "delete_artifact")

	out, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{"artifactId": "a1"})
	require.NoError(t, err)
	assert.Equal(t, "a1", fake.deletedID)
	assert.Equal(t, map[string]any{"deleted": true, "artifactId": "a1"}, out)
}

func TestIsTextLikeSniffsNullByte(t *testing.T) {
	t.Parallel()
	assert.True(t, isTextLike("", []byte("plain ascii")))
	assert.False(t, isTextLike("", []byte{0x00, 0x01}))
	assert.True(t, isTextLike("application/json", []byte{0x00}))
}

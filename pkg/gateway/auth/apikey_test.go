package auth

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMatrixFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capability-matrix.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestNewAPIKeyResolverEmptyPathRejectsEverything(t *testing.T) {
	t.Parallel()
	r, err := NewAPIKeyResolver("")
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "any-key")
	assert.Error(t, err)
}

func TestAPIKeyResolverResolvesKnownKey(t *testing.T) {
	t.Parallel()
	path := writeMatrixFile(t, `{
		"sk_live_abc123": {
			"principalId": "principal-1",
			"tenantId": "tenant-1",
			"roles": ["MEMBER"],
			"capabilityMatrix": {"secrets": {"create": true}}
		}
	}`)

	r, err := NewAPIKeyResolver(path)
	require.NoError(t, err)

	auth, err := r.Resolve(context.Background(), "sk_live_abc123")
	require.NoError(t, err)
	assert.Equal(t, "principal-1", auth.PrincipalID)
	assert.Equal(t, "tenant-1", auth.TenantID)
	assert.True(t, auth.Authenticated)
	assert.True(t, auth.IsAPIKeyPrincipal())
	assert.True(t, auth.CapabilityMatrix.Allows("secrets", "create"))
}

func TestAPIKeyResolverRejectsUnknownKey(t *testing.T) {
	t.Parallel()
	path := writeMatrixFile(t, `{"sk_live_abc123": {"principalId": "p", "tenantId": "t"}}`)

	r, err := NewAPIKeyResolver(path)
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "sk_live_wrong")
	assert.Error(t, err)
}

func TestNewAPIKeyResolverMissingFileErrors(t *testing.T) {
	t.Parallel()
	_, err := NewAPIKeyResolver("/does/not/exist.json")
	assert.Error(t, err)
}

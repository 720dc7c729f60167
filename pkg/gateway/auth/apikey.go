package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
)

// apiKeyRecord is one entry of the capability-matrix file: the principal and
// tenant a raw key resolves to, plus the CapabilityMatrix granted to it.
type apiKeyRecord struct {
	PrincipalID      string           `yaml:"principalId"`
	TenantID         string           `yaml:"tenantId"`
	Roles            []Role           `yaml:"roles"`
	CapabilityMatrix CapabilityMatrix `yaml:"capabilityMatrix"`
}

// APIKeyResolver is the default Resolver: the IdP that issues keys lives
// outside the gateway; this type only validates against a locally-loaded
// capability-matrix file, the simplest deployment the corpus's own
// file-backed registries favor. Keys are indexed by their SHA-256 digest so
// the resolver's in-memory index never holds a raw key.
type APIKeyResolver struct {
	keys map[string]apiKeyRecord
}

// NewAPIKeyResolver loads the capability-matrix file at path: a YAML mapping
// from raw API key to apiKeyRecord. An empty path yields a resolver that
// rejects every credential, which is a valid (if inert) configuration for a
// deployment that authenticates solely via OIDC access tokens.
func NewAPIKeyResolver(path string) (*APIKeyResolver, error) {
	r := &APIKeyResolver{keys: make(map[string]apiKeyRecord)}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading capability matrix file: %w", err)
	}

	var raw map[string]apiKeyRecord
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing capability matrix file: %w", err)
	}
	for key, rec := range raw {
		r.keys[hashKey(key)] = rec
	}
	return r, nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Resolve implements Resolver.
func (r *APIKeyResolver) Resolve(_ context.Context, credential string) (*AuthContext, error) {
	rec, ok := r.keys[hashKey(credential)]
	if !ok {
		return nil, apperror.Unauthorized("unrecognized API key")
	}
	return &AuthContext{
		PrincipalID:      rec.PrincipalID,
		TenantID:         rec.TenantID,
		Roles:            rec.Roles,
		Authenticated:    true,
		Provider:         "api-key",
		CapabilityMatrix: rec.CapabilityMatrix,
	}, nil
}

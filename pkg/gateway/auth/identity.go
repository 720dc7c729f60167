// Package auth holds the gateway's caller-identity types: AuthContext, the
// per-API-key CapabilityMatrix, and the context-storage helpers that let a
// session's handler read the caller's identity without trusting anything an
// MCP client passes in tool arguments.
package auth

import (
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role is a coarse-grained role assigned to a principal.
type Role string

// Roles recognized by the gateway.
const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// CapabilityMatrix is a two-level map from scope name to action name to
// whether the action is permitted. It is present only for API-key
// principals; its absence means the gateway imposes no per-tool restriction
// (tenant scoping still applies regardless).
type CapabilityMatrix map[string]map[string]bool

// Allows reports whether the matrix grants action within scope. Absence of
// the scope, or of the action within it, is a denial — there is no
// implicit-allow fallthrough.
func (m CapabilityMatrix) Allows(scope, action string) bool {
	if m == nil {
		return false
	}
	actions, ok := m[scope]
	if !ok {
		return false
	}
	return actions[action]
}

// AuthContext is the caller's identity on every request, produced by the
// authentication middleware and passed immutably downstream. It is captured
// in a tool's handler closure at session construction time; an MCP client
// can never supply or override one through tool arguments.
type AuthContext struct {
	PrincipalID      string
	TenantID         string
	Roles            []Role
	Authenticated    bool
	Provider         string
	CapabilityMatrix CapabilityMatrix

	// Claims carries the raw JWT claims for principals authenticated via an
	// OIDC access token, a secondary principal type alongside the opaque
	// API key. Authorization logic must read this map directly rather than
	// relying on any derived field, since claim key names vary by provider.
	Claims jwt.MapClaims

	// token is the original bearer credential, retained only for
	// pass-through scenarios and redacted from String/MarshalJSON.
	token string
}

// HasRole reports whether the context carries the given role.
func (a *AuthContext) HasRole(role Role) bool {
	if a == nil {
		return false
	}
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAPIKeyPrincipal reports whether this context was derived from an API
// key (as opposed to an OIDC/JWT-based service account). Only API-key
// principals carry a CapabilityMatrix.
func (a *AuthContext) IsAPIKeyPrincipal() bool {
	return a != nil && a.CapabilityMatrix != nil
}

// WithToken returns a copy of a carrying the given bearer token, for
// pass-through calls to backing services that require it.
func (a *AuthContext) WithToken(token string) *AuthContext {
	cp := *a
	cp.token = token
	return &cp
}

// Token returns the original bearer credential, if retained.
func (a *AuthContext) Token() string {
	if a == nil {
		return ""
	}
	return a.token
}

// String redacts the token so the context can be logged safely.
func (a *AuthContext) String() string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("AuthContext{PrincipalID:%q,TenantID:%q,Provider:%q}", a.PrincipalID, a.TenantID, a.Provider)
}

// MarshalJSON implements json.Marshaler, redacting the bearer token.
func (a *AuthContext) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	type safe struct {
		PrincipalID      string           `json:"principalId"`
		TenantID         string           `json:"tenantId"`
		Roles            []Role           `json:"roles"`
		Authenticated    bool             `json:"authenticated"`
		Provider         string           `json:"provider"`
		CapabilityMatrix CapabilityMatrix `json:"capabilityMatrix,omitempty"`
	}
	return json.Marshal(&safe{
		PrincipalID:      a.PrincipalID,
		TenantID:         a.TenantID,
		Roles:            a.Roles,
		Authenticated:    a.Authenticated,
		Provider:         a.Provider,
		CapabilityMatrix: a.CapabilityMatrix,
	})
}

// CanReadAudit reports whether this principal may read audit records: it
// must either hold the ADMIN role, or be an API key with audit.read granted.
func (a *AuthContext) CanReadAudit() bool {
	if a == nil {
		return false
	}
	if a.HasRole(RoleAdmin) {
		return true
	}
	return a.CapabilityMatrix.Allows("audit", "read")
}

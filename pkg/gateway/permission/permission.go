// Package permission implements the gateway's uniform permission gate: it
// parses a tool's dotted "scope.action" path and walks the caller's
// CapabilityMatrix, so the Tool Registry & Dispatcher can short-circuit a
// denial into a wire-level error without ever reaching a backing service.
package permission

import (
	"fmt"
	"strings"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// Path is a parsed "scope.action" permission path, e.g. "secrets.create".
type Path struct {
	Scope  string
	Action string
}

// String reconstructs the dotted literal form of the path.
func (p Path) String() string {
	return p.Scope + "." + p.Action
}

// ParsePath splits a dotted permission path into its scope and action. A
// path without exactly one dot is a programming error in the tool catalog,
// not a runtime condition, so callers own the tool catalog are expected to
// have validated this at registration time.
func ParsePath(raw string) (Path, error) {
	idx := strings.IndexByte(raw, '.')
	if idx <= 0 || idx == len(raw)-1 || strings.Count(raw, ".") != 1 {
		return Path{}, fmt.Errorf("permission: malformed path %q, expected \"scope.action\"", raw)
	}
	return Path{Scope: raw[:idx], Action: raw[idx+1:]}, nil
}

// Evaluate runs the permission gate for path against authCtx:
//  1. If the AuthContext carries no CapabilityMatrix (not an API-key
//     principal) → allowed.
//  2. Else look up the scope; missing → denied.
//  3. Else look up the action within the scope; false or missing → denied.
func Evaluate(authCtx *gwauth.AuthContext, path Path) bool {
	if authCtx == nil {
		return false
	}
	if !authCtx.IsAPIKeyPrincipal() {
		return true
	}
	return authCtx.CapabilityMatrix.Allows(path.Scope, path.Action)
}

// DeniedMessage renders the standard denial text the dispatcher returns in
// the tool's error envelope. It must always contain the literal permission
// path, per the gateway's contract with MCP clients.
func DeniedMessage(path Path) string {
	return fmt.Sprintf("Permission denied: API key lacks '%s' permission.", path.String())
}

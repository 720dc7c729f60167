package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// auditSpecs covers read access to the gateway's own audit trail. Unlike
// every other tool group, the permission check here is not the generic
// dotted-path gate: CanReadAudit admits an ADMIN principal regardless of
// its capability matrix, which a plain "audit.read" path lookup cannot
// express, so the check runs inside the handler instead of PermissionPath.
func (r *Registry) auditSpecs() []Spec {
	return []Spec{
		{
			Name:        "list_audit_records",
			Description: "List recent audit records for the caller's tenant. Requires the ADMIN role or an API key granted audit.read.",
			Kind:        KindSync,
			Params:      []mcp.ToolOption{mcp.WithNumber("limit")},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Audit == nil {
					return nil, unavailable("audit")
				}
				limit := optionalIntArg(args, "limit", 100)
				return r.deps.Audit.List(ctx, auth, auth.TenantID, limit)
			},
		},
	}
}

package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// secretSpecs covers secret metadata management. The gateway never returns
// a secret's plaintext value; handlers here only ever pass a value
// through to the backing service on create/rotate, never back out.
func (r *Registry) secretSpecs() []Spec {
	return []Spec{
		{
			Name:           "list_secrets",
			Description:    "List secret metadata visible to the caller's tenant. Values are never returned.",
			PermissionPath: "secrets.list",
			Kind:           KindSync,
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, _ map[string]any) (any, error) {
				if r.deps.Facade.Secrets == nil {
					return nil, unavailable("secrets")
				}
				return r.deps.Facade.Secrets.List(ctx, auth)
			},
		},
		{
			Name:                 "create_secret",
			Description:          "Create a new secret.",
			PermissionPath:       "secrets.create",
			Kind:                 KindSync,
			AuditAction:          "secret.create",
			AuditResourceType:    "secret",
			AuditResourceNameArg: "name",
			Params: []mcp.ToolOption{
				mcp.WithString("name", mcp.Required()),
				mcp.WithString("value", mcp.Required()),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Secrets == nil {
					return nil, unavailable("secrets")
				}
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				value, err := stringArg(args, "value")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Secrets.Create(ctx, auth, name, value)
			},
		},
		{
			Name:               "rotate_secret",
			Description:        "Replace a secret's value, keeping its name.",
			PermissionPath:     "secrets.update",
			Kind:               KindSync,
			AuditAction:        "secret.rotate",
			AuditResourceType:  "secret",
			AuditResourceIDArg: "secretId",
			Params: []mcp.ToolOption{
				mcp.WithString("secretId", mcp.Required()),
				mcp.WithString("value", mcp.Required()),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Secrets == nil {
					return nil, unavailable("secrets")
				}
				id, err := stringArg(args, "secretId")
				if err != nil {
					return nil, err
				}
				value, err := stringArg(args, "value")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Secrets.Rotate(ctx, auth, id, value)
			},
		},
		{
			Name:                 "update_secret",
			Description:          "Rename a secret.",
			PermissionPath:       "secrets.update",
			Kind:                 KindSync,
			AuditAction:          "secret.update",
			AuditResourceType:    "secret",
			AuditResourceIDArg:   "secretId",
			AuditResourceNameArg: "name",
			Params: []mcp.ToolOption{
				mcp.WithString("secretId", mcp.Required()),
				mcp.WithString("name", mcp.Required()),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Secrets == nil {
					return nil, unavailable("secrets")
				}
				id, err := stringArg(args, "secretId")
				if err != nil {
					return nil, err
				}
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Secrets.Update(ctx, auth, id, name)
			},
		},
		{
			Name:               "delete_secret",
			Description:        "Delete a secret.",
			PermissionPath:     "secrets.delete",
			Kind:               KindSync,
			AuditAction:        "secret.delete",
			AuditResourceType:  "secret",
			AuditResourceIDArg: "secretId",
			Params:             []mcp.ToolOption{mcp.WithString("secretId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Secrets == nil {
					return nil, unavailable("secrets")
				}
				id, err := stringArg(args, "secretId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Secrets.Delete(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "secretId": id}, nil
			},
		},
	}
}

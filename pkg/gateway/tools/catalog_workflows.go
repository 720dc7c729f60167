package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

func (r *Registry) workflowSpecs() []Spec {
	return []Spec{
		{
			Name:           "list_workflows",
			Description:    "List workflows visible to the caller's tenant.",
			PermissionPath: "workflows.list",
			Kind:           KindSync,
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, _ map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				return r.deps.Facade.Workflows.List(ctx, auth)
			},
		},
		{
			Name:           "get_workflow",
			Description:    "Fetch a single workflow definition by id.",
			PermissionPath: "workflows.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("workflowId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				id, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.FindByID(ctx, auth, id)
			},
		},
		{
			Name:           "create_workflow",
			Description:    "Create a new workflow.",
			PermissionPath: "workflows.create",
			Kind:           KindSync,
			Params: []mcp.ToolOption{
				mcp.WithString("name", mcp.Required()),
				mcp.WithObject("graph"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				name, err := stringArg(args, "name")
				if err != nil {
					return nil, err
				}
				w := services.Workflow{TenantID: auth.TenantID, Name: name, Graph: optionalObjectArg(args, "graph")}
				return r.deps.Facade.Workflows.Create(ctx, auth, w)
			},
		},
		{
			Name:           "update_workflow",
			Description:    "Replace a workflow's full definition.",
			PermissionPath: "workflows.update",
			Kind:           KindSync,
			Params: []mcp.ToolOption{
				mcp.WithString("workflowId", mcp.Required()),
				mcp.WithString("name"),
				mcp.WithObject("graph"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				id, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				w := services.Workflow{
					ID:       id,
					TenantID: auth.TenantID,
					Name:     optionalStringArg(args, "name"),
					Graph:    optionalObjectArg(args, "graph"),
				}
				return r.deps.Facade.Workflows.Update(ctx, auth, w)
			},
		},
		{
			Name:           "update_workflow_metadata",
			Description:    "Patch a workflow's metadata without touching its graph.",
			PermissionPath: "workflows.update",
			Kind:           KindSync,
			Params: []mcp.ToolOption{
				mcp.WithString("workflowId", mcp.Required()),
				mcp.WithObject("metadata"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				id, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.UpdateMetadata(ctx, auth, id, optionalObjectArg(args, "metadata"))
			},
		},
		{
			Name:           "delete_workflow",
			Description:    "Delete a workflow.",
			PermissionPath: "workflows.delete",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("workflowId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				id, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Workflows.Delete(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "workflowId": id}, nil
			},
		},
	}
}

func unavailable(service string) error {
	return apperror.ServiceUnavailable(service)
}

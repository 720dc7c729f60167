package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// componentSpecs covers the component catalog, which is always readable
// regardless of the caller's CapabilityMatrix ( carries no permission
// path for these two tools).
func (r *Registry) componentSpecs() []Spec {
	return []Spec{
		{
			Name:        "list_components",
			Description: "List the node components available to workflow graphs.",
			Kind:        KindSync,
			Handler: func(ctx context.Context, _ *gwauth.AuthContext, _ map[string]any) (any, error) {
				if r.deps.Facade.Components == nil {
					return nil, unavailable("components")
				}
				return r.deps.Facade.Components.List(ctx)
			},
		},
		{
			Name:        "get_component",
			Description: "Fetch a single node component's definition by id.",
			Kind:        KindSync,
			Params:      []mcp.ToolOption{mcp.WithString("componentId", mcp.Required())},
			Handler: func(ctx context.Context, _ *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Components == nil {
					return nil, unavailable("components")
				}
				id, err := stringArg(args, "componentId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Components.Get(ctx, id)
			},
		},
	}
}

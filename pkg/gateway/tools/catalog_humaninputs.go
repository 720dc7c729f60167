package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

func (r *Registry) humanInputSpecs() []Spec {
	return []Spec{
		{
			Name:           "list_human_inputs",
			Description:    "List pending and resolved human-input requests for a run.",
			PermissionPath: "human-inputs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.HumanInputs == nil {
					return nil, unavailable("human-inputs")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.HumanInputs.List(ctx, auth, runID)
			},
		},
		{
			Name:           "get_human_input",
			Description:    "Fetch a single human-input request by id.",
			PermissionPath: "human-inputs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("humanInputId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.HumanInputs == nil {
					return nil, unavailable("human-inputs")
				}
				id, err := stringArg(args, "humanInputId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.HumanInputs.Get(ctx, auth, id)
			},
		},
		{
			Name:               "resolve_human_input",
			Description:        "Approve or reject a pending human-input request.",
			PermissionPath:     "human-inputs.resolve",
			Kind:               KindSync,
			AuditAction:        "human_input.resolve",
			AuditResourceType:  "human_input",
			AuditResourceIDArg: "humanInputId",
			Params: []mcp.ToolOption{
				mcp.WithString("humanInputId", mcp.Required()),
				mcp.WithString("action", mcp.Required()),
				mcp.WithObject("responseData"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.HumanInputs == nil {
					return nil, unavailable("human-inputs")
				}
				id, err := stringArg(args, "humanInputId")
				if err != nil {
					return nil, err
				}
				actionArg, err := stringArg(args, "action")
				if err != nil {
					return nil, err
				}
				action := services.HumanInputAction(actionArg)
				if action != services.HumanInputApprove && action != services.HumanInputReject {
					return nil, apperror.Validation("action", `must be "approve" or "reject"`)
				}

				responseData := optionalObjectArg(args, "responseData")
				// The caller's data is merged first; the resolved status is
				// computed from action and written last, overriding any
				// "status" field the caller may have supplied (/ —
				// the caller never gets to assert its own approval state).
				responseData["status"] = action.ResolvedStatus()

				return r.deps.Facade.HumanInputs.Resolve(ctx, auth, id, responseData)
			},
		},
	}
}

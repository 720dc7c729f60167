package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// toInputPayload translates a caller's flat `inputs` mapping into the
// nested shape the schedules service expects. The flat field must never
// reach the service.
func toInputPayload(args map[string]any) services.SchedulePayload {
	return services.SchedulePayload{
		RuntimeInputs: optionalObjectArg(args, "inputs"),
		NodeOverrides: map[string]any{},
	}
}

func (r *Registry) scheduleSpecs() []Spec {
	return []Spec{
		{
			Name:           "list_schedules",
			Description:    "List schedules visible to the caller's tenant.",
			PermissionPath: "schedules.list",
			Kind:           KindSync,
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, _ map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				return r.deps.Facade.Schedules.List(ctx, auth)
			},
		},
		{
			Name:           "get_schedule",
			Description:    "Fetch a single schedule by id.",
			PermissionPath: "schedules.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("scheduleId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Schedules.Get(ctx, auth, id)
			},
		},
		{
			Name:              "create_schedule",
			Description:       "Create a new schedule for a workflow.",
			PermissionPath:    "schedules.create",
			Kind:              KindSync,
			AuditAction:       "schedule.create",
			AuditResourceType: "schedule",
			Params: []mcp.ToolOption{
				mcp.WithString("workflowId", mcp.Required()),
				mcp.WithString("cronExpr", mcp.Required()),
				mcp.WithObject("inputs"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				workflowID, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				cronExpr, err := stringArg(args, "cronExpr")
				if err != nil {
					return nil, err
				}
				s := services.Schedule{
					TenantID:     auth.TenantID,
					WorkflowID:   workflowID,
					CronExpr:     cronExpr,
					Enabled:      true,
					InputPayload: toInputPayload(args),
				}
				return r.deps.Facade.Schedules.Create(ctx, auth, s)
			},
		},
		{
			Name:               "update_schedule",
			Description:        "Update an existing schedule's cron expression or inputs.",
			PermissionPath:     "schedules.update",
			Kind:               KindSync,
			AuditAction:        "schedule.update",
			AuditResourceType:  "schedule",
			AuditResourceIDArg: "scheduleId",
			Params: []mcp.ToolOption{
				mcp.WithString("scheduleId", mcp.Required()),
				mcp.WithString("cronExpr"),
				mcp.WithObject("inputs"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				s := services.Schedule{
					ID:           id,
					TenantID:     auth.TenantID,
					CronExpr:     optionalStringArg(args, "cronExpr"),
					InputPayload: toInputPayload(args),
				}
				return r.deps.Facade.Schedules.Update(ctx, auth, s)
			},
		},
		{
			Name:               "pause_schedule",
			Description:        "Pause a schedule.",
			PermissionPath:     "schedules.update",
			Kind:               KindSync,
			AuditAction:        "schedule.pause",
			AuditResourceType:  "schedule",
			AuditResourceIDArg: "scheduleId",
			Params:             []mcp.ToolOption{mcp.WithString("scheduleId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Schedules.Pause(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"paused": true, "scheduleId": id}, nil
			},
		},
		{
			Name:               "resume_schedule",
			Description:        "Resume a paused schedule.",
			PermissionPath:     "schedules.update",
			Kind:               KindSync,
			AuditAction:        "schedule.resume",
			AuditResourceType:  "schedule",
			AuditResourceIDArg: "scheduleId",
			Params:             []mcp.ToolOption{mcp.WithString("scheduleId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Schedules.Resume(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"resumed": true, "scheduleId": id}, nil
			},
		},
		{
			Name:               "trigger_schedule",
			Description:        "Trigger a schedule to run immediately, out of band from its cron expression.",
			PermissionPath:     "schedules.update",
			Kind:               KindSync,
			AuditAction:        "schedule.trigger",
			AuditResourceType:  "schedule",
			AuditResourceIDArg: "scheduleId",
			Params:             []mcp.ToolOption{mcp.WithString("scheduleId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				runID, err := r.deps.Facade.Schedules.Trigger(ctx, auth, id)
				if err != nil {
					return nil, err
				}
				return map[string]any{"scheduleId": id, "runId": runID}, nil
			},
		},
		{
			Name:               "delete_schedule",
			Description:        "Delete a schedule.",
			PermissionPath:     "schedules.delete",
			Kind:               KindSync,
			AuditAction:        "schedule.delete",
			AuditResourceType:  "schedule",
			AuditResourceIDArg: "scheduleId",
			Params:             []mcp.ToolOption{mcp.WithString("scheduleId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Schedules == nil {
					return nil, unavailable("schedules")
				}
				id, err := stringArg(args, "scheduleId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Schedules.Delete(ctx, auth, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": true, "scheduleId": id}, nil
			},
		},
	}
}

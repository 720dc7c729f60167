package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

func (r *Registry) runSpecs() []Spec {
	return []Spec{
		{
			Name:           "run_workflow",
			Description:    "Start a workflow run and return a pollable background task handle.",
			PermissionPath: "workflows.run",
			Kind:           KindTask,
			Params: []mcp.ToolOption{
				mcp.WithString("workflowId", mcp.Required()),
				mcp.WithObject("inputs"),
				mcp.WithNumber("ttlSeconds"),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				workflowID, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				var ttl time.Duration
				if secs := optionalIntArg(args, "ttlSeconds", 0); secs > 0 {
					ttl = time.Duration(secs) * time.Second
				}
				task, err := r.deps.Tasks.StartRun(ctx, auth, workflowID, optionalObjectArg(args, "inputs"), ttl)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					"taskId": task.ID,
					"runId":  task.RunID,
					"state":  task.State,
				}, nil
			},
		},
		{
			Name:           "list_runs",
			Description:    "List runs of a workflow.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("workflowId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				workflowID, err := stringArg(args, "workflowId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.ListRuns(ctx, auth, workflowID)
			},
		},
		{
			Name:           "list_child_runs",
			Description:    "List runs spawned as children of a run.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.ListChildRuns(ctx, auth, runID)
			},
		},
		{
			Name:           "get_run_status",
			Description:    "Resolve a run's current status, preferring a cached terminal result.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				snap, err := r.deps.Resolver.Resolve(ctx, auth, runID)
				if err != nil {
					return nil, err
				}
				out := map[string]any{
					"runId":        snap.RunID,
					"status":       snap.Status,
					"totalActions": snap.TotalActions,
					"completed":    snap.Completed,
				}
				if snap.CloseTime != nil {
					out["completedAt"] = snap.CloseTime.UTC().Format("2006-01-02T15:04:05.000Z")
				}
				return out, nil
			},
		},
		{
			Name:           "get_run_result",
			Description:    "Fetch a completed run's output payload.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.GetRunResult(ctx, auth, runID)
			},
		},
		{
			Name:           "get_run_config",
			Description:    "Fetch the resolved configuration a run was started with.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Workflows.GetRunConfig(ctx, auth, runID)
			},
		},
		{
			Name:           "get_run_trace",
			Description:    "Fetch a run's full execution trace.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Trace == nil {
					return nil, unavailable("trace")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.Trace.ListEvents(ctx, auth, runID)
			},
		},
		{
			Name:           "get_run_logs",
			Description:    "Fetch a run's captured execution log lines.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.LogStream == nil {
					return nil, unavailable("log-stream")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				return r.deps.Facade.LogStream.GetRunLogs(ctx, auth, runID)
			},
		},
		{
			Name:           "list_run_node_io",
			Description:    "List captured input/output for every node executed within a run.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.NodeIO == nil {
					return nil, unavailable("node-io")
				}
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				// Tenant-access check precedes the read.
				if err := r.deps.Facade.Workflows.EnsureRunAccess(ctx, auth, runID); err != nil {
					return nil, err
				}
				return r.deps.Facade.NodeIO.ListRunNodeIO(ctx, auth, runID)
			},
		},
		{
			Name:           "get_node_io",
			Description:    "Fetch a single node's captured input/output within a run.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params: []mcp.ToolOption{
				mcp.WithString("runId", mcp.Required()),
				mcp.WithString("nodeId", mcp.Required()),
			},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.NodeIO == nil {
					return nil, unavailable("node-io")
				}
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				nodeID, err := stringArg(args, "nodeId")
				if err != nil {
					return nil, err
				}
				// The engine's tenant-access check MUST run before the
				// node-level read, so cross-tenant reads by id are
				// rejected — this ordering is not optional.
				if err := r.deps.Facade.Workflows.EnsureRunAccess(ctx, auth, runID); err != nil {
					return nil, err
				}
				return r.deps.Facade.NodeIO.GetNodeIO(ctx, auth, runID, nodeID)
			},
		},
		{
			Name:               "cancel_run",
			Description:        "Cancel an in-flight workflow run.",
			PermissionPath:     "runs.cancel",
			Kind:               KindSync,
			AuditAction:        "run.cancel",
			AuditResourceType:  "run",
			AuditResourceIDArg: "runId",
			Params:             []mcp.ToolOption{mcp.WithString("runId", mcp.Required())},
			Handler: func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error) {
				if r.deps.Facade.Workflows == nil {
					return nil, unavailable("workflows")
				}
				runID, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Facade.Workflows.CancelRun(ctx, auth, runID); err != nil {
					return nil, err
				}
				return map[string]any{"cancelled": true, "runId": runID}, nil
			},
		},
		{
			Name:           "get_task",
			Description:    "Poll a background task's current state.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("taskId", mcp.Required())},
			Handler: func(_ context.Context, _ *gwauth.AuthContext, args map[string]any) (any, error) {
				taskID, err := stringArg(args, "taskId")
				if err != nil {
					return nil, err
				}
				return r.deps.Tasks.Get(taskID)
			},
		},
		{
			Name:           "get_task_result",
			Description:    "Fetch a background task's terminal result.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("taskId", mcp.Required())},
			Handler: func(_ context.Context, _ *gwauth.AuthContext, args map[string]any) (any, error) {
				taskID, err := stringArg(args, "taskId")
				if err != nil {
					return nil, err
				}
				return r.deps.Tasks.Result(taskID)
			},
		},
		{
			Name:           "cancel_task",
			Description:    "Cancel a background task handle. Does not cancel the underlying workflow run; use cancel_run for that.",
			PermissionPath: "runs.read",
			Kind:           KindSync,
			Params:         []mcp.ToolOption{mcp.WithString("taskId", mcp.Required())},
			Handler: func(_ context.Context, _ *gwauth.AuthContext, args map[string]any) (any, error) {
				taskID, err := stringArg(args, "taskId")
				if err != nil {
					return nil, err
				}
				if err := r.deps.Tasks.Cancel(taskID); err != nil {
					return nil, err
				}
				return map[string]any{"cancelled": true, "taskId": taskID}, nil
			},
		},
	}
}

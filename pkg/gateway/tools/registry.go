// Package tools implements the Tool Registry & Dispatcher: the
// catalog of MCP tools, schema validation, the permission gate, and the
// shaping of results/errors into MCP content envelopes.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwaudit "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/audit"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/httpapi"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/permission"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/runstatus"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/tasks"
)

// Kind is a tool's dispatch kind.
type Kind string

// The two dispatch kinds a tool can declare.
const (
	KindSync Kind = "sync"
	KindTask Kind = "task"
)

// Handler is a tool's business logic: given the caller's AuthContext and
// its validated input arguments, it returns a JSON-serializable result or
// an error. Errors are shaped into MCP error envelopes by the Registry; a
// Handler never touches mcp.CallToolResult directly.
type Handler func(ctx context.Context, auth *gwauth.AuthContext, args map[string]any) (any, error)

// Spec describes one entry in the tool catalog.
type Spec struct {
	Name           string
	Description    string
	PermissionPath string // dotted "scope.action"; empty means always allowed
	Kind           Kind
	Params         []mcp.ToolOption
	Handler        Handler

	// Audit fields: AuditAction is the dotted verb recorded on a successful
	// call (e.g. "secret.rotate"); empty means the tool is not
	// security-relevant and emits no record. AuditResourceIDArg/
	// AuditResourceNameArg name the argument keys the resource id/name are
	// read from when building the record; either may be empty.
	AuditAction          string
	AuditResourceType    string
	AuditResourceIDArg   string
	AuditResourceNameArg string
}

// Deps bundles everything tool handlers need, so NewRegistry can close over a
// single value instead of a long parameter list.
type Deps struct {
	Facade   *services.Facade
	Tasks    *tasks.Engine
	Resolver *runstatus.Resolver
	Audit    *gwaudit.Emitter
	Log      *logger.Logger
	Metrics  *httpapi.Metrics
}

// Registry hosts the tool catalog and registers it against an
// *server.MCPServer.
type Registry struct {
	deps  Deps
	specs []Spec
}

// NewRegistry builds the full tool catalog bound to deps.
func NewRegistry(deps Deps) *Registry {
	r := &Registry{deps: deps}
	r.specs = r.buildCatalog()
	return r
}

// Register attaches every tool in the catalog to mcpServer.
func (r *Registry) Register(mcpServer *server.MCPServer) {
	for _, spec := range r.specs {
		opts := append([]mcp.ToolOption{mcp.WithDescription(spec.Description)}, spec.Params...)
		tool := mcp.NewTool(spec.Name, opts...)
		mcpServer.AddTool(tool, r.wrap(spec))
	}
}

// Specs returns the built catalog, for the `validate` CLI subcommand and
// for tests.
func (r *Registry) Specs() []Spec {
	return r.specs
}

// wrap turns a Spec into an MCP tool handler: it runs the permission gate,
// invokes the Handler, and shapes the result/error into the MCP
// content envelope.
func (r *Registry) wrap(spec Spec) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		authCtx, ok := gwauth.FromContext(ctx)
		if !ok {
			return mcp.NewToolResultError("no authenticated caller for this session"), nil
		}

		if spec.PermissionPath != "" {
			path, err := permission.ParsePath(spec.PermissionPath)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if !permission.Evaluate(authCtx, path) {
				// Backing services are never called on a denial.
				if r.deps.Metrics != nil {
					r.deps.Metrics.PermissionDenialTotal.WithLabelValues(path.Scope, path.Action).Inc()
				}
				return mcp.NewToolResultError(permission.DeniedMessage(path)), nil
			}
		}

		args := req.GetArguments()

		result, err := spec.Handler(ctx, authCtx, args)
		if err != nil {
			r.recordToolCall(spec.Name, "error")
			return mcp.NewToolResultError(shapeError(err)), nil
		}

		payload, err := json.Marshal(result)
		if err != nil {
			r.recordToolCall(spec.Name, "error")
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
		}
		r.recordToolCall(spec.Name, "success")
		r.emitAudit(ctx, spec, authCtx, args)
		return mcp.NewToolResultText(string(payload)), nil
	}
}

// emitAudit records a security-relevant action once its handler has
// succeeded. A tool with no AuditAction configured is not security-relevant
// and emits nothing.
func (r *Registry) emitAudit(ctx context.Context, spec Spec, authCtx *gwauth.AuthContext, args map[string]any) {
	if spec.AuditAction == "" || r.deps.Audit == nil {
		return
	}
	rec := gwaudit.Record{
		Action:       spec.AuditAction,
		ResourceType: spec.AuditResourceType,
		Actor:        authCtx.PrincipalID,
		TenantID:     authCtx.TenantID,
	}
	if spec.AuditResourceIDArg != "" {
		rec.ResourceID = optionalStringArg(args, spec.AuditResourceIDArg)
	}
	if spec.AuditResourceNameArg != "" {
		rec.ResourceName = optionalStringArg(args, spec.AuditResourceNameArg)
	}
	r.deps.Audit.Emit(ctx, rec)
}

// recordToolCall increments the tool-calls counter, if metrics are wired.
func (r *Registry) recordToolCall(name, outcome string) {
	if r.deps.Metrics == nil {
		return
	}
	r.deps.Metrics.ToolCallsTotal.WithLabelValues(name, outcome).Inc()
}

// shapeError renders err's human-readable message for the MCP error
// envelope. Every error crosses the service boundary exactly once: the
// facade already classified it as an *apperror.Error, so shaping is just
// message extraction.
func shapeError(err error) string {
	if appErr, ok := err.(*apperror.Error); ok {
		return appErr.Message
	}
	return err.Error()
}

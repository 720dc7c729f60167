package tools

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/audit"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

func callToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func TestWrapDeniesWithoutCallingHandler(t *testing.T) {
	t.Parallel()
	called := false
	r := &Registry{}
	spec := Spec{
		Name:           "delete_secret",
		PermissionPath: "secrets.delete",
		Kind:           KindSync,
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			called = true
			return map[string]any{}, nil
		},
	}

	authCtx := &gwauth.AuthContext{
		CapabilityMatrix: gwauth.CapabilityMatrix{"secrets": {"read": true}},
	}
	ctx := gwauth.WithAuthContext(context.Background(), authCtx)

	result, err := r.wrap(spec)(ctx, callToolRequest(spec.Name, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.False(t, called, "a permission denial must short-circuit before the handler ever runs")
}

func TestWrapAllowsAndShapesResult(t *testing.T) {
	t.Parallel()
	r := &Registry{}
	spec := Spec{
		Name:           "list_secrets",
		PermissionPath: "secrets.list",
		Kind:           KindSync,
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			return []services.Secret{{ID: "s1", Name: "api-key"}}, nil
		},
	}

	authCtx := &gwauth.AuthContext{
		CapabilityMatrix: gwauth.CapabilityMatrix{"secrets": {"list": true}},
	}
	ctx := gwauth.WithAuthContext(context.Background(), authCtx)

	result, err := r.wrap(spec)(ctx, callToolRequest(spec.Name, nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.JSONEq(t, `[{"ID":"s1","TenantID":"","Name":"api-key","UpdatedAt":"0001-01-01T00:00:00Z"}]`, text.Text)
}

func TestWrapRejectsUnauthenticatedCaller(t *testing.T) {
	t.Parallel()
	r := &Registry{}
	spec := Spec{
		Name: "list_workflows",
		Kind: KindSync,
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			return map[string]any{}, nil
		},
	}

	result, err := r.wrap(spec)(context.Background(), callToolRequest(spec.Name, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestWrapEmitsAuditRecordOnSuccessfulMutation(t *testing.T) {
	t.Parallel()
	store := &fakeAuditStore{}
	r := &Registry{deps: Deps{Audit: audit.NewEmitter(store, nil)}}
	spec := Spec{
		Name:               "rotate_secret",
		PermissionPath:     "secrets.update",
		Kind:               KindSync,
		AuditAction:        "secret.rotate",
		AuditResourceType:  "secret",
		AuditResourceIDArg: "secretId",
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			return map[string]any{}, nil
		},
	}

	authCtx := &gwauth.AuthContext{
		PrincipalID:      "principal-1",
		TenantID:         "tenant-1",
		CapabilityMatrix: gwauth.CapabilityMatrix{"secrets": {"update": true}},
	}
	ctx := gwauth.WithAuthContext(context.Background(), authCtx)

	result, err := r.wrap(spec)(ctx, callToolRequest(spec.Name, map[string]any{"secretId": "s1"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	require.Eventually(t, func() bool {
		return len(store.records) == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, "secret.rotate", store.records[0].Action)
	assert.Equal(t, "s1", store.records[0].ResourceID)
	assert.Equal(t, "principal-1", store.records[0].Actor)
	assert.Equal(t, "tenant-1", store.records[0].TenantID)
}

func TestWrapEmitsNoAuditRecordOnDenial(t *testing.T) {
	t.Parallel()
	store := &fakeAuditStore{}
	r := &Registry{deps: Deps{Audit: audit.NewEmitter(store, nil)}}
	spec := Spec{
		Name:               "rotate_secret",
		PermissionPath:     "secrets.update",
		Kind:               KindSync,
		AuditAction:        "secret.rotate",
		AuditResourceIDArg: "secretId",
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			return map[string]any{}, nil
		},
	}

	authCtx := &gwauth.AuthContext{
		CapabilityMatrix: gwauth.CapabilityMatrix{"secrets": {"read": true}},
	}
	ctx := gwauth.WithAuthContext(context.Background(), authCtx)

	result, err := r.wrap(spec)(ctx, callToolRequest(spec.Name, map[string]any{"secretId": "s1"}))
	require.NoError(t, err)
	require.True(t, result.IsError)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, store.records, "a permission denial must never emit an audit record")
}

func TestWrapShapesHandlerErrorMessage(t *testing.T) {
	t.Parallel()
	r := &Registry{}
	spec := Spec{
		Name: "get_secret",
		Kind: KindSync,
		Handler: func(context.Context, *gwauth.AuthContext, map[string]any) (any, error) {
			return nil, apperror.NotFound("secret", "s1")
		},
	}

	authCtx := &gwauth.AuthContext{}
	ctx := gwauth.WithAuthContext(context.Background(), authCtx)

	result, err := r.wrap(spec)(ctx, callToolRequest(spec.Name, nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, `secret "s1" not found`, text.Text)
}

package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

type fakeRunsWorkflows struct {
	services.Workflows

	accessErr     error
	accessChecked bool
}

func (f *fakeRunsWorkflows) EnsureRunAccess(_ context.Context, _ *gwauth.AuthContext, _ string) error {
	f.accessChecked = true
	return f.accessErr
}

type fakeNodeIO struct {
	services.NodeIOService

	called bool
}

func (f *fakeNodeIO) GetNodeIO(_ context.Context, _ *gwauth.AuthContext, _, _ string) (*services.NodeIO, error) {
	f.called = true
	return &services.NodeIO{}, nil
}

func (f *fakeNodeIO) ListRunNodeIO(_ context.Context, _ *gwauth.AuthContext, _ string) ([]services.NodeIO, error) {
	f.called = true
	return nil, nil
}

func TestGetNodeIODeniesCrossTenantAccessBeforeReadingNode(t *testing.T) {
	t.Parallel()
	wf := &fakeRunsWorkflows{accessErr: apperror.Forbidden("cross-tenant access denied")}
	nodeIO := &fakeNodeIO{}
	r := &Registry{deps: Deps{Facade: &services.Facade{Workflows: wf, NodeIO: nodeIO}}}
	spec := findSpec(t, r.runSpecs(), "get_node_io")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{
		"runId":  "run-1",
		"nodeId": "node-1",
	})
	assert.Error(t, err)
	assert.True(t, wf.accessChecked)
	assert.False(t, nodeIO.called, "the node read must never happen once the access check fails")
}

func TestGetNodeIOReadsNodeAfterAccessGranted(t *testing.T) {
	t.Parallel()
	wf := &fakeRunsWorkflows{}
	nodeIO := &fakeNodeIO{}
	r := &Registry{deps: Deps{Facade: &services.Facade{Workflows: wf, NodeIO: nodeIO}}}
	spec := findSpec(t, r.runSpecs(), "get_node_io")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{
		"runId":  "run-1",
		"nodeId": "node-1",
	})
	require.NoError(t, err)
	assert.True(t, wf.accessChecked)
	assert.True(t, nodeIO.called)
}

func TestListRunNodeIODeniesCrossTenantAccessBeforeReadingNodes(t *testing.T) {
	t.Parallel()
	wf := &fakeRunsWorkflows{accessErr: apperror.Forbidden("cross-tenant access denied")}
	nodeIO := &fakeNodeIO{}
	r := &Registry{deps: Deps{Facade: &services.Facade{Workflows: wf, NodeIO: nodeIO}}}
	spec := findSpec(t, r.runSpecs(), "list_run_node_io")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{}, map[string]any{"runId": "run-1"})
	assert.Error(t, err)
	assert.False(t, nodeIO.called)
}

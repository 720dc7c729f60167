package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/audit"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

type fakeAuditStore struct {
	records []audit.Record
}

func (s *fakeAuditStore) Write(_ context.Context, rec audit.Record) error {
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeAuditStore) List(_ context.Context, tenantID string, limit int) ([]audit.Record, error) {
	var out []audit.Record
	for _, rec := range s.records {
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newAuditRegistry(store audit.Store) *Registry {
	return &Registry{deps: Deps{Audit: audit.NewEmitter(store, nil)}}
}

func TestListAuditRecordsRequiresAdminOrGrant(t *testing.T) {
	t.Parallel()
	store := &fakeAuditStore{records: []audit.Record{{Action: "secret.rotate", TenantID: "t1"}}}
	r := newAuditRegistry(store)
	spec := findSpec(t, r.auditSpecs(), "list_audit_records")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{TenantID: "t1"}, map[string]any{})
	assert.Error(t, err)
}

func TestListAuditRecordsReturnsTenantScopedRecords(t *testing.T) {
	t.Parallel()
	store := &fakeAuditStore{records: []audit.Record{
		{Action: "secret.rotate", TenantID: "t1"},
		{Action: "secret.rotate", TenantID: "t2"},
	}}
	r := newAuditRegistry(store)
	spec := findSpec(t, r.auditSpecs(), "list_audit_records")

	admin := &gwauth.AuthContext{TenantID: "t1", Roles: []gwauth.Role{gwauth.RoleAdmin}}
	result, err := spec.Handler(context.Background(), admin, map[string]any{})
	require.NoError(t, err)

	recs, ok := result.([]audit.Record)
	require.True(t, ok)
	require.Len(t, recs, 1)
	assert.Equal(t, "t1", recs[0].TenantID)
}

func TestListAuditRecordsUnavailableWithNilAudit(t *testing.T) {
	t.Parallel()
	r := &Registry{}
	spec := findSpec(t, r.auditSpecs(), "list_audit_records")

	_, err := spec.Handler(context.Background(), &gwauth.AuthContext{Roles: []gwauth.Role{gwauth.RoleAdmin}}, map[string]any{})
	assert.Error(t, err)
}

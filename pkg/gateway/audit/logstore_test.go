package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogStoreListReturnsMostRecentFirstScopedByTenant(t *testing.T) {
	t.Parallel()
	s := NewLogStore(testLogger(t))
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, Record{Action: "secret.create", TenantID: "t1", ResourceID: "a"}))
	require.NoError(t, s.Write(ctx, Record{Action: "secret.rotate", TenantID: "t2", ResourceID: "b"}))
	require.NoError(t, s.Write(ctx, Record{Action: "secret.delete", TenantID: "t1", ResourceID: "c"}))

	recs, err := s.List(ctx, "t1", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].ResourceID, "most recent record comes first")
	assert.Equal(t, "a", recs[1].ResourceID)
}

func TestLogStoreListRespectsLimit(t *testing.T) {
	t.Parallel()
	s := NewLogStore(testLogger(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write(ctx, Record{Action: "secret.create", TenantID: "t1", ResourceID: fmt.Sprintf("r%d", i)}))
	}

	recs, err := s.List(ctx, "t1", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r4", recs[0].ResourceID)
	assert.Equal(t, "r3", recs[1].ResourceID)
}

func TestLogStoreRetentionIsBounded(t *testing.T) {
	t.Parallel()
	s := NewLogStore(testLogger(t))
	ctx := context.Background()

	for i := 0; i < logStoreRetention+10; i++ {
		require.NoError(t, s.Write(ctx, Record{Action: "secret.create", TenantID: "t1", ResourceID: fmt.Sprintf("r%d", i)}))
	}

	recs, err := s.List(ctx, "t1", 0)
	require.NoError(t, err)
	assert.Len(t, recs, logStoreRetention)
	assert.Equal(t, fmt.Sprintf("r%d", logStoreRetention+9), recs[0].ResourceID)
}

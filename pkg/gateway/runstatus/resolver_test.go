package runstatus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

type fakeWorkflows struct {
	services.Workflows

	run              *services.Run
	findErr          error
	describeResult   *services.DescribeResult
	describeErr      error
	getStatusCalls   int
	cachedStatus     services.RunStatus
	cachedCloseTime  *time.Time
}

func (f *fakeWorkflows) FindRunByID(_ context.Context, _ *gwauth.AuthContext, _ string) (*services.Run, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.run, nil
}

func (f *fakeWorkflows) GetRunStatus(_ context.Context, _ *gwauth.AuthContext, _ string) (*services.DescribeResult, error) {
	f.getStatusCalls++
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return f.describeResult, nil
}

func (f *fakeWorkflows) CacheTerminalStatus(_ context.Context, _ string, status services.RunStatus, closeTime *time.Time) error {
	f.cachedStatus = status
	f.cachedCloseTime = closeTime
	return nil
}

type fakeTrace struct {
	services.Trace
	events []services.TraceEvent
}

func (f *fakeTrace) ListEvents(_ context.Context, _ *gwauth.AuthContext, _ string) ([]services.TraceEvent, error) {
	return f.events, nil
}

type fakeHumanInputs struct {
	services.HumanInputs
	pending bool
}

func (f *fakeHumanInputs) List(_ context.Context, _ *gwauth.AuthContext, _ string) ([]services.HumanInput, error) {
	if f.pending {
		return []services.HumanInput{{Resolved: false}}, nil
	}
	return nil, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console", OutputPath: "stdout"})
	require.NoError(t, err)
	return log
}

func TestResolveCachedTerminalSkipsEngine(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{run: &services.Run{ID: "run-1", Status: services.RunStatusCompleted}}
	r := NewResolver(wf, &fakeTrace{}, &fakeHumanInputs{}, NewMemoryCache(), testLogger(t))

	snap, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, services.RunStatusCompleted, snap.Status)
	assert.Equal(t, 0, wf.getStatusCalls, "a cached terminal status must never consult the engine")
}

func TestResolveCacheMissCachesNewTerminalStatus(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{
		run:            &services.Run{ID: "run-1", Status: services.RunStatusRunning},
		describeResult: &services.DescribeResult{Status: services.RunStatusCompleted},
	}
	r := NewResolver(wf, &fakeTrace{}, &fakeHumanInputs{}, NewMemoryCache(), testLogger(t))

	snap, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, services.RunStatusCompleted, snap.Status)
	assert.Equal(t, 1, wf.getStatusCalls)

	// the cache write is fire-and-forget on a detached goroutine
	require.Eventually(t, func() bool {
		return wf.cachedStatus == services.RunStatusCompleted
	}, time.Second, 5*time.Millisecond)
}

func TestResolveInfersStaleWithoutCaching(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{
		run:         &services.Run{ID: "run-1", Status: services.RunStatusRunning, TotalActions: 3},
		describeErr: apperror.NotFound("run", "run-1"),
	}
	r := NewResolver(wf, &fakeTrace{}, &fakeHumanInputs{}, NewMemoryCache(), testLogger(t))

	snap, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, services.RunStatusStale, snap.Status)
	assert.Empty(t, wf.cachedStatus, "an inferred status must never be cached")
}

func TestResolveInfersFailedNeverCached(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{
		run:         &services.Run{ID: "run-1", Status: services.RunStatusRunning, TotalActions: 2},
		describeErr: apperror.NotFound("run", "run-1"),
	}
	trace := &fakeTrace{events: []services.TraceEvent{
		{Type: services.TraceEventStarted},
		{Type: services.TraceEventFailed},
	}}
	r := NewResolver(wf, trace, &fakeHumanInputs{}, NewMemoryCache(), testLogger(t))

	snap, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, services.RunStatusFailed, snap.Status)
	assert.Empty(t, wf.cachedStatus)
}

func TestResolveRunningWithPendingHumanInputOverridesToAwaitingInput(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{
		run:            &services.Run{ID: "run-1", Status: services.RunStatusRunning},
		describeResult: &services.DescribeResult{Status: services.RunStatusRunning},
	}
	r := NewResolver(wf, &fakeTrace{}, &fakeHumanInputs{pending: true}, NewMemoryCache(), testLogger(t))

	snap, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "run-1")
	require.NoError(t, err)
	assert.Equal(t, services.RunStatusAwaitingInput, snap.Status)
	assert.Empty(t, wf.cachedStatus, "the AWAITING_INPUT override is computed, never cached")
}

func TestResolveUnknownRunIsNotFound(t *testing.T) {
	t.Parallel()
	wf := &fakeWorkflows{findErr: apperror.NotFound("run", "missing")}
	r := NewResolver(wf, &fakeTrace{}, &fakeHumanInputs{}, NewMemoryCache(), testLogger(t))

	_, err := r.Resolve(context.Background(), &gwauth.AuthContext{}, "missing")
	assert.True(t, apperror.IsNotFound(err))
}

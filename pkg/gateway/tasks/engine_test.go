package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// fakeWorkflows implements only the Workflows methods the engine calls;
// embedding the interface lets the rest panic if ever reached, which would
// indicate the engine started depending on a method it should not need.
type fakeWorkflows struct {
	services.Workflows

	runErr       error
	runID        string
	status       services.RunStatus
	getStatusErr error
	result       map[string]any
}

func (f *fakeWorkflows) Run(_ context.Context, _ *gwauth.AuthContext, _ string, _ map[string]any) (string, error) {
	if f.runErr != nil {
		return "", f.runErr
	}
	return f.runID, nil
}

func (f *fakeWorkflows) GetRunStatus(_ context.Context, _ *gwauth.AuthContext, _ string) (*services.DescribeResult, error) {
	if f.getStatusErr != nil {
		return nil, f.getStatusErr
	}
	return &services.DescribeResult{Status: f.status}, nil
}

func (f *fakeWorkflows) GetRunResult(_ context.Context, _ *gwauth.AuthContext, _ string) (map[string]any, error) {
	return f.result, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "console", OutputPath: "stdout"})
	require.NoError(t, err)
	return log
}

func waitForTerminal(t *testing.T, e *Engine, taskID string) *Task {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		task, err := e.Get(taskID)
		require.NoError(t, err)
		if task.State.Terminal() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("task never reached a terminal state")
	return nil
}

func TestStartRunMonitorsToCompletion(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)

	wf := &fakeWorkflows{runID: "run-1", status: services.RunStatusCompleted, result: map[string]any{"output": "ok"}}
	engine := NewEngine(NewMemoryStore(stop), wf, testLogger(t))

	auth := &gwauth.AuthContext{PrincipalID: "p1", TenantID: "t1"}
	task, err := engine.StartRun(context.Background(), auth, "wf-1", nil, time.Hour)
	require.NoError(t, err)

	final := waitForTerminal(t, engine, task.ID)
	assert.Equal(t, StateCompleted, final.State)
	assert.Equal(t, map[string]any{"output": "ok"}, final.Result)
}

func TestStartRunBornFailedWhenRunCannotStart(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)

	wf := &fakeWorkflows{runErr: errors.New("engine rejected the request")}
	engine := NewEngine(NewMemoryStore(stop), wf, testLogger(t))

	auth := &gwauth.AuthContext{PrincipalID: "p1", TenantID: "t1"}
	task, err := engine.StartRun(context.Background(), auth, "wf-1", nil, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, task.State)
	assert.True(t, task.State.Terminal())
}

func TestMonitorMapsCancelledRunToFailedResult(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)

	wf := &fakeWorkflows{runID: "run-1", status: services.RunStatusCancelled}
	engine := NewEngine(NewMemoryStore(stop), wf, testLogger(t))

	auth := &gwauth.AuthContext{PrincipalID: "p1", TenantID: "t1"}
	task, err := engine.StartRun(context.Background(), auth, "wf-1", nil, time.Hour)
	require.NoError(t, err)

	final := waitForTerminal(t, engine, task.ID)
	//: CANCELLED/TERMINATED/TIMED_OUT still store the task as failed.
	assert.Equal(t, StateFailed, final.State)
}

func TestResultBeforeTerminalIsRejected(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)

	wf := &fakeWorkflows{runID: "run-1", status: services.RunStatusRunning}
	engine := NewEngine(NewMemoryStore(stop), wf, testLogger(t))

	auth := &gwauth.AuthContext{PrincipalID: "p1", TenantID: "t1"}
	task, err := engine.StartRun(context.Background(), auth, "wf-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = engine.Result(task.ID)
	assert.Error(t, err)
}

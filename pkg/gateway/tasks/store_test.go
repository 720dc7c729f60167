package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreTaskResultIsMonotonicallyTerminal(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)
	s := NewMemoryStore(stop)

	task := s.Create("run-1", "tenant-1", time.Hour)
	require.NoError(t, s.StoreTaskResult(task.ID, StateCompleted, map[string]any{"ok": true}))

	// a second terminal write must be rejected — terminality is monotonic.
	err := s.StoreTaskResult(task.ID, StateFailed, map[string]any{"error": "late"})
	assert.Error(t, err)

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.State)
	assert.Equal(t, map[string]any{"ok": true}, got.Result)
}

func TestUpdateTaskStatusNoOpsAfterTerminal(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)
	s := NewMemoryStore(stop)

	task := s.Create("run-1", "tenant-1", time.Hour)
	require.NoError(t, s.StoreTaskResult(task.ID, StateCompleted, map[string]any{}))

	// a stale non-terminal update racing in after the terminal write must not
	// corrupt the task's terminal state.
	require.NoError(t, s.UpdateTaskStatus(task.ID, StateWorking, "RUNNING"))

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, got.State)
}

func TestCancelStoresTerminalResult(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)
	s := NewMemoryStore(stop)

	task := s.Create("run-1", "tenant-1", time.Hour)
	require.NoError(t, s.Cancel(task.ID))

	got, err := s.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, got.State)
	assert.True(t, got.State.Terminal())
}

func TestGetUnknownTaskIsNotFound(t *testing.T) {
	t.Parallel()
	stop := make(chan struct{})
	defer close(stop)
	s := NewMemoryStore(stop)
	_, err := s.Get("does-not-exist")
	assert.Error(t, err)
}

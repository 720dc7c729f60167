package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// DefaultTTL is the task TTL applied when a caller does not specify one.
const DefaultTTL = 12 * time.Hour

// pollInterval is the monitor loop's polling cadence.
const pollInterval = 2 * time.Second

// statusMapping is the engine-status to task-state table.
var statusMapping = map[services.RunStatus]State{
	services.RunStatusRunning:       StateWorking,
	services.RunStatusQueued:        StateWorking,
	services.RunStatusAwaitingInput: StateWorking,
	services.RunStatusCompleted:     StateCompleted,
	services.RunStatusCancelled:     StateCancelled,
	services.RunStatusTerminated:    StateCancelled,
	services.RunStatusTimedOut:      StateCancelled,
	services.RunStatusFailed:        StateFailed,
}

// terminalResultStatus maps an engine-observed terminal status to the task's
// stored result status: CANCELLED/TERMINATED/TIMED_OUT still store as failed.
func terminalResultStatus(engineStatus services.RunStatus) State {
	if engineStatus == services.RunStatusCompleted {
		return StateCompleted
	}
	return StateFailed
}

// Engine is the Background-Task Engine.
type Engine struct {
	store     Store
	workflows services.Workflows
	log       *logger.Logger
}

// NewEngine constructs an Engine backed by store, calling out to workflows
// for run lifecycle operations.
func NewEngine(store Store, workflows services.Workflows, log *logger.Logger) *Engine {
	return &Engine{store: store, workflows: workflows, log: log}
}

// StartRun implements the task-creation sequence: the caller
// (the dispatcher, after its own permission check) asks the engine to start
// workflowID; this method attempts the run start first and, on success,
// allocates the Task bound to the new run id and spawns the detached monitor
// before returning the handle. No Task exists until the run start has
// returned.
//
// If the engine-client call fails at this stage, a Task with no run id is
// allocated already failed rather than left dangling in the working state.
func (e *Engine) StartRun(ctx context.Context, auth *gwauth.AuthContext, workflowID string, inputs map[string]any, ttl time.Duration) (*Task, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	runID, err := e.workflows.Run(ctx, auth, workflowID, inputs)
	if err != nil {
		// The run never started: there is no run id to monitor, so we
		// still hand back a task (so the client has a handle to poll)
		// but it is born failed.
		t := e.store.Create("", auth.TenantID, ttl)
		_ = e.store.StoreTaskResult(t.ID, StateFailed, map[string]any{
			"error": err.Error(),
		})
		snap, _ := e.store.Get(t.ID)
		return snap, nil
	}

	t := e.store.Create(runID, auth.TenantID, ttl)
	go e.monitor(auth, t.ID, runID)
	return t, nil
}

// monitor is the single logical monitor loop per task. It runs
// detached: it never holds the tool-response goroutine open, and it must
// never panic the process on a backing-service failure.
func (e *Engine) monitor(auth *gwauth.AuthContext, taskID, runID string) {
	log := e.log.With(zap.String("task_id", taskID), zap.String("run_id", runID))
	ctx := context.Background()

	for {
		result, err := e.workflows.GetRunStatus(ctx, auth, runID)
		if err != nil {
			log.Warn("monitor: getRunStatus failed, attempting terminal failure write", zap.Error(err))
			// If a concurrent path already landed a terminal write, this
			// fails too and the error is swallowed: the monitor never
			// surfaces its own failure to anything but the log.
			_ = e.store.StoreTaskResult(taskID, StateFailed, map[string]any{
				"error": err.Error(),
			})
			return
		}

		state, ok := statusMapping[result.Status]
		if !ok {
			state = StateFailed
		}

		if !state.Terminal() {
			if err := e.store.UpdateTaskStatus(taskID, state, string(result.Status)); err != nil {
				log.Warn("monitor: updateTaskStatus failed", zap.Error(err))
			}
			time.Sleep(pollInterval)
			continue
		}

		// Terminal transition: storeTaskResult alone performs it. A
		// preceding updateTaskStatus call here would lock the task out of
		// its own terminal write.
		payload, fetchErr := e.terminalPayload(ctx, auth, runID, result.Status)
		if fetchErr != nil {
			payload = map[string]any{"error": fetchErr.Error()}
		}
		if err := e.store.StoreTaskResult(taskID, terminalResultStatus(result.Status), payload); err != nil {
			log.Warn("monitor: storeTaskResult failed", zap.Error(err))
		}
		return
	}
}

func (e *Engine) terminalPayload(ctx context.Context, auth *gwauth.AuthContext, runID string, status services.RunStatus) (map[string]any, error) {
	if status == services.RunStatusCompleted {
		return e.workflows.GetRunResult(ctx, auth, runID)
	}
	return map[string]any{"status": string(status)}, nil
}

// Get returns a task snapshot for the client-visible `get` operation.
func (e *Engine) Get(taskID string) (*Task, error) {
	return e.store.Get(taskID)
}

// Result returns a task's terminal result, or an error if it has not yet
// reached a terminal state.
func (e *Engine) Result(taskID string) (*Task, error) {
	t, err := e.store.Get(taskID)
	if err != nil {
		return nil, err
	}
	if !t.State.Terminal() {
		return nil, errTaskNotTerminal(taskID)
	}
	return t, nil
}

// Cancel marks the task cancelled. It does not cancel the underlying
// workflow run — that requires the explicit cancel_run tool.
func (e *Engine) Cancel(taskID string) error {
	return e.store.Cancel(taskID)
}

// ActiveCount returns the number of tasks not yet in a terminal state, for
// the metrics surface.
func (e *Engine) ActiveCount() int {
	return e.store.ActiveCount()
}

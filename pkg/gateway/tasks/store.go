package tasks

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
)

// Store is the Background-Task Engine's task-store contract: it must
// provide per-task atomic state transitions and reject writes to
// already-terminal tasks.
type Store interface {
	// Create allocates a new working Task bound to runID, with the given
	// TTL.
	Create(runID, tenantID string, ttl time.Duration) *Task

	// Get returns a snapshot of the task, or apperror NotFound.
	Get(taskID string) (*Task, error)

	// UpdateTaskStatus records a non-terminal status observation. It is a
	// no-op (not an error) if the task is already terminal — the monitor's
	// own control flow guarantees it never calls this after observing a
	// terminal engine status, but a defensive store must not let a racing
	// call corrupt a terminal task.
	UpdateTaskStatus(taskID string, state State, engineStatus string) error

	// StoreTaskResult performs the terminal transition: it sets State and
	// Result atomically and rejects (returns an error for) a second call
	// on an already-terminal task — terminality is monotonic.
	StoreTaskResult(taskID string, state State, result map[string]any) error

	// Cancel requests cancellation bookkeeping for a task; it does not
	// cancel the underlying workflow run (that is the explicit
	// cancel_run/runs.cancel tool's job).
	Cancel(taskID string) error

	// ActiveCount returns the number of tasks not yet in a terminal state.
	ActiveCount() int
}

// MemoryStore is an in-process Store with TTL eviction, grounded on the
// same map+mutex+background-sweep shape used elsewhere in the corpus for
// process-local registries.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryStore constructs an empty MemoryStore and starts its eviction
// sweep goroutine against stop.
func NewMemoryStore(stop <-chan struct{}) *MemoryStore {
	s := &MemoryStore{tasks: make(map[string]*Task)}
	go s.evictLoop(stop)
	return s
}

// Create implements Store.
func (s *MemoryStore) Create(runID, tenantID string, ttl time.Duration) *Task {
	now := time.Now().UTC()
	t := &Task{
		ID:        uuid.NewString(),
		RunID:     runID,
		TenantID:  tenantID,
		State:     StateWorking,
		TTL:       ttl,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
	return t
}

// Get implements Store.
func (s *MemoryStore) Get(taskID string) (*Task, error) {
	s.mu.RLock()
	t, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.NotFound("task", taskID)
	}
	snap := t.snapshot()
	return &snap, nil
}

// UpdateTaskStatus implements Store.
func (s *MemoryStore) UpdateTaskStatus(taskID string, state State, engineStatus string) error {
	s.mu.RLock()
	t, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if !ok {
		return apperror.NotFound("task", taskID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State.Terminal() {
		// A terminal write already landed; a non-terminal update arriving
		// after it is stale and must be silently dropped rather than
		// corrupting the terminal state.
		return nil
	}
	t.State = state
	t.Status = engineStatus
	return nil
}

// StoreTaskResult implements Store.
func (s *MemoryStore) StoreTaskResult(taskID string, state State, result map[string]any) error {
	s.mu.RLock()
	t, ok := s.tasks[taskID]
	s.mu.RUnlock()
	if !ok {
		return apperror.NotFound("task", taskID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.State.Terminal() {
		return apperror.Conflict("task is already in a terminal state")
	}
	t.State = state
	t.Result = result
	return nil
}

// Cancel implements Store.
func (s *MemoryStore) Cancel(taskID string) error {
	return s.StoreTaskResult(taskID, StateCancelled, map[string]any{"cancelled": true})
}

// ActiveCount returns the number of tasks not yet in a terminal state, for
// the metrics surface.
func (s *MemoryStore) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, t := range s.tasks {
		t.mu.Lock()
		terminal := t.State.Terminal()
		t.mu.Unlock()
		if !terminal {
			n++
		}
	}
	return n
}

func (s *MemoryStore) evictLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.evictExpired(time.Now().UTC())
		}
	}
}

func (s *MemoryStore) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.tasks {
		t.mu.Lock()
		expired := now.After(t.ExpiresAt)
		t.mu.Unlock()
		if expired {
			delete(s.tasks, id)
		}
	}
}

package runstatus

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// Resolver implements the cache-and-infer status algorithm for the
// status-query tool get_run_status. The Background-Task Engine's monitor
// loop does not use it: it calls services.Workflows.GetRunStatus directly,
// so the run-record cache hit, trace inference and AWAITING_INPUT override
// below do not apply to task polling.
type Resolver struct {
	workflows   services.Workflows
	trace       services.Trace
	humanInputs services.HumanInputs
	cache       Cache
	log         *logger.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(workflows services.Workflows, trace services.Trace, humanInputs services.HumanInputs, cache Cache, log *logger.Logger) *Resolver {
	return &Resolver{workflows: workflows, trace: trace, humanInputs: humanInputs, cache: cache, log: log}
}

// Resolve returns runID's current status.
func (r *Resolver) Resolve(ctx context.Context, auth *gwauth.AuthContext, runID string) (*Snapshot, error) {
	// Step 1: load the stored run record; a tenant-scoped NotFound here
	// means the caller cannot see the run at all.
	run, err := r.workflows.FindRunByID(ctx, auth, runID)
	if err != nil {
		return nil, err
	}

	var snap *Snapshot

	// Step 2: cache-hit path — a stored terminal status is authoritative
	// and the engine is never consulted.
	if run.Status.Terminal() {
		snap = &Snapshot{
			RunID:        runID,
			Status:       run.Status,
			CloseTime:    run.CloseTime,
			TotalActions: run.TotalActions,
			FirstSeen:    run.FirstSeen,
			LastUpdated:  run.LastUpdated,
		}
		snap.Completed = r.countCompleted(ctx, auth, runID)
	} else {
		snap, err = r.resolveViaEngine(ctx, auth, run)
		if err != nil {
			return nil, err
		}
	}

	// Step 4: RUNNING + a pending human input overrides to AWAITING_INPUT.
	// This is computed on every resolution and is never itself cached.
	if snap.Status == services.RunStatusRunning && r.hasPendingHumanInput(ctx, auth, runID) {
		snap.Status = services.RunStatusAwaitingInput
	}

	return snap, nil
}

// resolveViaEngine is the cache-miss path: ask the live engine, then either
// cache a newly observed terminal status (fire-and-forget) or, on a
// NotFound, infer one from the trace.
func (r *Resolver) resolveViaEngine(ctx context.Context, auth *gwauth.AuthContext, run *services.Run) (*Snapshot, error) {
	runID := run.ID
	result, err := r.workflows.GetRunStatus(ctx, auth, runID)
	if err == nil {
		snap := &Snapshot{
			RunID:        runID,
			Status:       result.Status,
			CloseTime:    result.CloseTime,
			TotalActions: run.TotalActions,
			FirstSeen:    run.FirstSeen,
			LastUpdated:  time.Now().UTC(),
		}
		if result.Status.Terminal() {
			r.cacheTerminalFireAndForget(runID, result.Status, result.CloseTime)
		}
		return snap, nil
	}

	if apperror.IsNotFound(err) {
		status := r.inferStatus(ctx, auth, run)
		// STALE (and every other inferred status) is explicitly never
		// cached — the run may later become valid.
		return &Snapshot{
			RunID:        runID,
			Status:       status,
			TotalActions: run.TotalActions,
			FirstSeen:    run.FirstSeen,
			LastUpdated:  time.Now().UTC(),
		}, nil
	}

	return nil, err
}

// cacheTerminalFireAndForget schedules the terminal-status cache write on a
// detached goroutine; its failure is logged but never affects the caller.
func (r *Resolver) cacheTerminalFireAndForget(runID string, status services.RunStatus, closeTime *time.Time) {
	if r.cache == nil {
		return
	}
	go func() {
		ctx := context.Background()
		if err := r.cache.SetTerminal(ctx, runID, status, closeTime); err != nil {
			r.log.Warn("run-status cache write failed", zap.String("run_id", runID), zap.Error(err))
		}
		// Also durably persist on the run record itself, so the
		// cache-hit path in Resolve (which reads via FindRunByID, not
		// this Cache) observes it on the next call even if the Cache
		// layer above is unavailable.
		if err := r.workflows.CacheTerminalStatus(ctx, runID, status, closeTime); err != nil {
			r.log.Warn("run record terminal-status write failed", zap.String("run_id", runID), zap.Error(err))
		}
	}()
}

// inferStatus applies the trace-event-count inference table.
func (r *Resolver) inferStatus(ctx context.Context, auth *gwauth.AuthContext, run *services.Run) services.RunStatus {
	started, completed, failed := r.countByType(ctx, auth, run.ID)
	total := run.TotalActions

	switch {
	case started == 0:
		return services.RunStatusStale
	case failed > 0:
		return services.RunStatusFailed
	case total > 0 && completed >= total:
		return services.RunStatusCompleted
	case started > 0 && completed < total:
		return services.RunStatusFailed
	default:
		return services.RunStatusFailed
	}
}

func (r *Resolver) countByType(ctx context.Context, auth *gwauth.AuthContext, runID string) (started, completed, failed int) {
	if r.trace == nil {
		return 0, 0, 0
	}
	events, err := r.trace.ListEvents(ctx, auth, runID)
	if err != nil {
		return 0, 0, 0
	}
	for _, e := range events {
		switch e.Type {
		case services.TraceEventStarted:
			started++
		case services.TraceEventCompleted:
			completed++
		case services.TraceEventFailed:
			failed++
		}
	}
	return started, completed, failed
}

func (r *Resolver) countCompleted(ctx context.Context, auth *gwauth.AuthContext, runID string) int {
	_, completed, _ := r.countByType(ctx, auth, runID)
	return completed
}

func (r *Resolver) hasPendingHumanInput(ctx context.Context, auth *gwauth.AuthContext, runID string) bool {
	if r.humanInputs == nil {
		return false
	}
	inputs, err := r.humanInputs.List(ctx, auth, runID)
	if err != nil {
		return false
	}
	for _, in := range inputs {
		if !in.Resolved {
			return true
		}
	}
	return false
}

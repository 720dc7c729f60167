// Package runstatus implements the Run-Status Resolver: a
// cache-and-infer machine that skips the workflow engine for cached
// terminal runs, caches newly observed terminal statuses fire-and-forget,
// and infers a status from trace-event counts when the engine has
// forgotten the run.
package runstatus

import (
	"time"

	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// Snapshot is a cached record of a workflow run's engine-observed status.
// Once a terminal Status is cached it is never overwritten; STALE is
// inference-only and never cached.
type Snapshot struct {
	RunID        string
	Status       services.RunStatus
	CloseTime    *time.Time
	TotalActions int
	Completed    int // progress counter: NODE_COMPLETED trace events observed
	FirstSeen    time.Time
	LastUpdated  time.Time
}

package services

import (
	"context"
	"time"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// Workflows is the backing workflow-definition and run-execution service.
type Workflows interface {
	List(ctx context.Context, auth *gwauth.AuthContext) ([]Workflow, error)
	FindByID(ctx context.Context, auth *gwauth.AuthContext, id string) (*Workflow, error)
	Create(ctx context.Context, auth *gwauth.AuthContext, w Workflow) (*Workflow, error)
	Update(ctx context.Context, auth *gwauth.AuthContext, w Workflow) (*Workflow, error)
	UpdateMetadata(ctx context.Context, auth *gwauth.AuthContext, id string, metadata map[string]any) (*Workflow, error)
	Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error

	Run(ctx context.Context, auth *gwauth.AuthContext, workflowID string, inputs map[string]any) (runID string, err error)
	ListRuns(ctx context.Context, auth *gwauth.AuthContext, workflowID string) ([]Run, error)
	ListChildRuns(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]Run, error)
	GetRunStatus(ctx context.Context, auth *gwauth.AuthContext, runID string) (*DescribeResult, error)
	GetRunResult(ctx context.Context, auth *gwauth.AuthContext, runID string) (map[string]any, error)
	GetRunConfig(ctx context.Context, auth *gwauth.AuthContext, runID string) (map[string]any, error)
	CancelRun(ctx context.Context, auth *gwauth.AuthContext, runID string) error

	// EnsureRunAccess performs the tenant-access check the caller must pass
	// before any node-I/O or trace read proceeds.
	EnsureRunAccess(ctx context.Context, auth *gwauth.AuthContext, runID string) error

	// FindRunByID returns the gateway's own stored record of a run, used by
	// the Run-Status Resolver's cache-hit path.
	FindRunByID(ctx context.Context, auth *gwauth.AuthContext, runID string) (*Run, error)
	// CacheTerminalStatus persists a newly observed terminal status for a
	// run. Callers invoke this fire-and-forget; a failure here must never
	// surface to the original caller.
	CacheTerminalStatus(ctx context.Context, runID string, status RunStatus, closeTime *time.Time) error
}

// Artifacts is the backing artifact-storage service.
type Artifacts interface {
	ListArtifacts(ctx context.Context, auth *gwauth.AuthContext) ([]Artifact, error)
	ListRunArtifacts(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]Artifact, error)
	DownloadArtifact(ctx context.Context, auth *gwauth.AuthContext, id string) (*ArtifactBlob, error)
	DeleteArtifact(ctx context.Context, auth *gwauth.AuthContext, id string) error
}

// Schedules is the backing schedule service.
type Schedules interface {
	List(ctx context.Context, auth *gwauth.AuthContext) ([]Schedule, error)
	Get(ctx context.Context, auth *gwauth.AuthContext, id string) (*Schedule, error)
	Create(ctx context.Context, auth *gwauth.AuthContext, s Schedule) (*Schedule, error)
	Update(ctx context.Context, auth *gwauth.AuthContext, s Schedule) (*Schedule, error)
	Pause(ctx context.Context, auth *gwauth.AuthContext, id string) error
	Resume(ctx context.Context, auth *gwauth.AuthContext, id string) error
	Trigger(ctx context.Context, auth *gwauth.AuthContext, id string) (runID string, err error)
	Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error
}

// Secrets is the backing secrets service. The gateway never decrypts or
// returns a secret's value; this interface only manages metadata.
type Secrets interface {
	List(ctx context.Context, auth *gwauth.AuthContext) ([]Secret, error)
	Create(ctx context.Context, auth *gwauth.AuthContext, name string, value string) (*Secret, error)
	Rotate(ctx context.Context, auth *gwauth.AuthContext, id string, value string) (*Secret, error)
	Update(ctx context.Context, auth *gwauth.AuthContext, id string, name string) (*Secret, error)
	Delete(ctx context.Context, auth *gwauth.AuthContext, id string) error
}

// HumanInputs is the backing human-input-approval service.
type HumanInputs interface {
	List(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]HumanInput, error)
	Get(ctx context.Context, auth *gwauth.AuthContext, id string) (*HumanInput, error)
	Resolve(ctx context.Context, auth *gwauth.AuthContext, id string, responseData map[string]any) (*HumanInput, error)
}

// Trace is the backing execution-trace service.
type Trace interface {
	ListEvents(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]TraceEvent, error)
}

// LogStream is the backing run-log service.
type LogStream interface {
	GetRunLogs(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]LogLine, error)
}

// NodeIOService is the backing node-input/output service.
type NodeIOService interface {
	ListRunNodeIO(ctx context.Context, auth *gwauth.AuthContext, runID string) ([]NodeIO, error)
	GetNodeIO(ctx context.Context, auth *gwauth.AuthContext, runID, nodeID string) (*NodeIO, error)
}

// Components is the backing component-catalog service. Reads are always
// allowed.
type Components interface {
	List(ctx context.Context) ([]map[string]any, error)
	Get(ctx context.Context, id string) (map[string]any, error)
}

// Facade aggregates every backing-service client the dispatcher may call.
// Every field is independently optional (nil-able); a nil field must
// surface as a structured "<service> service is not available" error
// rather than a nil-pointer dereference.
type Facade struct {
	Workflows   Workflows
	Artifacts   Artifacts
	Schedules   Schedules
	Secrets     Secrets
	HumanInputs HumanInputs
	Trace       Trace
	LogStream   LogStream
	NodeIO      NodeIOService
	Components  Components
}

// Ready reports whether the facade has at least the Workflows service wired
// — the minimum for the gateway's readiness probe to report healthy.
func (f *Facade) Ready() bool {
	return f != nil && f.Workflows != nil
}

func unavailable(service string) error {
	return apperror.ServiceUnavailable(service)
}

// Package audit records security-relevant gateway actions. Emission is
// best-effort: a failure to write an audit record must never fail
// the triggering operation.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
)

// PublicLinkActor is the actor recorded for unauthenticated public-link
// resolution, where there is no principal id to attribute the action to.
const PublicLinkActor = "public-link"

// Record is an append-only audit entry.
type Record struct {
	Action       string // dotted verb, e.g. "secret.rotate"
	ResourceType string
	ResourceID   string
	ResourceName string
	Actor        string // principal id, or PublicLinkActor
	TenantID     string
	Timestamp    time.Time
	Metadata     map[string]any
}

// Store is the backing audit store's write contract. The gateway retains no
// reference to a Record after it has been handed to Store.Write.
type Store interface {
	Write(ctx context.Context, rec Record) error
}

// Reader answers whether a principal may read audit records.
type Reader interface {
	CanRead(authCtx *gwauth.AuthContext) bool
}

// Lister is implemented by a Store that also retains records for query, in
// addition to accepting writes. The gateway's default LogStore implements
// it with a bounded in-memory retention window; a durable backend that does
// not support listing can omit it, and List reports ServiceUnavailable.
type Lister interface {
	List(ctx context.Context, tenantID string, limit int) ([]Record, error)
}

// Emitter submits Records asynchronously: the triggering call returns
// before the write completes, and a write failure is logged locally but
// never propagated.
type Emitter struct {
	store Store
	log   *logger.Logger
}

// NewEmitter constructs an Emitter backed by store.
func NewEmitter(store Store, log *logger.Logger) *Emitter {
	return &Emitter{store: store, log: log}
}

// Emit schedules rec for a detached write. It returns immediately; the
// triggering operation's result is never affected by the outcome of the
// write. A nil store silently drops the record (audit is an optional
// backing service by the facade's own nil-check convention).
func (e *Emitter) Emit(ctx context.Context, rec Record) {
	if e == nil || e.store == nil {
		return
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	// Detach from the caller's context deadline/cancellation: the write
	// must be allowed to finish even if the triggering request has
	// already returned, but it must not reuse a context whose values
	// (AuthContext, request-scoped IDs) would outlive their purpose.
	detached := context.Background()
	go func() {
		if err := e.store.Write(detached, rec); err != nil {
			e.log.Warn("audit write failed",
				zap.String("action", rec.Action),
				zap.String("resource_id", rec.ResourceID),
				zap.Error(err),
			)
		}
	}()
}

// CanRead reports whether authCtx may read audit records: ADMIN role, or an
// API key granted audit.read.
func CanRead(authCtx *gwauth.AuthContext) bool {
	return authCtx.CanReadAudit()
}

// List returns tenantID's retained audit records, most recent first, if
// the backing store supports querying and authCtx is allowed to read them.
// Unlike Emit this call is synchronous and its error is surfaced to the
// caller, since a read tool has no triggering operation to protect.
func (e *Emitter) List(ctx context.Context, authCtx *gwauth.AuthContext, tenantID string, limit int) ([]Record, error) {
	if !CanRead(authCtx) {
		return nil, apperror.Forbidden("caller may not read audit records")
	}
	if e == nil || e.store == nil {
		return nil, apperror.ServiceUnavailable("audit")
	}
	lister, ok := e.store.(Lister)
	if !ok {
		return nil, apperror.ServiceUnavailable("audit record query")
	}
	return lister.List(ctx, tenantID, limit)
}

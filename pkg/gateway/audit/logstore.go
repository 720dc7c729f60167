package audit

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
)

// logStoreRetention bounds the in-memory window LogStore keeps alongside
// its log-line output, so list_audit_records has something to query
// without requiring a durable backend.
const logStoreRetention = 1000

// LogStore is a Store that writes audit records as structured log lines and
// additionally retains the most recent logStoreRetention records in memory
// so they can be listed back. It is the gateway's default, dependency-free
// audit backend, grounded on the same logger the rest of the gateway uses —
// a real deployment can swap in a durable Store (a database, a
// log-shipping sink) without touching the Emitter.
type LogStore struct {
	log *logger.Logger

	mu     sync.Mutex
	recent []Record
}

// NewLogStore constructs a LogStore.
func NewLogStore(log *logger.Logger) *LogStore {
	return &LogStore{log: log}
}

// Write implements Store by logging rec as a structured entry and
// retaining it in the in-memory window.
func (s *LogStore) Write(_ context.Context, rec Record) error {
	metadata, err := json.Marshal(rec.Metadata)
	if err != nil {
		metadata = []byte("{}")
	}
	s.log.Info("audit",
		zap.String("action", rec.Action),
		zap.String("resource_type", rec.ResourceType),
		zap.String("resource_id", rec.ResourceID),
		zap.String("resource_name", rec.ResourceName),
		zap.String("actor", rec.Actor),
		zap.String("tenant_id", rec.TenantID),
		zap.Time("timestamp", rec.Timestamp),
		zap.ByteString("metadata", metadata),
	)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = append(s.recent, rec)
	if over := len(s.recent) - logStoreRetention; over > 0 {
		s.recent = s.recent[over:]
	}
	return nil
}

// List implements Lister: it returns tenantID's retained records, most
// recent first, capped at limit (0 means no cap).
func (s *LogStore) List(_ context.Context, tenantID string, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.recent))
	for i := len(s.recent) - 1; i >= 0; i-- {
		rec := s.recent[i]
		if rec.TenantID == tenantID {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

package runstatus

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/services"
)

// Cache is the storage port for terminal status caching. It is
// intentionally narrow: only terminal statuses are ever written, and
// a write failure must never be observed by the caller — Cache
// implementations report errors so the Resolver can log them, but the
// Resolver always treats a cache write as fire-and-forget.
type Cache interface {
	Get(ctx context.Context, runID string) (*Snapshot, bool, error)
	SetTerminal(ctx context.Context, runID string, status services.RunStatus, closeTime *time.Time) error
}

// RedisCache is the default Cache, backed by go-redis. A single-instance or
// dev deployment can instead use MemoryCache; both satisfy the same
// interface.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewRedisCache constructs a RedisCache. ttl bounds how long a terminal
// snapshot is retained — terminal statuses never change, so this is purely
// a memory-bound, not a correctness concern (a cache miss just re-resolves
// through the engine/trace-inference path).
func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, log: log}
}

type cacheEntry struct {
	Status    services.RunStatus `json:"status"`
	CloseTime *time.Time         `json:"closeTime,omitempty"`
	CachedAt  time.Time          `json:"cachedAt"`
}

func redisKey(runID string) string {
	return "studio-mcp-gateway:run-status:" + runID
}

// Ping reports whether Redis is reachable, for the readiness probe.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, runID string) (*Snapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, redisKey(runID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var entry cacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, false, err
	}
	return &Snapshot{
		RunID:       runID,
		Status:      entry.Status,
		CloseTime:   entry.CloseTime,
		LastUpdated: entry.CachedAt,
	}, true, nil
}

// SetTerminal implements Cache. The gateway continues even if this write
// fails; callers invoke it as a detached goroutine and log failures locally
// rather than propagate them. The write is a SETNX, so a run already cached
// is never overwritten.
func (c *RedisCache) SetTerminal(ctx context.Context, runID string, status services.RunStatus, closeTime *time.Time) error {
	entry := cacheEntry{Status: status, CloseTime: closeTime, CachedAt: time.Now().UTC()}
	buf, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.rdb.SetNX(ctx, redisKey(runID), buf, c.ttl).Err()
}

// MemoryCache is an in-process Cache for single-instance/dev deployments
// that have not configured Redis.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry)}
}

// Get implements Cache.
func (c *MemoryCache) Get(_ context.Context, runID string) (*Snapshot, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[runID]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	return &Snapshot{RunID: runID, Status: entry.Status, CloseTime: entry.CloseTime, LastUpdated: entry.CachedAt}, true, nil
}

// SetTerminal implements Cache.
func (c *MemoryCache) SetTerminal(_ context.Context, runID string, status services.RunStatus, closeTime *time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Monotonic terminality: a terminal status already cached is never
	// overwritten, even by a redundant write for the same run.
	if existing, ok := c.entries[runID]; ok && existing.Status.Terminal() {
		return nil
	}
	c.entries[runID] = cacheEntry{Status: status, CloseTime: closeTime, CachedAt: time.Now().UTC()}
	return nil
}

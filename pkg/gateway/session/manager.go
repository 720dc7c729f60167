package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
)

// Manager maintains the set of active MCP sessions keyed by session id.
// The session set is process-wide shared mutable state; every operation
// below is serialized through mu.
//
// Horizontal-scaling caveat: sessions are in-memory. A
// multi-instance deployment needs sticky routing by session id or an
// external session registry; Manager's exported surface does not assume a
// particular backing store, so swapping it for a distributed one would not
// change any other component.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	log      *logger.Logger
}

// NewManager constructs an empty Manager.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{sessions: make(map[string]*Session), log: log}
}

// Lookup resolves sessionID to its Session, enforcing hijack prevention: if
// a session exists but its bound principal or tenant differs from the
// caller's, Lookup fails with a Forbidden apperror and the session is never
// returned — it must not be served to the mismatched caller.
func (m *Manager) Lookup(sessionID, principalID, tenantID string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, apperror.NotFound("session", sessionID)
	}
	if s.PrincipalID != principalID || s.TenantID != tenantID {
		return nil, apperror.Forbidden("Session belongs to a different principal")
	}
	return s, nil
}

// Create generates an opaque session id, registers a new Session bound to
// principalID/tenantID, and returns it. The caller (the Transport Adapter)
// is responsible for returning the id to the client on the initialize
// response.
func (m *Manager) Create(principalID, tenantID string, transport TransportHandle) *Session {
	s := &Session{
		ID:          uuid.NewString(),
		PrincipalID: principalID,
		TenantID:    tenantID,
		Transport:   transport,
		CreatedAt:   time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Bind registers a session under an externally-assigned id — used by the
// Transport Adapter when the underlying MCP server library mints the
// session id itself on the initialize handshake, so the wire id and the
// Manager's id must be the same value.
func (m *Manager) Bind(sessionID, principalID, tenantID string, transport TransportHandle) *Session {
	s := &Session{
		ID:          sessionID,
		PrincipalID: principalID,
		TenantID:    tenantID,
		Transport:   transport,
		CreatedAt:   time.Now().UTC(),
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Destroy removes sessionID and closes its transport handle. It is
// idempotent: destroying an already-absent session is not an error.
func (m *Manager) Destroy(sessionID string) {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok || s.Transport == nil {
		return
	}
	if err := s.Transport.Close(); err != nil {
		m.log.Warn("error closing session transport", zap.String("session_id", sessionID), zap.Error(err))
	}
}

// DestroyAll destroys every active session, closing their transport
// handles. Used on graceful shutdown.
func (m *Manager) DestroyAll() int {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.Destroy(id)
	}
	return len(ids)
}

// Count returns the number of active sessions, for the metrics surface.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Package session implements the Session Manager: the set of active
// MCP sessions keyed by session id, with hijack-prevention lookup and
// create/destroy lifecycle operations.
package session

import (
	"time"
)

// TransportHandle owns the streaming connection backing a Session. The
// Session Manager never inspects it beyond closing it on destroy; the
// Transport Adapter is the only component that reads/writes through it.
type TransportHandle interface {
	Close() error
}

// Session is bound to one MCP client for its lifetime. PrincipalID and
// TenantID are immutable for the life of the session — there is no setter
// for either field below.
type Session struct {
	ID          string
	PrincipalID string
	TenantID    string
	Transport   TransportHandle
	CreatedAt   time.Time
}

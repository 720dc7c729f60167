// Package transport implements the Transport Adapter: Streamable
// HTTP framing (POST/GET/DELETE multiplexed on one endpoint), request
// classification, and the session hijack-prevention check that must run
// before any message reaches the Tool Registry & Dispatcher.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
	gwauth "github.com/shipsecai/studio-mcp-gateway/pkg/gateway/auth"
	"github.com/shipsecai/studio-mcp-gateway/pkg/gateway/session"
)

// Adapter wraps mcp-go's built-in Streamable HTTP transport with the
// gateway's own request classification and identity-binding check. The
// library owns message framing and session-id generation; the Adapter owns
// who is allowed to use a given session id.
type Adapter struct {
	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
	sessions   *session.Manager
	log        *logger.Logger
}

// NewAdapter builds an Adapter over mcpServer, whose tools have already
// been registered by the Tool Registry.
func NewAdapter(mcpServer *server.MCPServer, sessions *session.Manager, log *logger.Logger) *Adapter {
	a := &Adapter{mcpServer: mcpServer, sessions: sessions, log: log}
	a.streamable = server.NewStreamableHTTPServer(
		mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(func(ctx context.Context, _ *http.Request) context.Context {
			// AuthContext is already attached to the request context by
			// the auth middleware that runs ahead of this handler; the
			// library's context func just needs to let it through.
			return ctx
		}),
	)
	return a
}

// Shutdown drains the underlying Streamable HTTP transport.
func (a *Adapter) Shutdown(ctx context.Context) error {
	return a.streamable.Shutdown(ctx)
}

// transportHandle satisfies session.TransportHandle. The Streamable HTTP
// transport does not expose a per-session handle to close out of band —
// termination is driven entirely by DELETE or by a GET stream's ServeHTTP
// call returning — so Close is a no-op kept only to satisfy the interface.
type transportHandle struct{}

func (transportHandle) Close() error { return nil }

// ServeHTTP classifies the request and enforces hijack prevention
// before delegating to the wrapped Streamable HTTP transport.
func (a *Adapter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	authCtx, ok := gwauth.FromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("missing authenticated caller"))
		return
	}

	sessionID := r.Header.Get(SessionIDHeader)

	switch r.Method {
	case http.MethodPost:
		if sessionID == "" {
			a.handleInitialize(w, r, authCtx)
			return
		}
		if _, err := a.sessions.Lookup(sessionID, authCtx.PrincipalID, authCtx.TenantID); err != nil {
			writeError(w, err)
			return
		}
		a.streamable.ServeHTTP(w, r)

	case http.MethodGet:
		if sessionID == "" {
			writeError(w, apperror.BadRequest("missing session id"))
			return
		}
		if _, err := a.sessions.Lookup(sessionID, authCtx.PrincipalID, authCtx.TenantID); err != nil {
			writeError(w, err)
			return
		}
		// The GET stream blocks for the connection's lifetime; once
		// ServeHTTP returns, the client disconnected or the stream was
		// closed server-side, so the session is torn down immediately.
		a.streamable.ServeHTTP(w, r)
		a.sessions.Destroy(sessionID)

	case http.MethodDelete:
		if sessionID == "" {
			writeError(w, apperror.BadRequest("missing session id"))
			return
		}
		if _, err := a.sessions.Lookup(sessionID, authCtx.PrincipalID, authCtx.TenantID); err != nil {
			writeError(w, err)
			return
		}
		a.streamable.ServeHTTP(w, r)
		a.sessions.Destroy(sessionID)

	default:
		writeError(w, apperror.BadRequest("unsupported method "+r.Method))
	}
}

// handleInitialize classifies a session-id-less POST as an initialize
// request, delegates it to the library, and binds whatever session
// id the library minted to the caller's principal/tenant so later requests
// are subject to the hijack check above.
func (a *Adapter) handleInitialize(w http.ResponseWriter, r *http.Request, authCtx *gwauth.AuthContext) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, apperror.BadRequest("failed to read request body"))
		return
	}
	_ = r.Body.Close()

	if !isInitializeBody(body) {
		writeError(w, apperror.BadRequest("missing session id and missing initialize body"))
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	snoop := &sessionIDSnoop{ResponseWriter: w}
	a.streamable.ServeHTTP(snoop, r)

	if snoop.sessionID != "" {
		a.sessions.Bind(snoop.sessionID, authCtx.PrincipalID, authCtx.TenantID, transportHandle{})
		a.log.Info("session created",
			zap.String("session_id", snoop.sessionID),
			zap.String("principal_id", authCtx.PrincipalID),
			zap.String("tenant_id", authCtx.TenantID),
		)
	}
}

// rpcEnvelope extracts just enough of a JSON-RPC message to classify it.
type rpcEnvelope struct {
	Method string `json:"method"`
}

// isInitializeBody reports whether body is (or contains, in a batch array)
// an MCP initialize request.
func isInitializeBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '[' {
		var batch []rpcEnvelope
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return false
		}
		for _, msg := range batch {
			if msg.Method == "initialize" {
				return true
			}
		}
		return false
	}
	var msg rpcEnvelope
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return false
	}
	return msg.Method == "initialize"
}

// sessionIDSnoop records the Mcp-Session-Id header the wrapped transport
// sets on its response, without altering anything written through it —
// including SSE flushes, which the streaming GET path depends on.
type sessionIDSnoop struct {
	http.ResponseWriter
	sessionID string
}

func (s *sessionIDSnoop) WriteHeader(status int) {
	s.capture()
	s.ResponseWriter.WriteHeader(status)
}

func (s *sessionIDSnoop) Write(b []byte) (int, error) {
	s.capture()
	return s.ResponseWriter.Write(b)
}

func (s *sessionIDSnoop) capture() {
	if s.sessionID == "" {
		s.sessionID = s.Header().Get(SessionIDHeader)
	}
}

func (s *sessionIDSnoop) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// writeError renders err as the HTTP-layer JSON error envelope: a
// single-key `{"error": "..."}` body and the status from the error
// taxonomy.
func writeError(w http.ResponseWriter, err error) {
	message := err.Error()
	if appErr, ok := err.(*apperror.Error); ok {
		message = appErr.Message
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

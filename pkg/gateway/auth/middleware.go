package auth

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/shipsecai/studio-mcp-gateway/internal/apperror"
	"github.com/shipsecai/studio-mcp-gateway/internal/logger"
)

// BearerPrefix is the standard Authorization header scheme this gateway
// accepts. Keys themselves are additionally expected to carry their own
// recognizable prefix (e.g. "sk_live_"), but that is the issuer's concern,
// not this middleware's.
const BearerPrefix = "Bearer "

// Resolver exchanges a caller's opaque bearer credential for an
// AuthContext. The IdP that issues and validates API keys lives outside the
// gateway; this interface is the gateway's
// only contract with it.
type Resolver interface {
	// Resolve returns the AuthContext for the given raw bearer credential
	// (with the "Bearer " scheme already stripped). It must return an
	// *apperror.Error with Code CodeUnauthorized for an invalid or expired
	// credential.
	Resolve(ctx context.Context, credential string) (*AuthContext, error)
}

// Middleware builds an http.Handler middleware that authenticates every
// request via resolver and attaches the resulting AuthContext to the
// request context. A missing or malformed Authorization header
// short-circuits with 401; a resolver failure short-circuits with the
// status of the error the resolver returned (401 for CodeUnauthorized).
// Neither reaches the Session Manager or Tool Registry.
func Middleware(resolver Resolver, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header required")
				return
			}
			if !strings.HasPrefix(header, BearerPrefix) {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header must use the Bearer scheme")
				return
			}
			credential := strings.TrimPrefix(header, BearerPrefix)
			if credential == "" {
				writeAuthError(w, http.StatusUnauthorized, "Authorization header carries an empty credential")
				return
			}

			authCtx, err := resolver.Resolve(r.Context(), credential)
			if err != nil {
				log.WithContext(r.Context()).Warn("credential resolution failed", zap.Error(err))
				writeAuthError(w, httpStatusForAuth(err), "invalid or expired credential")
				return
			}

			ctx := WithAuthContext(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}

// httpStatusForAuth maps an authentication/resolution error to the HTTP
// status the transport adapter should return. A resolver is contractually
// allowed to return any *apperror.Error, not just CodeUnauthorized (e.g. a
// downstream IdP outage surfaces as ServiceUnavailable), so the response
// status must follow the error's own classification rather than assume 401.
func httpStatusForAuth(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return apperror.HTTPStatus(err)
}

package auth

import "context"

// authContextKey is an unexported type so no other package can collide with
// this context key, and so the MCP client cannot smuggle an AuthContext in
// through any value an ordinary string key could name.
type authContextKey struct{}

// WithAuthContext stores an AuthContext in ctx. If a is nil the original
// context is returned unchanged.
func WithAuthContext(ctx context.Context, a *AuthContext) context.Context {
	if a == nil {
		return ctx
	}
	return context.WithValue(ctx, authContextKey{}, a)
}

// FromContext retrieves the AuthContext stored in ctx, if any.
func FromContext(ctx context.Context) (*AuthContext, bool) {
	a, ok := ctx.Value(authContextKey{}).(*AuthContext)
	return a, ok
}

// MustFromContext retrieves the AuthContext stored in ctx, panicking if
// absent. Only safe to call from code paths downstream of the
// authentication middleware, where an AuthContext is guaranteed to have
// been attached.
func MustFromContext(ctx context.Context) *AuthContext {
	a, ok := FromContext(ctx)
	if !ok {
		panic("auth: no AuthContext in context")
	}
	return a
}

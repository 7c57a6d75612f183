package auth

import "context"

var identityCtxKey = &contextKey{"identity"}
var sessionCtxKey = &contextKey{"session"}

type contextKey struct {
	name string
}

// WithIdentityContext sets the authenticated Identity in the given context
func WithIdentityContext(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext finds the authenticated Identity in the context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(Identity)
	return raw, ok
}

// WithSessionContext sets the verified session payload in the given context
func WithSessionContext(ctx context.Context, session *SessionToken) context.Context {
	return context.WithValue(ctx, sessionCtxKey, session)
}

// SessionFromContext finds the verified session payload in the context.
func SessionFromContext(ctx context.Context) (*SessionToken, bool) {
	raw, ok := ctx.Value(sessionCtxKey).(*SessionToken)
	return raw, ok
}

package token

import "context"

type identityContextKey struct{}

// WithIdentity attaches the authenticated identity to ctx. The
// authentication gate sets it once per request; handlers read it back
// with IdentityFromContext instead of any process-global state.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext returns the request identity, if one was established.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*Identity)
	return id, ok
}

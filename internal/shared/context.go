package shared

import "context"

// Identity describes the authenticated user attached to a request. All
// repository queries are scoped by UserID for row ownership.
type Identity struct {
	UserID int64
	Email  string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. The zero Identity
// (UserID 0) means the request was not authenticated.
func IdentityFromContext(ctx context.Context) Identity {
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}

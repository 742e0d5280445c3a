package core

import "context"

type contextKey string

const ctxKeyOwner contextKey = "owner_id"

// ContextWithOwner stores the authenticated owner id.
func ContextWithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ctxKeyOwner, ownerID)
}

// OwnerFromContext returns the owner id stored by ContextWithOwner.
func OwnerFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyOwner).(string)
	return v, ok && v != ""
}

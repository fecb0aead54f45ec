package middleware

import "context"

type contextKey struct{ name string }

// Single key holding the authenticated actor so the two fields travel
// together through the request context.
var ctxActor = &contextKey{"actor"}

type actor struct {
	userID string
	role   string
}

func actorFromContext(ctx context.Context) actor {
	if ctx == nil {
		return actor{}
	}
	if a, ok := ctx.Value(ctxActor).(actor); ok {
		return a
	}
	return actor{}
}

func UserIDFromContext(ctx context.Context) string {
	return actorFromContext(ctx).userID
}

func RoleFromContext(ctx context.Context) string {
	return actorFromContext(ctx).role
}

// WithUserID injects the user identifier into the context, preserving any
// role already present.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	a := actorFromContext(ctx)
	a.userID = userID
	return context.WithValue(ctx, ctxActor, a)
}

// WithRole injects the actor role into the context, preserving any user
// identifier already present.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	a := actorFromContext(ctx)
	a.role = role
	return context.WithValue(ctx, ctxActor, a)
}

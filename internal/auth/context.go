package auth

import (
	"context"
	"strings"
)

type contextKey string

const actorKey contextKey = "actor"

// ContextWithActor returns a new context that carries the employee id of the
// caller. Blank ids leave the context unchanged.
func ContextWithActor(ctx context.Context, employeeID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey, employeeID)
}

// ActorFromContext retrieves the calling employee id from the context, if any.
func ActorFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(actorKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

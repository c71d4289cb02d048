package middleware

import (
	"context"

	"github.com/angelmondragon/roadtrack-backend/internal/identity"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor stores the authenticated user on the context.
func WithActor(ctx context.Context, user identity.User) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, user)
}

// ActorFromContext returns the authenticated user seeded by Auth.
func ActorFromContext(ctx context.Context) (identity.User, bool) {
	if ctx == nil {
		return identity.User{}, false
	}
	u, ok := ctx.Value(ctxActor).(identity.User)
	return u, ok
}

func UserIDFromContext(ctx context.Context) string {
	u, _ := ActorFromContext(ctx)
	return u.ID
}

func RoleFromContext(ctx context.Context) string {
	u, _ := ActorFromContext(ctx)
	return string(u.Role)
}

package audit

import (
	"context"

	"github.com/philipcowcer-eng/LoadBalance/pkg/models"
)

// SystemActor is recorded when no authenticated user is attached.
const SystemActor = "system"

// Actor identifies who performed a mutation.
type Actor struct {
	UserID   string
	Username string
	Role     models.UserRole
	IP       string
}

type ctxKey string

const actorKey ctxKey = "audit_actor"

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the attached actor. ok is false for anonymous
// requests; the returned Actor then carries only the client IP, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey).(Actor)
	return a, ok && a.UserID != ""
}

// WithClientIP attaches the client address without authenticating anyone.
func WithClientIP(ctx context.Context, ip string) context.Context {
	a, _ := ctx.Value(actorKey).(Actor)
	a.IP = ip
	return context.WithValue(ctx, actorKey, a)
}

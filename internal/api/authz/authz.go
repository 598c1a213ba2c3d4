package authz

import (
	"context"
	"errors"

	"github.com/ymadz/rallio-sub004/internal/queue"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type actorContextKey struct{}

// ValidRole reports whether role is one the engine understands.
func ValidRole(role string) bool {
	switch role {
	case queue.RolePlayer, queue.RoleQueueMaster, queue.RoleCourtAdmin:
		return true
	}
	return false
}

func ContextWithActor(ctx context.Context, actor queue.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext retrieves the authenticated actor stored in ctx.
// The second return is false when no identity middleware ran.
func ActorFromContext(ctx context.Context) (queue.Actor, bool) {
	if ctx == nil {
		return queue.Actor{}, false
	}
	actor, ok := ctx.Value(actorContextKey{}).(queue.Actor)
	if !ok || actor.UserID == "" {
		return queue.Actor{}, false
	}
	return actor, true
}

// RequireActor returns the caller's identity or ErrUnauthenticated.
func RequireActor(ctx context.Context) (queue.Actor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		return queue.Actor{}, ErrUnauthenticated
	}
	return actor, nil
}

// RequireRole returns the actor only when it carries the given role.
func RequireRole(ctx context.Context, role string) (queue.Actor, error) {
	actor, err := RequireActor(ctx)
	if err != nil {
		return queue.Actor{}, err
	}
	if actor.Role != role {
		return queue.Actor{}, ErrForbidden
	}
	return actor, nil
}

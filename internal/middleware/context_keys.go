package middleware

import (
	"context"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// actorCtxKey is the key used to store the authenticated actor in the request context.
const actorCtxKey = contextKey("actor")

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorCtxKey, actor)
}

// GetActorFromCtx retrieves the authenticated actor from a standard context.
func GetActorFromCtx(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorCtxKey).(domain.Actor)
	return actor, ok
}

// GetActorFromContext retrieves the authenticated actor from the Gin request.
// It returns the actor and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (domain.Actor, bool) {
	return GetActorFromCtx(c.Request.Context())
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin request.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	actor, ok := GetActorFromContext(c)
	if !ok || actor.UserID == "" {
		return "", false
	}
	return actor.UserID, true
}

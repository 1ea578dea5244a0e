package middleware

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// ActorIDKey is the context key for the opaque id of whoever issued the request.
const ActorIDKey contextKey = "actor_id"

// ActorHeader carries the actor id. The ledger does not authenticate it.
const ActorHeader = "X-Actor-ID"

// AnonymousActor is recorded when a request carries no actor id.
const AnonymousActor = "anonymous"

// GetActorID extracts the actor id from the context.
// Returns AnonymousActor if not found.
func GetActorID(ctx context.Context) string {
	if id, ok := ctx.Value(ActorIDKey).(string); ok && id != "" {
		return id
	}
	return AnonymousActor
}

// WithActorID returns a copy of ctx carrying id.
func WithActorID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ActorIDKey, id)
}

// Actor copies the X-Actor-ID header into the request context.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := strings.TrimSpace(r.Header.Get(ActorHeader)); id != "" {
			r = r.WithContext(WithActorID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

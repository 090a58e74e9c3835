package middleware

import (
	"net/http"

	"github.com/rpattn/leadcrm/internal/auth"
)

// ActorHeader names the calling employee. The admin console sets it; there
// is no authentication behind it.
const ActorHeader = "X-Employee-ID"

// ActorMiddleware copies the caller's employee id into the request context.
func ActorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := auth.ContextWithActor(r.Context(), r.Header.Get(ActorHeader))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

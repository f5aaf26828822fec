package middleware

import (
	"context"
	"net/http"

	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
	"github.com/mitsunagakazunari0515-glitch/authbridge/session"
)

type sessionContextKey struct{}

// SessionFromContext returns the session state a guard injected for the
// current request.
func SessionFromContext(ctx context.Context) (session.State, bool) {
	state, ok := ctx.Value(sessionContextKey{}).(session.State)
	return state, ok
}

// Guard gates the wrapped handler on the controller's committed session
// state. requiredRole narrows the gate to one role; [authbridge.RoleNone]
// admits any authenticated session. A session still loading reads as
// unauthenticated: the commit has not happened yet.
func Guard(controller *authbridge.Controller, requiredRole authbridge.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if controller == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			state := controller.State()
			if !state.IsAuthenticated || state.IsLoading {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if requiredRole != authbridge.RoleNone && state.Role != requiredRole.String() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey{}, state)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

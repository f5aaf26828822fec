package middleware

import (
	"net/http"

	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
)

// RequireSession returns middleware that admits any committed session,
// regardless of role.
func RequireSession(controller *authbridge.Controller) func(http.Handler) http.Handler {
	return Guard(controller, authbridge.RoleNone)
}

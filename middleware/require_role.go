package middleware

import (
	"net/http"

	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
)

// RequireAdmin returns middleware that admits only committed admin sessions.
func RequireAdmin(controller *authbridge.Controller) func(http.Handler) http.Handler {
	return Guard(controller, authbridge.RoleAdmin)
}

// RequireEmployee returns middleware that admits only committed employee
// sessions.
func RequireEmployee(controller *authbridge.Controller) func(http.Handler) http.Handler {
	return Guard(controller, authbridge.RoleEmployee)
}

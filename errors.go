package authbridge

import "errors"

var (
	// ErrNotAuthenticated is an exported constant or variable used by the session controller.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is an exported constant or variable used by the session controller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenUnavailable is an exported constant or variable used by the session controller.
	ErrTokenUnavailable = errors.New("token pair unavailable")
	// ErrAuthorizationRejected is an exported constant or variable used by the session controller.
	ErrAuthorizationRejected = errors.New("authorization rejected: profile inactive")
	// ErrPermissionMismatch is an exported constant or variable used by the session controller.
	ErrPermissionMismatch = errors.New("resolved role does not match intended role")
	// ErrProviderUnavailable is an exported constant or variable used by the session controller.
	ErrProviderUnavailable = errors.New("authorization provider unavailable")
	// ErrAlreadySignedIn is an exported constant or variable used by the session controller.
	ErrAlreadySignedIn = errors.New("a session is already signed in")
	// ErrSignOutIncomplete is an exported constant or variable used by the session controller.
	ErrSignOutIncomplete = errors.New("provider sign-out incomplete after retries")
	// ErrIntentUnavailable is an exported constant or variable used by the session controller.
	ErrIntentUnavailable = errors.New("login intent could not be persisted to any backend")
	// ErrRoleInvalid is an exported constant or variable used by the session controller.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrControllerNotReady is an exported constant or variable used by the session controller.
	ErrControllerNotReady = errors.New("controller not initialized")
)

package identity

import (
	"context"
	"errors"
	"time"

	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

var (
	// ErrNotAuthenticated is an exported constant or variable used by the session controller.
	ErrNotAuthenticated = errors.New("identity: no authenticated user")
	// ErrAlreadySignedIn is an exported constant or variable used by the session controller.
	ErrAlreadySignedIn = errors.New("identity: a user is already signed in")
	// ErrInvalidCredentials is an exported constant or variable used by the session controller.
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
)

// SignInResult defines a public type used by authbridge APIs.
//
// SignInResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignInResult struct {
	IsSignedIn bool
}

// User defines a public type used by authbridge APIs.
//
// User instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type User struct {
	UserID   string
	Username string
}

// Session is the provider-side view of the current session. Tokens is nil
// until the backend has materialized the pair; the poller absorbs that gap.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Session struct {
	Tokens *token.Pair
}

// EventKind defines a public type used by authbridge APIs.
//
// EventKind instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventKind string

const (
	// KindSignedIn is an exported constant or variable used by the session controller.
	KindSignedIn EventKind = "signedIn"
	// KindSignedOut is an exported constant or variable used by the session controller.
	KindSignedOut EventKind = "signedOut"
	// KindTokenRefresh is an exported constant or variable used by the session controller.
	KindTokenRefresh EventKind = "tokenRefresh"
	// KindTokenRefreshFailure is an exported constant or variable used by the session controller.
	KindTokenRefreshFailure EventKind = "tokenRefresh_failure"
)

// Event is one entry of the provider's asynchronous stream.
//
// Event instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Event struct {
	Kind EventKind
	At   time.Time
}

// Provider is the external identity service: password and federated sign-in,
// token issuance, and the account lifecycle the hosted UI exposes. The
// controller consumes it; this module never implements the real thing.
//
// Implementations must return [ErrNotAuthenticated] from CurrentUser and
// FetchSession when nobody is signed in, [ErrAlreadySignedIn] from SignIn
// and SignInWithRedirect when a session already exists, and
// [ErrInvalidCredentials] from SignIn on a bad username/password pair.
type Provider interface {
	// SignIn authenticates with a username and password.
	SignIn(ctx context.Context, username, password string) (SignInResult, error)

	// SignInWithRedirect starts federated sign-in with the named upstream
	// provider. In a browser this navigates away; a non-nil return means
	// the departure itself failed.
	SignInWithRedirect(ctx context.Context, providerName string) error

	// SignOut tears down the provider-side session.
	SignOut(ctx context.Context) error

	// CurrentUser returns the signed-in identity or ErrNotAuthenticated.
	CurrentUser(ctx context.Context) (User, error)

	// FetchSession returns the current session. Tokens may be nil while
	// the backend is still materializing them after federated sign-in.
	FetchSession(ctx context.Context) (Session, error)

	// FetchUserAttributes returns the provider-side attribute map for the
	// signed-in user.
	FetchUserAttributes(ctx context.Context) (map[string]string, error)

	// ResetPassword starts the password reset challenge for username.
	ResetPassword(ctx context.Context, username string) error

	// ConfirmResetPassword completes a reset with the delivered code.
	ConfirmResetPassword(ctx context.Context, username, code, newPassword string) error

	// SignUp registers a new account pending confirmation.
	SignUp(ctx context.Context, username, password string) error

	// ConfirmSignUp confirms a registration with the delivered code.
	ConfirmSignUp(ctx context.Context, username, code string) error

	// Events is the asynchronous stream of provider-side transitions. The
	// channel is closed when the provider shuts down.
	Events() <-chan Event
}

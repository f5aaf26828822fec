// Package token carries the opaque ID/access token pair issued by the
// identity provider, the bounded poller that waits for the pair to
// materialize after sign-in, and best-effort claim extraction for the
// display-name fallback.
//
// # Architecture boundaries
//
// Tokens are opaque: nothing here verifies a signature or trusts a claim
// for an authorization decision. The authorization resolver is the only
// component that validates tokens, server-side.
package token

// Pair is the ID token and access token required to call protected backend
// APIs. Only presence is meaningful to the controller; content is opaque.
//
// Pair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Pair struct {
	IDToken     string
	AccessToken string
}

// Complete reports whether both tokens of the pair are present.
//
// Complete may return an error when input validation, dependency calls, or security checks fail.
// Complete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p Pair) Complete() bool {
	return p.IDToken != "" && p.AccessToken != ""
}

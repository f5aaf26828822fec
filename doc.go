// Package authbridge establishes, restores, and tears down a user's
// authenticated session against a federated identity provider, reconciling a
// business role and profile from a separate authorization service — and
// surviving the full-navigation redirect of federated sign-in, across which
// ordinary in-memory state is destroyed.
//
// The package is designed for concurrent host applications: Controller
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build], and every trigger (explicit login, mount-time
// restore, provider event) is serialized through one single-flight queue.
//
// # Architecture boundaries
//
// authbridge is the public surface. It exposes [Controller], [Builder],
// [Config], and value types (MetricsSnapshot, Navigation, etc.). Persistence
// fan-out lives in intent/ and storage/, the provider and resolver contracts
// in identity/ and authz/, and the session state store in session/.
//
// # What this package must NOT do
//
//   - Implement the identity provider or the authorization endpoint; both
//     are external collaborators consumed through their interfaces.
//   - Trust any single storage backend: intent reads always follow the
//     fixed precedence order.
//   - Set IsAuthenticated anywhere but the commit path.
package authbridge

// Package session owns the single in-memory source of truth the host
// application reads: authenticated or not, resolved role, user identity,
// display name, and the loading flag.
//
// # State discipline
//
// IsAuthenticated is set by exactly one operation, [Store.Commit]. Every
// failure path funnels through [Store.Reset], which is idempotent and also
// drops the replicated profile cache, so no rejection can leave a
// half-authenticated state behind.
//
// # Architecture boundaries
//
// The store knows nothing about the identity provider or the resolver. The
// profile cache is written through the [Cache] interface the controller
// wires to the intent reconciler; the version-tagged codec in cache.go keeps
// stale blobs from older builds out.
package session

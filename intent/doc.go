// Package intent replicates the small set of "login intent" keys — the role
// the user selected before the attempt, the redirect-in-progress flag, and
// the cached authorization profile — across every configured storage backend,
// and reads them back deterministically.
//
// # Why replication
//
// Federated sign-in departs to a third-party origin and returns via full
// navigation. Any single medium may be wiped in between (tab scoping, cookie
// policy, a fresh process), so writes fan out best-effort to all backends and
// reads apply one fixed precedence order instead of trusting any single copy.
//
// # Architecture boundaries
//
// This package owns key naming, fan-out, and precedence. It does NOT decide
// when intent is created or consumed — that is the controller's flow logic —
// and it never interprets the provider callback beyond the query values it
// is handed.
package intent

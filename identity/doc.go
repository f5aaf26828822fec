// Package identity declares the contract of the external identity provider:
// password sign-in, federated redirect sign-in, sign-out, session and
// attribute queries, account lifecycle calls, and the asynchronous event
// stream (signedIn, signedOut, tokenRefresh, tokenRefresh_failure).
//
// # Architecture boundaries
//
// The provider is an external collaborator. This package defines the
// interface, the sentinel errors the controller matches on, and [Hub] — a
// non-blocking fan-out helper real adapters can embed to satisfy Events().
// No production provider is implemented here; tests and the scenario runner
// supply fakes.
package identity

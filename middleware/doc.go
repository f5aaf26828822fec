// Package middleware exposes HTTP middleware adapters that gate handlers on
// the controller's committed session state.
//
// # Guards
//
//   - [Guard] — gates on an arbitrary required role.
//   - [RequireSession] — any committed session.
//   - [RequireAdmin], [RequireEmployee] — role-specific gates.
//
// Each guard reads Controller.State and injects the session snapshot into the
// request context for handlers to consume via [SessionFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into controller state reads. It does
// NOT implement authentication logic itself — commit and rollback decisions
// live in the controller.
//
// # What this package must NOT do
//
//   - Call the identity provider or the authorization resolver.
//   - Trigger logins, restores, or logouts.
//   - Make authorization decisions beyond pass/reject on the committed state.
package middleware

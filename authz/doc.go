// Package authz is the HTTP client for the external authorization resolver:
// the endpoint that maps a validated token pair to a business role and
// employee profile, plus the refresh variant invoked after token rotation.
//
// # Architecture boundaries
//
// This package speaks the wire shape only — bearer token out, profile JSON
// in, typed [Error] for rejections. Mapping outcomes to the controller's
// taxonomy (commit, rollback, mismatch, provider error) happens in the root
// package; translating [Error.Code] to user-facing text is a separate
// collaborator outside this module.
package authz

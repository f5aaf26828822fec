// Package storage defines the key-value backend contract used to replicate
// sign-in intent across media with different lifetimes, plus the four
// production implementations: process memory, a SQLite file, Redis, and an
// HTTP cookie jar.
//
// # Architecture boundaries
//
// This package owns raw persistence only. It does NOT decide write fan-out,
// read precedence, or key naming — those responsibilities belong to the
// intent reconciler.
//
// # What this package must NOT do
//
//   - Import authbridge, intent, or session (no upward imports).
//   - Interpret stored values (everything is an opaque string).
//   - Swallow backend outages; every failure is returned to the caller.
package storage

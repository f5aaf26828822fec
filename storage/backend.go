package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by [Backend.Get] when the key has no value, has
// expired, or the medium lost it (cleared cookies, new process, flushed
// cache). Callers distinguish it from transport failures with errors.Is.
var ErrNotFound = errors.New("storage: key not found")

// Backend is a single persistence medium for replicated sign-in intent.
// Implementations differ in lifetime and failure modes but share the same
// opaque string contract.
//
// Backend instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Backend interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Name identifies the medium in audit records ("memory", "sqlite",
	// "redis", "cookie").
	Name() string
}

package intent

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mitsunagakazunari0515-glitch/authbridge/storage"
)

const (
	// KeyIntendedRole is an exported constant or variable used by the session controller.
	KeyIntendedRole = "auth"
	// KeyOAuthInProgress is an exported constant or variable used by the session controller.
	KeyOAuthInProgress = "oauthInProgress"
	// KeyProfileCache is an exported constant or variable used by the session controller.
	KeyProfileCache = "userInfo"
)

var (
	// ErrNotFound is an exported constant or variable used by the session controller.
	ErrNotFound = errors.New("intent: key not found in any backend")
	// ErrAllBackendsFailed is an exported constant or variable used by the session controller.
	ErrAllBackendsFailed = errors.New("intent: every backend rejected the write")
)

// Reconciler fans writes out to every backend and reads back in the order the
// backends were supplied. Order is the read precedence: put the most durable
// medium first (async durable > tab > cross-tab > cookie).
//
// Reconciler instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Reconciler struct {
	backends []storage.Backend
}

// NewReconciler describes the newreconciler operation and its observable behavior.
//
// NewReconciler may return an error when input validation, dependency calls, or security checks fail.
// NewReconciler does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewReconciler(backends ...storage.Backend) (*Reconciler, error) {
	if len(backends) == 0 {
		return nil, errors.New("intent: at least one backend required")
	}
	for i, b := range backends {
		if b == nil {
			return nil, fmt.Errorf("intent: backend %d is nil", i)
		}
	}
	return &Reconciler{backends: backends}, nil
}

// Backends returns the configured backend names in precedence order.
//
// Backends may return an error when input validation, dependency calls, or security checks fail.
// Backends does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) Backends() []string {
	names := make([]string, len(r.backends))
	for i, b := range r.backends {
		names[i] = b.Name()
	}
	return names
}

// Write stores value under key on every backend. Individual backend failures
// are masked; the write fails only when no backend accepted it.
//
// Write may return an error when input validation, dependency calls, or security checks fail.
// Write does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) Write(ctx context.Context, key, value string) error {
	var (
		accepted int
		failures []error
	)
	for _, b := range r.backends {
		if err := b.Set(ctx, key, value); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(failures...))
	}
	return nil
}

// Read returns the value for key. A non-empty value in callbackQuery wins
// outright: during a provider redirect callback the URL carries the role the
// user explicitly selected for this attempt, which outranks any stored copy.
// Otherwise backends are consulted in precedence order and the first
// non-empty hit is returned; backend failures are treated as misses.
//
// Read may return an error when input validation, dependency calls, or security checks fail.
// Read does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) Read(ctx context.Context, callbackQuery url.Values, key string) (string, error) {
	if v := strings.TrimSpace(callbackQuery.Get(key)); v != "" {
		return v, nil
	}
	for _, b := range r.backends {
		value, err := b.Get(ctx, key)
		if err != nil {
			continue
		}
		if value != "" {
			return value, nil
		}
	}
	return "", ErrNotFound
}

// Clear deletes key from every backend, expiring the cookie copy. Per-backend
// failures are swallowed: a medium that cannot be reached now will age the
// value out on its own, and precedence reads never resurrect a cleared key
// as long as at least the higher-precedence media accepted the delete.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) Clear(ctx context.Context, key string) error {
	var (
		accepted int
		failures []error
	)
	for _, b := range r.backends {
		if err := b.Delete(ctx, key); err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", b.Name(), err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(failures...))
	}
	return nil
}

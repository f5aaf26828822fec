package session

import (
	"context"
	"log"
	"sync"
)

// State defines a public type used by authbridge APIs.
//
// State instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type State struct {
	IsAuthenticated bool
	Role            string
	UserID          string
	UserName        string
	IsLoading       bool
}

// Cache persists the committed profile blob for reuse by other parts of the
// host application. The controller implements it on top of the intent
// reconciler; tests supply fakes.
type Cache interface {
	// Put replaces the cached profile blob.
	Put(ctx context.Context, blob []byte) error

	// Drop removes the cached profile blob.
	Drop(ctx context.Context) error
}

// Store defines a public type used by authbridge APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	mu    sync.Mutex
	state State
	cache Cache
}

// NewStore describes the newstore operation and its observable behavior.
//
// NewStore may return an error when input validation, dependency calls, or security checks fail.
// NewStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewStore(cache Cache) *Store {
	return &Store{cache: cache}
}

// Snapshot returns a copy of the current state.
//
// Snapshot may return an error when input validation, dependency calls, or security checks fail.
// Snapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// BeginLoading marks an authorize flow as in flight without touching the
// committed fields.
//
// BeginLoading may return an error when input validation, dependency calls, or security checks fail.
// BeginLoading does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) BeginLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsLoading = true
}

// Commit is the only operation that sets IsAuthenticated. It stores the
// resolved role and identity, clears the loading flag, and persists the
// profile cache blob. A cache write failure does not fail the commit: the
// in-memory state is authoritative and the cache is an optimization.
//
// Commit may return an error when input validation, dependency calls, or security checks fail.
// Commit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Commit(ctx context.Context, profile CachedProfile, role, userID, userName string) error {
	s.mu.Lock()
	s.state = State{
		IsAuthenticated: true,
		Role:            role,
		UserID:          userID,
		UserName:        userName,
		IsLoading:       false,
	}
	s.mu.Unlock()

	if s.cache == nil {
		return nil
	}
	blob, err := EncodeProfile(profile)
	if err != nil {
		log.Printf("authbridge/session: encode profile cache: %v", err)
		return nil
	}
	if err := s.cache.Put(ctx, blob); err != nil {
		log.Printf("authbridge/session: persist profile cache: %v", err)
	}
	return nil
}

// Reset clears every in-memory field, sets IsLoading false, and drops the
// persisted profile cache. It is idempotent: a second call observes and
// produces the same terminal state.
//
// Reset may return an error when input validation, dependency calls, or security checks fail.
// Reset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Reset(ctx context.Context, reason string) {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	if err := s.cache.Drop(ctx); err != nil {
		log.Printf("authbridge/session: drop profile cache (%s): %v", reason, err)
	}
}

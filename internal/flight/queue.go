// Package flight serializes the controller's triggers — explicit login,
// mount-time restore, event-stream re-entry — through one logical actor.
// Concurrent submissions with the same label coalesce into a single
// execution whose result is shared; distinct labels queue behind each other.
package flight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Queue defines a type used by the session controller.
//
// Queue instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Queue struct {
	mu    sync.Mutex
	group singleflight.Group
}

// Do runs fn exclusively. Callers submitting the same label while fn is in
// flight share its result instead of running again; callers with a different
// label block until the queue is free. The context passed to fn is the first
// submitter's context.
//
// Do may return an error when input validation, dependency calls, or security checks fail.
// Do does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (q *Queue) Do(ctx context.Context, label string, fn func(context.Context) error) error {
	_, err, _ := q.group.Do(label, func() (any, error) {
		q.mu.Lock()
		defer q.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fn(ctx)
	})
	return err
}

package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
)

const (
	// DefaultMaxAttempts is an exported constant or variable used by the session controller.
	DefaultMaxAttempts = 5
	// DefaultInterval is an exported constant or variable used by the session controller.
	DefaultInterval = 500 * time.Millisecond
)

// ErrUnavailable is an exported constant or variable used by the session controller.
var ErrUnavailable = errors.New("token: pair unavailable after polling")

var errIncomplete = errors.New("token: pair not yet complete")

// FetchFunc queries the identity provider for the current token pair. A
// zero-value Pair with a nil error means the backend has not materialized
// the tokens yet.
type FetchFunc func(context.Context) (Pair, error)

// Poller waits for a usable token pair after sign-in. Federated identity
// resolution can complete before backend token materialization; a short
// bounded wait absorbs that gap without blocking indefinitely.
//
// Poller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Poller struct {
	MaxAttempts int
	Interval    time.Duration
}

// Await calls fetch at fixed intervals until the pair is complete or
// attempts are exhausted. Fetch failures count as attempts. Exhaustion
// yields [ErrUnavailable]; context cancellation yields the context error.
//
// Await may return an error when input validation, dependency calls, or security checks fail.
// Await does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p Poller) Await(ctx context.Context, fetch FetchFunc) (Pair, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	operation := func() (Pair, error) {
		pair, err := fetch(ctx)
		if err != nil {
			return Pair{}, err
		}
		if !pair.Complete() {
			return Pair{}, errIncomplete
		}
		return pair, nil
	}

	pair, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(interval)),
		backoff.WithMaxTries(uint(attempts)),
	)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Pair{}, ctxErr
		}
		if errors.Is(err, errIncomplete) {
			return Pair{}, ErrUnavailable
		}
		return Pair{}, fmt.Errorf("%w: last attempt: %w", ErrUnavailable, err)
	}
	return pair, nil
}

package intent

import (
	"context"
	"errors"
	"net/url"
	"strconv"
)

// Record is the login intent persisted when an attempt begins and consumed
// once the authorize flow reaches a terminal state. IntendedRole is the role
// string the user selected ("admin" or "employee"); OAuthInProgress marks a
// redirect attempt that has departed but not yet returned.
//
// Record instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Record struct {
	IntendedRole    string
	OAuthInProgress bool
}

// Pending reports whether the record describes an attempt still in flight.
//
// Pending may return an error when input validation, dependency calls, or security checks fail.
// Pending does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (rec Record) Pending() bool {
	return rec.IntendedRole != "" || rec.OAuthInProgress
}

// SaveRecord replicates rec under both intent keys. Either key landing on at
// least one backend is enough for the attempt to survive the redirect.
//
// SaveRecord may return an error when input validation, dependency calls, or security checks fail.
// SaveRecord does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) SaveRecord(ctx context.Context, rec Record) error {
	var errRole, errFlag error
	if rec.IntendedRole != "" {
		errRole = r.Write(ctx, KeyIntendedRole, rec.IntendedRole)
	}
	errFlag = r.Write(ctx, KeyOAuthInProgress, strconv.FormatBool(rec.OAuthInProgress))

	if errRole != nil && errFlag != nil {
		return errors.Join(errRole, errFlag)
	}
	return nil
}

// LoadRecord reassembles the pending intent, applying callback-query priority
// for the intended role. Absent keys yield a zero Record, not an error.
//
// LoadRecord may return an error when input validation, dependency calls, or security checks fail.
// LoadRecord does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) LoadRecord(ctx context.Context, callbackQuery url.Values) (Record, error) {
	var rec Record

	role, err := r.Read(ctx, callbackQuery, KeyIntendedRole)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	rec.IntendedRole = role

	flag, err := r.Read(ctx, nil, KeyOAuthInProgress)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, err
	}
	if flag != "" {
		inProgress, parseErr := strconv.ParseBool(flag)
		if parseErr == nil {
			rec.OAuthInProgress = inProgress
		}
	}

	return rec, nil
}

// EraseRecord clears both intent keys from every backend.
//
// EraseRecord may return an error when input validation, dependency calls, or security checks fail.
// EraseRecord does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r *Reconciler) EraseRecord(ctx context.Context) error {
	errRole := r.Clear(ctx, KeyIntendedRole)
	errFlag := r.Clear(ctx, KeyOAuthInProgress)
	if errRole != nil && errFlag != nil {
		return errors.Join(errRole, errFlag)
	}
	return nil
}

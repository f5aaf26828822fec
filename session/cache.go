package session

import (
	"encoding/json"
	"errors"
	"fmt"
)

// cacheSchemaVersion tags persisted profile blobs. Bump on any field change;
// readers discard versions they do not recognize.
const cacheSchemaVersion = 1

// ErrCacheVersion is an exported constant or variable used by the session controller.
var ErrCacheVersion = errors.New("session: unknown profile cache version")

// CachedProfile is the resolver profile as persisted for reuse by the rest
// of the host application.
//
// CachedProfile instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CachedProfile struct {
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	IsActive   bool   `json:"isActive"`
}

type cacheEnvelope struct {
	Version int           `json:"version"`
	Profile CachedProfile `json:"profile"`
}

// EncodeProfile serializes profile as a version-tagged JSON blob.
//
// EncodeProfile may return an error when input validation, dependency calls, or security checks fail.
// EncodeProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func EncodeProfile(profile CachedProfile) ([]byte, error) {
	blob, err := json.Marshal(cacheEnvelope{
		Version: cacheSchemaVersion,
		Profile: profile,
	})
	if err != nil {
		return nil, fmt.Errorf("session: encode profile: %w", err)
	}
	return blob, nil
}

// DecodeProfile parses a blob written by [EncodeProfile]. Blobs with an
// unknown version yield [ErrCacheVersion] and must be treated as absent.
//
// DecodeProfile may return an error when input validation, dependency calls, or security checks fail.
// DecodeProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DecodeProfile(blob []byte) (CachedProfile, error) {
	var env cacheEnvelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return CachedProfile{}, fmt.Errorf("session: decode profile: %w", err)
	}
	if env.Version != cacheSchemaVersion {
		return CachedProfile{}, fmt.Errorf("%w: %d", ErrCacheVersion, env.Version)
	}
	return env.Profile, nil
}

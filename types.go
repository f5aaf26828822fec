package authbridge

import (
	"fmt"
	"net/url"
)

// Role defines a public type used by authbridge APIs.
//
// Role instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Role string

const (
	// RoleNone is an exported constant or variable used by the session controller.
	RoleNone Role = ""
	// RoleAdmin is an exported constant or variable used by the session controller.
	RoleAdmin Role = "admin"
	// RoleEmployee is an exported constant or variable used by the session controller.
	RoleEmployee Role = "employee"
)

// ParseRole describes the parserole operation and its observable behavior.
//
// ParseRole may return an error when input validation, dependency calls, or security checks fail.
// ParseRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleEmployee:
		return RoleEmployee, true
	default:
		return RoleNone, false
	}
}

// Valid describes the valid operation and its observable behavior.
//
// Valid may return an error when input validation, dependency calls, or security checks fail.
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (r Role) String() string {
	return string(r)
}

// FlowState defines a public type used by authbridge APIs.
//
// FlowState instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FlowState uint8

const (
	// FlowIdle is an exported constant or variable used by the session controller.
	FlowIdle FlowState = iota
	// FlowLoginInitiated is an exported constant or variable used by the session controller.
	FlowLoginInitiated
	// FlowOAuthCallbackDetected is an exported constant or variable used by the session controller.
	FlowOAuthCallbackDetected
	// FlowAuthorizing is an exported constant or variable used by the session controller.
	FlowAuthorizing
	// FlowCommitted is an exported constant or variable used by the session controller.
	FlowCommitted
	// FlowRolledBack is an exported constant or variable used by the session controller.
	FlowRolledBack
)

// String describes the string operation and its observable behavior.
//
// String may return an error when input validation, dependency calls, or security checks fail.
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s FlowState) String() string {
	switch s {
	case FlowIdle:
		return "Idle"
	case FlowLoginInitiated:
		return "LoginInitiated"
	case FlowOAuthCallbackDetected:
		return "OAuthCallbackDetected"
	case FlowAuthorizing:
		return "Authorizing"
	case FlowCommitted:
		return "Committed"
	case FlowRolledBack:
		return "RolledBack"
	default:
		return fmt.Sprintf("FlowState(%d)", uint8(s))
	}
}

// Navigation is the URL context the host (re)starts with: the route the
// application landed on and its query string. After a federated redirect the
// query carries the provider's callback marker and, optionally, the intent
// keys appended before departure.
//
// Navigation instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Navigation struct {
	Route string
	Query url.Values
}

// ParseNavigation describes the parsenavigation operation and its observable behavior.
//
// ParseNavigation may return an error when input validation, dependency calls, or security checks fail.
// ParseNavigation does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ParseNavigation(raw string) (Navigation, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Navigation{}, fmt.Errorf("parse navigation %q: %w", raw, err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return Navigation{
		Route: path,
		Query: u.Query(),
	}, nil
}

package authz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

// Profile is the business identity the resolver maps a validated token to.
//
// Profile instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Profile struct {
	EmployeeID string `json:"employeeId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Role       string `json:"role"`
	Email      string `json:"email"`
	IsActive   bool   `json:"isActive"`
}

// DisplayName joins the profile name fields, dropping blanks.
//
// DisplayName may return an error when input validation, dependency calls, or security checks fail.
// DisplayName does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (p Profile) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Error is a resolver rejection decoded from an HTTP error body. Code is the
// machine-readable code a separate error-translation layer consumes.
//
// Error instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error describes the error operation and its observable behavior.
//
// Error may return an error when input validation, dependency calls, or security checks fail.
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("authz: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("authz: unexpected status %d", e.StatusCode)
}

// Temporary reports whether the rejection is a server-side fault (5xx) the
// caller may treat as a provider outage rather than a decision.
//
// Temporary may return an error when input validation, dependency calls, or security checks fail.
// Temporary does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Error) Temporary() bool {
	return e.StatusCode >= 500
}

// ErrMissingTokens is an exported constant or variable used by the session controller.
var ErrMissingTokens = errors.New("authz: token pair incomplete")

// Client calls the external authorization endpoint that maps a token pair to
// a business role and profile.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a resolver client for baseURL. A nil httpClient gets a
// default with a 10s timeout.
//
// NewClient may return an error when input validation, dependency calls, or security checks fail.
// NewClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("authz: base URL required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		base: base,
		http: httpClient,
	}, nil
}

// Authorize maps pair to a profile via GET /authorize.
//
// Authorize may return an error when input validation, dependency calls, or security checks fail.
// Authorize does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) Authorize(ctx context.Context, pair token.Pair) (Profile, error) {
	return c.call(ctx, http.MethodGet, "/authorize", pair)
}

// RefreshAuthorization re-resolves the profile after token rotation via
// POST /refresh-authorization.
//
// RefreshAuthorization may return an error when input validation, dependency calls, or security checks fail.
// RefreshAuthorization does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Client) RefreshAuthorization(ctx context.Context, pair token.Pair) (Profile, error) {
	return c.call(ctx, http.MethodPost, "/refresh-authorization", pair)
}

func (c *Client) call(ctx context.Context, method, path string, pair token.Pair) (Profile, error) {
	if !pair.Complete() {
		return Profile{}, ErrMissingTokens
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("authz: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	req.Header.Set("X-Id-Token", pair.IDToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("authz: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, fmt.Errorf("authz: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &Error{StatusCode: resp.StatusCode}
		// Error bodies are best-effort JSON; a plain-text 502 from a proxy
		// still yields a usable status code.
		_ = json.Unmarshal(body, apiErr)
		return Profile{}, apiErr
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, fmt.Errorf("authz: decode profile: %w", err)
	}
	return profile, nil
}

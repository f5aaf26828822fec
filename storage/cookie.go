package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

// Cookie is a bounded-lifetime [Backend] over an HTTP cookie jar. It models
// the one medium that rides along on the federated redirect: the value is
// attached to the origin as "name=value; Expires=<ts>; Path=/; SameSite=Lax"
// and the jar drops it once expired.
//
// Cookie instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Cookie struct {
	jar    *cookiejar.Jar
	origin *url.URL
	ttl    time.Duration
	now    func() time.Time
}

// NewCookie builds a cookie backend for origin ("https://host"). Values are
// percent-encoded so arbitrary strings survive the cookie-value grammar.
//
// NewCookie may return an error when input validation, dependency calls, or security checks fail.
// NewCookie does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewCookie(origin string, ttl time.Duration) (*Cookie, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse cookie origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("cookie origin %q must carry scheme and host", origin)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("new cookie jar: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Cookie{
		jar:    jar,
		origin: u,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Get describes the get operation and its observable behavior.
//
// Get may return an error when input validation, dependency calls, or security checks fail.
// Get does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cookie) Get(_ context.Context, key string) (string, error) {
	for _, ck := range c.jar.Cookies(c.origin) {
		if ck.Name != key {
			continue
		}
		value, err := url.QueryUnescape(ck.Value)
		if err != nil {
			return "", ErrNotFound
		}
		if value == "" {
			return "", ErrNotFound
		}
		return value, nil
	}
	return "", ErrNotFound
}

// Set describes the set operation and its observable behavior.
//
// Set may return an error when input validation, dependency calls, or security checks fail.
// Set does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cookie) Set(_ context.Context, key, value string) error {
	c.jar.SetCookies(c.origin, []*http.Cookie{{
		Name:     key,
		Value:    url.QueryEscape(value),
		Path:     "/",
		Expires:  c.now().Add(c.ttl),
		SameSite: http.SameSiteLaxMode,
	}})
	return nil
}

// Delete describes the delete operation and its observable behavior.
//
// Delete may return an error when input validation, dependency calls, or security checks fail.
// Delete does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cookie) Delete(_ context.Context, key string) error {
	c.jar.SetCookies(c.origin, []*http.Cookie{{
		Name:     key,
		Value:    "",
		Path:     "/",
		Expires:  c.now().Add(-time.Hour),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	}})
	return nil
}

// Name describes the name operation and its observable behavior.
//
// Name may return an error when input validation, dependency calls, or security checks fail.
// Name does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Cookie) Name() string {
	return "cookie"
}

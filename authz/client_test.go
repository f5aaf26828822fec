package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

var testPair = token.Pair{IDToken: "id-token", AccessToken: "access-token"}

func newTestResolver(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, srv.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestAuthorizeDecodesProfile(t *testing.T) {
	c := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/authorize" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access-token" {
			t.Errorf("unexpected Authorization header %q", got)
		}
		if got := r.Header.Get("X-Id-Token"); got != "id-token" {
			t.Errorf("unexpected X-Id-Token header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"employeeId":"E-1","firstName":"Hanako","lastName":"Sato","role":"employee","email":"hanako@example.com","isActive":true}`))
	})

	profile, err := c.Authorize(context.Background(), testPair)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}
	if profile.EmployeeID != "E-1" || profile.Role != "employee" || !profile.IsActive {
		t.Fatalf("unexpected profile %+v", profile)
	}
	if profile.DisplayName() != "Hanako Sato" {
		t.Fatalf("unexpected display name %q", profile.DisplayName())
	}
}

func TestRefreshAuthorizationUsesPost(t *testing.T) {
	c := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/refresh-authorization" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"employeeId":"E-1","role":"admin","isActive":true}`))
	})

	profile, err := c.RefreshAuthorization(context.Background(), testPair)
	if err != nil {
		t.Fatalf("RefreshAuthorization failed: %v", err)
	}
	if profile.Role != "admin" {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestAuthorizeDecodesErrorBody(t *testing.T) {
	c := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"code":"EMPLOYEE_INACTIVE","message":"account is inactive"}`))
	})

	_, err := c.Authorize(context.Background(), testPair)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Code != "EMPLOYEE_INACTIVE" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Temporary() {
		t.Fatal("4xx must not be reported as temporary")
	}
}

func TestAuthorizeServerErrorIsTemporary(t *testing.T) {
	c := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	_, err := c.Authorize(context.Background(), testPair)
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if !apiErr.Temporary() {
		t.Fatal("expected 5xx to be temporary")
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected status %d", apiErr.StatusCode)
	}
}

func TestAuthorizeRejectsIncompletePair(t *testing.T) {
	c := newTestResolver(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("resolver must not be called without a complete pair")
	})

	_, err := c.Authorize(context.Background(), token.Pair{AccessToken: "only-access"})
	if !errors.Is(err, ErrMissingTokens) {
		t.Fatalf("expected ErrMissingTokens, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient("", nil); err == nil {
		t.Fatal("expected empty base URL to be rejected")
	}
	c, err := NewClient("https://api.example.com/", nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if c.base != "https://api.example.com" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", c.base)
	}
}

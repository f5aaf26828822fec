package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/storage"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

type fakeProvider struct {
	mu       sync.Mutex
	signedIn bool
	events   chan identity.Event
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: make(chan identity.Event)}
}

func (f *fakeProvider) SignIn(_ context.Context, username, password string) (identity.SignInResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedIn = true
	return identity.SignInResult{IsSignedIn: true}, nil
}

func (f *fakeProvider) SignInWithRedirect(context.Context, string) error { return nil }

func (f *fakeProvider) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signedIn = false
	return nil
}

func (f *fakeProvider) CurrentUser(context.Context) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return identity.User{}, identity.ErrNotAuthenticated
	}
	return identity.User{UserID: "u-1", Username: "alice"}, nil
}

func (f *fakeProvider) FetchSession(context.Context) (identity.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.signedIn {
		return identity.Session{}, identity.ErrNotAuthenticated
	}
	return identity.Session{Tokens: &token.Pair{IDToken: "id-token", AccessToken: "access-token"}}, nil
}

func (f *fakeProvider) FetchUserAttributes(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (f *fakeProvider) ResetPassword(context.Context, string) error              { return nil }
func (f *fakeProvider) ConfirmResetPassword(context.Context, string, string, string) error { return nil }
func (f *fakeProvider) SignUp(context.Context, string, string) error             { return nil }
func (f *fakeProvider) ConfirmSignUp(context.Context, string, string) error      { return nil }
func (f *fakeProvider) Events() <-chan identity.Event                            { return f.events }

func newTestController(t *testing.T, role string) *authbridge.Controller {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(authz.Profile{
			EmployeeID: "e-1",
			FirstName:  "Alice",
			LastName:   "Smith",
			Role:       role,
			Email:      "alice@example.com",
			IsActive:   true,
		})
	}))
	t.Cleanup(server.Close)

	resolver, err := authz.NewClient(server.URL, server.Client())
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	controller, err := authbridge.New().
		WithProvider(newFakeProvider()).
		WithResolver(resolver).
		WithBackends(storage.NewMemory()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(controller.Close)

	return controller
}

func okHandler(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := SessionFromContext(r.Context()); !ok {
			t.Error("expected session state in request context")
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireSessionRejectsSignedOut(t *testing.T) {
	controller := newTestController(t, "admin")

	rec := httptest.NewRecorder()
	RequireSession(controller)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 before login, got %d", rec.Code)
	}
}

func TestRequireSessionAdmitsCommittedSession(t *testing.T) {
	controller := newTestController(t, "admin")

	if err := controller.Login(context.Background(), "alice", "secret", authbridge.RoleAdmin); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rec := httptest.NewRecorder()
	RequireSession(controller)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d", rec.Code)
	}
}

func TestRequireAdminRejectsEmployee(t *testing.T) {
	controller := newTestController(t, "employee")

	if err := controller.Login(context.Background(), "alice", "secret", authbridge.RoleEmployee); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	rec := httptest.NewRecorder()
	RequireAdmin(controller)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for employee on admin gate, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	RequireEmployee(controller)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for employee on employee gate, got %d", rec.Code)
	}
}

func TestGuardNilController(t *testing.T) {
	rec := httptest.NewRecorder()
	Guard(nil, authbridge.RoleNone)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for nil controller, got %d", rec.Code)
	}
}

package authbridge

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in    string
		want  Role
		valid bool
	}{
		{"admin", RoleAdmin, true},
		{"employee", RoleEmployee, true},
		{"", RoleNone, false},
		{"Admin", RoleNone, false},
		{"root", RoleNone, false},
	}

	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.valid {
			t.Fatalf("ParseRole(%q) = (%v, %v), want (%v, %v)", tc.in, got, ok, tc.want, tc.valid)
		}
	}
}

func TestParseNavigation(t *testing.T) {
	nav, err := ParseNavigation("/dashboard?code=abc&auth=admin")
	if err != nil {
		t.Fatalf("ParseNavigation failed: %v", err)
	}
	if nav.Route != "/dashboard" {
		t.Fatalf("expected route /dashboard, got %q", nav.Route)
	}
	if nav.Query.Get("code") != "abc" || nav.Query.Get("auth") != "admin" {
		t.Fatalf("unexpected query: %v", nav.Query)
	}
}

func TestParseNavigationEmptyPath(t *testing.T) {
	nav, err := ParseNavigation("?code=abc")
	if err != nil {
		t.Fatalf("ParseNavigation failed: %v", err)
	}
	if nav.Route != "/" {
		t.Fatalf("expected root route for empty path, got %q", nav.Route)
	}
}

func TestFlowStateString(t *testing.T) {
	states := map[FlowState]string{
		FlowIdle:                  "Idle",
		FlowLoginInitiated:        "LoginInitiated",
		FlowOAuthCallbackDetected: "OAuthCallbackDetected",
		FlowAuthorizing:           "Authorizing",
		FlowCommitted:             "Committed",
		FlowRolledBack:            "RolledBack",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Fatalf("FlowState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

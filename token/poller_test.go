package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAwaitSucceedsOnThirdQuery(t *testing.T) {
	calls := 0
	fetch := func(context.Context) (Pair, error) {
		calls++
		if calls < 3 {
			return Pair{}, nil
		}
		return Pair{IDToken: "id", AccessToken: "access"}, nil
	}

	p := Poller{MaxAttempts: 5, Interval: time.Millisecond}
	pair, err := p.Await(context.Background(), fetch)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if !pair.Complete() {
		t.Fatalf("expected complete pair, got %+v", pair)
	}
	if calls != 3 {
		t.Fatalf("expected 3 queries, got %d", calls)
	}
}

func TestAwaitExhaustsCleanly(t *testing.T) {
	calls := 0
	fetch := func(context.Context) (Pair, error) {
		calls++
		return Pair{}, nil
	}

	p := Poller{MaxAttempts: 5, Interval: time.Millisecond}
	_, err := p.Await(context.Background(), fetch)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if calls != 5 {
		t.Fatalf("expected exactly 5 attempts, got %d", calls)
	}
}

func TestAwaitRetriesFetchFailures(t *testing.T) {
	calls := 0
	fetch := func(context.Context) (Pair, error) {
		calls++
		if calls < 2 {
			return Pair{}, errors.New("session backend hiccup")
		}
		return Pair{IDToken: "id", AccessToken: "access"}, nil
	}

	p := Poller{MaxAttempts: 3, Interval: time.Millisecond}
	pair, err := p.Await(context.Background(), fetch)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if pair.AccessToken != "access" {
		t.Fatalf("unexpected pair %+v", pair)
	}
}

func TestAwaitWrapsFinalFetchError(t *testing.T) {
	fetch := func(context.Context) (Pair, error) {
		return Pair{}, errors.New("always down")
	}

	p := Poller{MaxAttempts: 2, Interval: time.Millisecond}
	_, err := p.Await(context.Background(), fetch)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAwaitHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := func(context.Context) (Pair, error) {
		cancel()
		return Pair{}, nil
	}

	p := Poller{MaxAttempts: 5, Interval: 50 * time.Millisecond}
	_, err := p.Await(ctx, fetch)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAwaitAppliesDefaults(t *testing.T) {
	p := Poller{}
	calls := 0
	fetch := func(context.Context) (Pair, error) {
		calls++
		return Pair{IDToken: "id", AccessToken: "access"}, nil
	}
	if _, err := p.Await(context.Background(), fetch); err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single query, got %d", calls)
	}
}

func signTestIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return signed
}

func TestDisplayNamePrefersNameClaim(t *testing.T) {
	idToken := signTestIDToken(t, jwt.MapClaims{
		"sub":         "user-1",
		"email":       "alice@example.com",
		"name":        "Alice Example",
		"given_name":  "Alice",
		"family_name": "Example",
	})

	if got := DisplayName(idToken); got != "Alice Example" {
		t.Fatalf("expected name claim, got %q", got)
	}
}

func TestDisplayNameFallbackChain(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"given and family", jwt.MapClaims{"sub": "u", "given_name": "Alice", "family_name": "Example"}, "Alice Example"},
		{"given only", jwt.MapClaims{"sub": "u", "given_name": "Alice"}, "Alice"},
		{"email", jwt.MapClaims{"sub": "u", "email": "alice@example.com"}, "alice@example.com"},
		{"subject", jwt.MapClaims{"sub": "user-1"}, "user-1"},
	}

	for _, tc := range cases {
		idToken := signTestIDToken(t, tc.claims)
		if got := DisplayName(idToken); got != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestDisplayNameMalformedToken(t *testing.T) {
	if got := DisplayName("not-a-jwt"); got != "" {
		t.Fatalf("expected empty name for malformed token, got %q", got)
	}
	if got := DisplayName(""); got != "" {
		t.Fatalf("expected empty name for empty token, got %q", got)
	}
}

func TestParseClaimsExtractsSubset(t *testing.T) {
	idToken := signTestIDToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"extra": 42,
	})

	claims, err := ParseClaims(idToken)
	if err != nil {
		t.Fatalf("ParseClaims failed: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisBackend(t *testing.T) (*miniredis.Miniredis, *Redis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewRedis(client, "abtest", 0)
}

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, err := b.Get(ctx, "auth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("%s: expected ErrNotFound for missing key, got %v", b.Name(), err)
	}

	if err := b.Set(ctx, "auth", "admin"); err != nil {
		t.Fatalf("%s: Set failed: %v", b.Name(), err)
	}
	got, err := b.Get(ctx, "auth")
	if err != nil {
		t.Fatalf("%s: Get failed: %v", b.Name(), err)
	}
	if got != "admin" {
		t.Fatalf("%s: expected %q, got %q", b.Name(), "admin", got)
	}

	if err := b.Set(ctx, "auth", "employee"); err != nil {
		t.Fatalf("%s: overwrite failed: %v", b.Name(), err)
	}
	got, err = b.Get(ctx, "auth")
	if err != nil || got != "employee" {
		t.Fatalf("%s: expected overwritten value, got %q err=%v", b.Name(), got, err)
	}

	if err := b.Delete(ctx, "auth"); err != nil {
		t.Fatalf("%s: Delete failed: %v", b.Name(), err)
	}
	if _, err := b.Get(ctx, "auth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("%s: expected ErrNotFound after delete, got %v", b.Name(), err)
	}

	if err := b.Delete(ctx, "auth"); err != nil {
		t.Fatalf("%s: deleting an absent key must not fail: %v", b.Name(), err)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemory())
}

func TestSQLiteBackend(t *testing.T) {
	s, err := OpenSQLite(t.TempDir() + "/kv.db")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	exerciseBackend(t, s)
}

func TestSQLiteBackendSurvivesReopen(t *testing.T) {
	path := t.TempDir() + "/kv.db"

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	if err := s.Set(context.Background(), "oauthInProgress", "true"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(context.Background(), "oauthInProgress")
	if err != nil || got != "true" {
		t.Fatalf("expected value to survive reopen, got %q err=%v", got, err)
	}
}

func TestRedisBackend(t *testing.T) {
	mr, r := newTestRedisBackend(t)
	defer mr.Close()

	exerciseBackend(t, r)
}

func TestRedisBackendTTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	r := NewRedis(client, "abtest", time.Minute)
	ctx := context.Background()

	if err := r.Set(ctx, "auth", "admin"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := r.Get(ctx, "auth"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after TTL expiry, got %v", err)
	}
}

func TestCookieBackend(t *testing.T) {
	c, err := NewCookie("https://app.example.com", time.Hour)
	if err != nil {
		t.Fatalf("NewCookie failed: %v", err)
	}

	exerciseBackend(t, c)
}

func TestCookieBackendExpiry(t *testing.T) {
	c, err := NewCookie("https://app.example.com", time.Minute)
	if err != nil {
		t.Fatalf("NewCookie failed: %v", err)
	}

	ctx := context.Background()
	if err := c.Set(ctx, "auth", "admin"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// The jar evaluates Expires against real time on read.
	c.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	if err := c.Set(ctx, "stale", "value"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	c.now = time.Now

	if _, err := c.Get(ctx, "stale"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired cookie to be gone, got %v", err)
	}
	if got, err := c.Get(ctx, "auth"); err != nil || got != "admin" {
		t.Fatalf("expected live cookie to survive, got %q err=%v", got, err)
	}
}

func TestCookieBackendEscapesValues(t *testing.T) {
	c, err := NewCookie("https://app.example.com", time.Hour)
	if err != nil {
		t.Fatalf("NewCookie failed: %v", err)
	}

	ctx := context.Background()
	blob := `{"version":1,"role":"admin; path=/"}`
	if err := c.Set(ctx, "userInfo", blob); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := c.Get(ctx, "userInfo")
	if err != nil || got != blob {
		t.Fatalf("expected round-tripped blob, got %q err=%v", got, err)
	}
}

func TestCookieRejectsBadOrigin(t *testing.T) {
	if _, err := NewCookie("app.example.com", time.Hour); err == nil {
		t.Fatal("expected origin without scheme to be rejected")
	}
}

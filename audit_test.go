package authbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"
)

type collectingSink struct {
	mu     sync.Mutex
	events []AuditEvent
}

func (s *collectingSink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *collectingSink) snapshot() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := &collectingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess, Timestamp: time.Now()})
	}
	d.Close()

	if got := len(sink.snapshot()); got != 10 {
		t.Fatalf("expected 10 delivered events after drain, got %d", got)
	}
	if d.Dropped() != 0 {
		t.Fatalf("expected no drops, got %d", d.Dropped())
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := newAuditDispatcher(AuditConfig{Enabled: false}, &collectingSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when audit is disabled")
	}

	// Nil dispatchers are safe no-ops.
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected zero drops from nil dispatcher")
	}
}

// gateSink blocks the worker inside Emit until released, forcing the
// dispatcher buffer to fill deterministically.
type gateSink struct {
	collectingSink
	entered chan struct{}
	release chan struct{}
}

func (s *gateSink) Emit(ctx context.Context, event AuditEvent) {
	s.entered <- struct{}{}
	<-s.release
	s.collectingSink.Emit(ctx, event)
}

func TestDispatcherAccountsDropsByTypeAndAttempt(t *testing.T) {
	sink := &gateSink{
		entered: make(chan struct{}, 8),
		release: make(chan struct{}),
	}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer.
	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})
	<-sink.entered
	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginSuccess})

	// Everything past this point must drop, not block.
	d.Emit(context.Background(), AuditEvent{EventType: auditEventAuthorizeRollback, AttemptID: "att-3"})
	d.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})

	close(sink.release)
	d.Close()

	if got := d.Dropped(); got != 2 {
		t.Fatalf("expected 2 drops, got %d", got)
	}
	byType := d.DroppedByType()
	if byType[auditEventAuthorizeRollback] != 1 || byType[auditEventLoginFailure] != 1 {
		t.Fatalf("unexpected per-type drop accounting: %v", byType)
	}
	if got := d.LastDroppedAttempt(); got != "att-3" {
		t.Fatalf("expected att-3 as last dropped attempt, got %q", got)
	}
	if got := len(sink.snapshot()); got != 2 {
		t.Fatalf("expected 2 delivered events, got %d", got)
	}
}

func TestDispatcherStampsMissingTimestamps(t *testing.T) {
	sink := &collectingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)

	d.Emit(context.Background(), AuditEvent{EventType: auditEventLogout})
	d.Close()

	events := sink.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected 1 delivered event, got %d", len(events))
	}
	if events[0].Timestamp.IsZero() {
		t.Fatal("expected dispatcher to stamp a missing timestamp")
	}
}

func TestDispatcherEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &collectingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4, DropIfFull: true}, sink)
	d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: auditEventLogout})
	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("expected no delivery after close, got %d", got)
	}
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		EventType: auditEventAuthorizeCommit,
		UserID:    "u-1",
		Role:      "admin",
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", line, err)
	}
	if decoded.EventType != auditEventAuthorizeCommit || decoded.UserID != "u-1" {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}

func TestChannelSinkDelivers(t *testing.T) {
	sink := NewChannelSink(2)
	sink.Emit(context.Background(), AuditEvent{EventType: auditEventLoginFailure})

	select {
	case ev := <-sink.Events():
		if ev.EventType != auditEventLoginFailure {
			t.Fatalf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("expected buffered event")
	}
}

func TestAuditErrorCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want AuditErrorCode
	}{
		{nil, ""},
		{ErrNotAuthenticated, auditErrNotAuthenticated},
		{ErrInvalidCredentials, auditErrInvalidCredentials},
		{ErrTokenUnavailable, auditErrTokenUnavailable},
		{ErrAuthorizationRejected, auditErrAuthorizationReject},
		{ErrPermissionMismatch, auditErrPermissionMismatch},
		{ErrProviderUnavailable, auditErrProviderUnavailable},
		{ErrSignOutIncomplete, auditErrSignOutIncomplete},
		{ErrRoleInvalid, auditErrRoleInvalid},
		{context.DeadlineExceeded, auditErrInternal},
	}

	for _, tc := range cases {
		if got := auditErrorCode(tc.err); got != tc.want {
			t.Fatalf("auditErrorCode(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

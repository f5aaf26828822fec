package identity

import (
	"sync"
	"sync/atomic"
	"time"
)

// Hub is a buffered event channel provider implementations can embed to
// satisfy [Provider.Events]. Publish never blocks: when the buffer is full
// the event is counted as dropped instead, so a slow consumer cannot stall
// the provider.
//
// Hub instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Hub struct {
	mu      sync.RWMutex
	events  chan Event
	closed  bool
	dropped atomic.Uint64
}

// NewHub describes the newhub operation and its observable behavior.
//
// NewHub may return an error when input validation, dependency calls, or security checks fail.
// NewHub does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		events: make(chan Event, buffer),
	}
}

// Publish describes the publish operation and its observable behavior.
//
// Publish may return an error when input validation, dependency calls, or security checks fail.
// Publish does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hub) Publish(kind EventKind) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return
	}
	select {
	case h.events <- Event{Kind: kind, At: time.Now().UTC()}:
	default:
		h.dropped.Add(1)
	}
}

// Events describes the events operation and its observable behavior.
//
// Events may return an error when input validation, dependency calls, or security checks fail.
// Events does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hub) Events() <-chan Event {
	return h.events
}

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped may return an error when input validation, dependency calls, or security checks fail.
// Dropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hub) Dropped() uint64 {
	if h == nil {
		return 0
	}
	return h.dropped.Load()
}

// Close closes the event stream. Publish calls after Close are discarded.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.events)
}

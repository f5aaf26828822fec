package authbridge

import (
	"context"
	"sync"
	"time"
)

// auditDispatcher decouples the authorize flow from sink latency: controller
// paths enqueue events and a single worker drains them to the sink, so a slow
// sink can never stall a login, callback, or rollback. Under backpressure the
// dispatcher drops rather than blocks (when configured to), accounting drops
// per event type and remembering the attempt whose trail was last truncated.
type auditDispatcher struct {
	cfg  AuditConfig
	sink AuditSink

	ch   chan AuditEvent
	done chan struct{}
	wg   sync.WaitGroup

	mu                 sync.Mutex
	dropsByType        map[string]uint64
	droppedTotal       uint64
	lastDroppedAttempt string

	closed    chan struct{}
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:         cfg,
		sink:        sink,
		ch:          make(chan AuditEvent, cfg.BufferSize),
		done:        make(chan struct{}),
		dropsByType: make(map[string]uint64),
		closed:      make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

// drain forwards everything still buffered so closing the controller never
// loses the tail of an attempt's audit trail.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.ch:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues an event for the worker. Events arriving without a timestamp
// are stamped here so the trail stays ordered even when flow code builds the
// event lazily. With DropIfFull the call never blocks; otherwise it waits on
// the caller's context, and a cancelled wait counts as a drop.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.isClosed() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- event:
		case <-d.done:
		default:
			d.recordDrop(event)
		}
		return
	}

	select {
	case d.ch <- event:
	case <-ctx.Done():
		d.recordDrop(event)
	case <-d.done:
	}
}

func (d *auditDispatcher) recordDrop(event AuditEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.droppedTotal++
	d.dropsByType[event.EventType]++
	if event.AttemptID != "" {
		d.lastDroppedAttempt = event.AttemptID
	}
}

// Close stops the worker after draining the buffer. Emit calls racing with or
// following Close are discarded.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		close(d.closed)
		close(d.done)
		d.wg.Wait()
	})
}

func (d *auditDispatcher) isClosed() bool {
	select {
	case <-d.closed:
		return true
	default:
		return false
	}
}

// Dropped reports the total number of events discarded under backpressure.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.droppedTotal
}

// DroppedByType reports drop counts keyed by audit event type, for deciding
// which flows are losing their trail when the sink falls behind.
func (d *auditDispatcher) DroppedByType() map[string]uint64 {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]uint64, len(d.dropsByType))
	for k, v := range d.dropsByType {
		out[k] = v
	}
	return out
}

// LastDroppedAttempt reports the attempt ID of the most recently dropped
// event that carried one, pointing at the trail worth cross-checking first.
func (d *auditDispatcher) LastDroppedAttempt() string {
	if d == nil {
		return ""
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDroppedAttempt
}

package authbridge

import (
	"context"
	"sync"
	"time"

	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/intent"
	"github.com/mitsunagakazunari0515-glitch/authbridge/internal/flight"
	"github.com/mitsunagakazunari0515-glitch/authbridge/session"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

// Controller defines a public type used by authbridge APIs.
//
// Controller instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Controller struct {
	config   Config
	provider identity.Provider
	resolver *authz.Client
	intents  *intent.Reconciler
	sessions *session.Store
	poller   token.Poller
	queue    flight.Queue
	audit    *auditDispatcher
	metrics  *Metrics

	flowMu sync.Mutex
	flow   FlowState

	pumpDone  chan struct{}
	pumpWG    sync.WaitGroup
	closeOnce sync.Once
}

// profileCache adapts the intent reconciler to the session store's cache
// contract: the committed profile blob rides the same replicated media as
// the login intent keys.
type profileCache struct {
	intents *intent.Reconciler
}

func (p profileCache) Put(ctx context.Context, blob []byte) error {
	return p.intents.Write(ctx, intent.KeyProfileCache, string(blob))
}

func (p profileCache) Drop(ctx context.Context) error {
	return p.intents.Clear(ctx, intent.KeyProfileCache)
}

// State returns a copy of the current session state.
//
// State may return an error when input validation, dependency calls, or security checks fail.
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) State() session.State {
	if c == nil || c.sessions == nil {
		return session.State{}
	}
	return c.sessions.Snapshot()
}

// FlowState returns the current position in the entry routing state machine.
//
// FlowState may return an error when input validation, dependency calls, or security checks fail.
// FlowState does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) FlowState() FlowState {
	if c == nil {
		return FlowIdle
	}
	c.flowMu.Lock()
	defer c.flowMu.Unlock()
	return c.flow
}

func (c *Controller) setFlow(next FlowState) {
	c.flowMu.Lock()
	c.flow = next
	c.flowMu.Unlock()
}

// CachedProfile returns the replicated profile blob written by the last
// commit, decoded, for reuse by other parts of the host application.
//
// CachedProfile may return an error when input validation, dependency calls, or security checks fail.
// CachedProfile does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) CachedProfile(ctx context.Context) (session.CachedProfile, error) {
	if c == nil || c.intents == nil {
		return session.CachedProfile{}, ErrControllerNotReady
	}
	blob, err := c.intents.Read(ctx, nil, intent.KeyProfileCache)
	if err != nil {
		return session.CachedProfile{}, ErrNotAuthenticated
	}
	return session.DecodeProfile([]byte(blob))
}

// Close stops the event pump and drains the audit dispatcher.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		if c.pumpDone != nil {
			close(c.pumpDone)
			c.pumpWG.Wait()
		}
		if c.audit != nil {
			c.audit.Close()
		}
	})
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// AuditDroppedByType describes the auditdroppedbytype operation and its observable behavior.
//
// AuditDroppedByType may return an error when input validation, dependency calls, or security checks fail.
// AuditDroppedByType does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) AuditDroppedByType() map[string]uint64 {
	if c == nil || c.audit == nil {
		return nil
	}
	return c.audit.DroppedByType()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Controller) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

func (c *Controller) ready() bool {
	return c != nil && c.provider != nil && c.resolver != nil && c.intents != nil && c.sessions != nil
}

package authbridge

import (
	"errors"

	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/intent"
	"github.com/mitsunagakazunari0515-glitch/authbridge/session"
	"github.com/mitsunagakazunari0515-glitch/authbridge/storage"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

// Builder defines a public type used by authbridge APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	provider identity.Provider
	resolver *authz.Client
	backends []storage.Backend

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithProvider describes the withprovider operation and its observable behavior.
//
// WithProvider may return an error when input validation, dependency calls, or security checks fail.
// WithProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithProvider(p identity.Provider) *Builder {
	b.provider = p
	return b
}

// WithResolver describes the withresolver operation and its observable behavior.
//
// WithResolver may return an error when input validation, dependency calls, or security checks fail.
// WithResolver does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithResolver(client *authz.Client) *Builder {
	b.resolver = client
	return b
}

// WithBackends supplies the storage backend set in read-precedence order:
// most durable first (async durable > tab > cross-tab > cookie).
//
// WithBackends may return an error when input validation, dependency calls, or security checks fail.
// WithBackends does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBackends(backends ...storage.Backend) *Builder {
	b.backends = backends
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.provider == nil {
		return nil, errors.New("identity provider required")
	}
	if b.resolver == nil {
		return nil, errors.New("authorization resolver client required")
	}
	if len(b.backends) == 0 {
		return nil, errors.New("at least one storage backend required")
	}

	reconciler, err := intent.NewReconciler(b.backends...)
	if err != nil {
		return nil, err
	}

	controller := &Controller{
		config:   cfg,
		provider: b.provider,
		resolver: b.resolver,
		intents:  reconciler,
		poller: token.Poller{
			MaxAttempts: cfg.Poller.MaxAttempts,
			Interval:    cfg.Poller.Interval,
		},
		pumpDone: make(chan struct{}),
	}
	controller.sessions = session.NewStore(profileCache{intents: reconciler})
	controller.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	controller.metrics = NewMetrics(cfg.Metrics)

	controller.pumpWG.Add(1)
	go controller.runEventPump()

	b.built = true

	return controller, nil
}

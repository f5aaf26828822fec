package authbridge

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config defines a public type used by authbridge APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Routing      RoutingConfig
	Poller       PollerConfig
	SignOutRetry SignOutRetryConfig
	Recovery     RecoveryConfig
	Resolver     ResolverConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

/*
====================================
ROUTING CONFIG
====================================
*/

// RoutingConfig defines a public type used by authbridge APIs.
//
// RoutingConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoutingConfig struct {
	// EntryRoute is the login screen path. On this route, with no callback
	// marker and no pending intent, the controller goes Idle and never
	// restores a previously committed session.
	EntryRoute string

	// CallbackParam is the provider-issued query parameter that marks a
	// federated redirect callback ("code" for OAuth authorization code).
	CallbackParam string
}

/*
====================================
POLLER CONFIG
====================================
*/

// PollerConfig defines a public type used by authbridge APIs.
//
// PollerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PollerConfig struct {
	MaxAttempts int
	Interval    time.Duration
}

/*
====================================
SIGN-OUT RETRY CONFIG
====================================
*/

// SignOutRetryConfig is the single forced sign-out policy applied on every
// rejection path (mismatch, provider error, stale-session recovery) and on
// explicit logout. One policy instead of per-call-site counts.
//
// SignOutRetryConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignOutRetryConfig struct {
	MaxAttempts  int
	Delay        time.Duration
	JitterFactor float64
}

// RecoveryConfig defines a public type used by authbridge APIs.
//
// RecoveryConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RecoveryConfig struct {
	// AlreadySignedInDelay is the pause between forcing out a stale
	// provider session and retrying the interrupted sign-in once.
	AlreadySignedInDelay time.Duration
}

/*
====================================
RESOLVER CONFIG
====================================
*/

// ResolverConfig defines a public type used by authbridge APIs.
//
// ResolverConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ResolverConfig struct {
	// BaseURL of the authorization resolver; consumed by hosts that build
	// the client through ConfigFromEnv rather than injecting one.
	BaseURL string
	Timeout time.Duration
}

// AuditConfig defines a public type used by authbridge APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by authbridge APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Routing: RoutingConfig{
			EntryRoute:    "/login",
			CallbackParam: "code",
		},
		Poller: PollerConfig{
			MaxAttempts: 5,
			Interval:    500 * time.Millisecond,
		},
		SignOutRetry: SignOutRetryConfig{
			MaxAttempts:  3,
			Delay:        200 * time.Millisecond,
			JitterFactor: 0.2,
		},
		Recovery: RecoveryConfig{
			AlreadySignedInDelay: 300 * time.Millisecond,
		},
		Resolver: ResolverConfig{
			Timeout: 10 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the recommended configuration.
//
// DefaultConfig may return an error when input validation, dependency calls, or security checks fail.
// DefaultConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// Value copy is sufficient: Config carries no reference types.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	if c.Routing.EntryRoute == "" || !strings.HasPrefix(c.Routing.EntryRoute, "/") {
		return fmt.Errorf("Routing.EntryRoute must be an absolute path, got %q", c.Routing.EntryRoute)
	}
	if c.Routing.CallbackParam == "" {
		return errors.New("Routing.CallbackParam must not be empty")
	}
	if c.Poller.MaxAttempts <= 0 {
		return errors.New("Poller.MaxAttempts must be > 0")
	}
	if c.Poller.Interval <= 0 {
		return errors.New("Poller.Interval must be > 0")
	}
	if c.SignOutRetry.MaxAttempts <= 0 {
		return errors.New("SignOutRetry.MaxAttempts must be > 0")
	}
	if c.SignOutRetry.Delay < 0 {
		return errors.New("SignOutRetry.Delay must not be negative")
	}
	if c.SignOutRetry.JitterFactor < 0 || c.SignOutRetry.JitterFactor >= 1 {
		return errors.New("SignOutRetry.JitterFactor must be in [0, 1)")
	}
	if c.Recovery.AlreadySignedInDelay < 0 {
		return errors.New("Recovery.AlreadySignedInDelay must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}
	return nil
}

type envConfig struct {
	EntryRoute           string        `env:"AUTHBRIDGE_ENTRY_ROUTE" envDefault:"/login"`
	CallbackParam        string        `env:"AUTHBRIDGE_CALLBACK_PARAM" envDefault:"code"`
	PollMaxAttempts      int           `env:"AUTHBRIDGE_POLL_MAX_ATTEMPTS" envDefault:"5"`
	PollInterval         time.Duration `env:"AUTHBRIDGE_POLL_INTERVAL" envDefault:"500ms"`
	SignOutMaxAttempts   int           `env:"AUTHBRIDGE_SIGNOUT_MAX_ATTEMPTS" envDefault:"3"`
	SignOutDelay         time.Duration `env:"AUTHBRIDGE_SIGNOUT_DELAY" envDefault:"200ms"`
	SignOutJitterFactor  float64       `env:"AUTHBRIDGE_SIGNOUT_JITTER" envDefault:"0.2"`
	AlreadySignedInDelay time.Duration `env:"AUTHBRIDGE_RECOVERY_DELAY" envDefault:"300ms"`
	ResolverBaseURL      string        `env:"AUTHBRIDGE_RESOLVER_URL"`
	ResolverTimeout      time.Duration `env:"AUTHBRIDGE_RESOLVER_TIMEOUT" envDefault:"10s"`
	AuditEnabled         bool          `env:"AUTHBRIDGE_AUDIT_ENABLED" envDefault:"true"`
	AuditBufferSize      int           `env:"AUTHBRIDGE_AUDIT_BUFFER" envDefault:"256"`
	AuditDropIfFull      bool          `env:"AUTHBRIDGE_AUDIT_DROP_IF_FULL" envDefault:"true"`
	MetricsEnabled       bool          `env:"AUTHBRIDGE_METRICS_ENABLED" envDefault:"true"`
	LatencyHistograms    bool          `env:"AUTHBRIDGE_METRICS_LATENCY" envDefault:"false"`
}

// ConfigFromEnv builds a Config from AUTHBRIDGE_* environment variables,
// falling back to the defaults for anything unset.
//
// ConfigFromEnv may return an error when input validation, dependency calls, or security checks fail.
// ConfigFromEnv does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func ConfigFromEnv() (Config, error) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	cfg := defaultConfig()
	cfg.Routing.EntryRoute = ec.EntryRoute
	cfg.Routing.CallbackParam = ec.CallbackParam
	cfg.Poller.MaxAttempts = ec.PollMaxAttempts
	cfg.Poller.Interval = ec.PollInterval
	cfg.SignOutRetry.MaxAttempts = ec.SignOutMaxAttempts
	cfg.SignOutRetry.Delay = ec.SignOutDelay
	cfg.SignOutRetry.JitterFactor = ec.SignOutJitterFactor
	cfg.Recovery.AlreadySignedInDelay = ec.AlreadySignedInDelay
	cfg.Resolver.BaseURL = ec.ResolverBaseURL
	cfg.Resolver.Timeout = ec.ResolverTimeout
	cfg.Audit.Enabled = ec.AuditEnabled
	cfg.Audit.BufferSize = ec.AuditBufferSize
	cfg.Audit.DropIfFull = ec.AuditDropIfFull
	cfg.Metrics.Enabled = ec.MetricsEnabled
	cfg.Metrics.EnableLatencyHistograms = ec.LatencyHistograms

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

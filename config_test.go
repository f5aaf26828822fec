package authbridge

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate, got %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty entry route", func(c *Config) { c.Routing.EntryRoute = "" }},
		{"relative entry route", func(c *Config) { c.Routing.EntryRoute = "login" }},
		{"empty callback param", func(c *Config) { c.Routing.CallbackParam = "" }},
		{"zero poll attempts", func(c *Config) { c.Poller.MaxAttempts = 0 }},
		{"zero poll interval", func(c *Config) { c.Poller.Interval = 0 }},
		{"zero signout attempts", func(c *Config) { c.SignOutRetry.MaxAttempts = 0 }},
		{"negative signout delay", func(c *Config) { c.SignOutRetry.Delay = -time.Second }},
		{"jitter out of range", func(c *Config) { c.SignOutRetry.JitterFactor = 1 }},
		{"negative recovery delay", func(c *Config) { c.Recovery.AlreadySignedInDelay = -time.Second }},
		{"zero audit buffer", func(c *Config) { c.Audit.BufferSize = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Routing.EntryRoute != "/login" {
		t.Fatalf("expected default entry route, got %q", cfg.Routing.EntryRoute)
	}
	if cfg.Poller.MaxAttempts != 5 || cfg.Poller.Interval != 500*time.Millisecond {
		t.Fatalf("expected default poller, got %+v", cfg.Poller)
	}
}

func TestConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("AUTHBRIDGE_ENTRY_ROUTE", "/signin")
	t.Setenv("AUTHBRIDGE_POLL_MAX_ATTEMPTS", "7")
	t.Setenv("AUTHBRIDGE_POLL_INTERVAL", "250ms")
	t.Setenv("AUTHBRIDGE_SIGNOUT_JITTER", "0.5")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv failed: %v", err)
	}
	if cfg.Routing.EntryRoute != "/signin" {
		t.Fatalf("expected overridden entry route, got %q", cfg.Routing.EntryRoute)
	}
	if cfg.Poller.MaxAttempts != 7 || cfg.Poller.Interval != 250*time.Millisecond {
		t.Fatalf("expected overridden poller, got %+v", cfg.Poller)
	}
	if cfg.SignOutRetry.JitterFactor != 0.5 {
		t.Fatalf("expected overridden jitter, got %v", cfg.SignOutRetry.JitterFactor)
	}
}

func TestConfigFromEnvRejectsInvalid(t *testing.T) {
	t.Setenv("AUTHBRIDGE_POLL_MAX_ATTEMPTS", "0")

	if _, err := ConfigFromEnv(); err == nil {
		t.Fatal("expected validation error for zero poll attempts")
	}
}

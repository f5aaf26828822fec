// Command authbridge-sim drives the session controller through its flows
// against in-process dependencies: a scripted identity provider, an HTTP
// authorization resolver, and replicated storage backends (Redis via
// miniredis unless a real server is supplied, plus process memory). It
// reports per-phase latency percentiles and finishes with the Prometheus
// rendering of the controller's metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	promexport "github.com/mitsunagakazunari0515-glitch/authbridge/metrics/export/prometheus"
	"github.com/mitsunagakazunari0515-glitch/authbridge/storage"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

func main() {
	var (
		iterations = flag.Int("iterations", 2000, "operations per phase")
		redisAddr  = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix     = flag.String("prefix", "authbridge", "storage key prefix")
	)
	flag.Parse()

	if *iterations <= 0 {
		fmt.Fprintln(os.Stderr, "iterations must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	resolver := &scriptedResolver{}
	resolver.setRole("admin")
	server := httptest.NewServer(resolver.handler())
	defer server.Close()

	authzClient, err := authz.NewClient(server.URL, server.Client())
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolver client: %v\n", err)
		os.Exit(1)
	}

	backends := []storage.Backend{
		storage.NewRedis(client, *prefix, time.Hour),
		storage.NewMemory(),
	}

	cfg := authbridge.DefaultConfig()
	cfg.Poller.Interval = time.Millisecond
	cfg.SignOutRetry.Delay = time.Millisecond
	cfg.Recovery.AlreadySignedInDelay = time.Millisecond
	cfg.Metrics.EnableLatencyHistograms = true

	provider := newScriptedProvider()
	controller, err := authbridge.New().
		WithConfig(cfg).
		WithProvider(provider).
		WithResolver(authzClient).
		WithBackends(backends...).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build controller: %v\n", err)
		os.Exit(1)
	}
	defer controller.Close()

	loginStats := runLoginLogoutPhase(ctx, controller, *iterations)
	restartStats := runRedirectRestartPhase(ctx, cfg, provider, authzClient, backends, *iterations)
	mismatchStats := runMismatchPhase(ctx, controller, resolver, *iterations)

	fmt.Println("---- results ----")
	printStats("login-logout", loginStats)
	printStats("redirect-restart", restartStats)
	printStats("mismatch-rollback", mismatchStats)

	fmt.Println("---- metrics ----")
	fmt.Print(promexport.NewPrometheusExporter(controller).Render())
}

// runLoginLogoutPhase measures the full password round trip: login with an
// intended role, commit, logout.
func runLoginLogoutPhase(ctx context.Context, controller *authbridge.Controller, iterations int) phaseStats {
	var failures int64
	latencies := make([]time.Duration, 0, iterations)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		t0 := time.Now()
		err := controller.Login(ctx, "alice", "secret", authbridge.RoleAdmin)
		if err == nil {
			err = controller.Logout(ctx)
		}
		latencies = append(latencies, time.Since(t0))
		if err != nil {
			failures++
		}
	}
	return computeStats(time.Since(start), latencies, failures)
}

// runRedirectRestartPhase simulates the federated path across a process
// restart: intent replicated to the backends, the old controller discarded, a
// fresh controller resuming on the callback URL. Only the replicated intent
// and the provider session connect the two lives.
func runRedirectRestartPhase(
	ctx context.Context,
	cfg authbridge.Config,
	provider *scriptedProvider,
	authzClient *authz.Client,
	backends []storage.Backend,
	iterations int,
) phaseStats {
	var failures int64
	latencies := make([]time.Duration, 0, iterations)

	nav, err := authbridge.ParseNavigation("/dashboard?code=sim-code")
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse navigation: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	for i := 0; i < iterations; i++ {
		departing, err := authbridge.New().
			WithConfig(cfg).
			WithProvider(provider).
			WithResolver(authzClient).
			WithBackends(backends...).
			Build()
		if err != nil {
			failures++
			continue
		}
		if err := departing.SignInWithProvider(ctx, "Google", authbridge.RoleAdmin); err != nil {
			failures++
			departing.Close()
			continue
		}
		departing.Close()

		// The provider finished its side while the process was away.
		provider.forceSignedIn()

		returning, err := authbridge.New().
			WithConfig(cfg).
			WithProvider(provider).
			WithResolver(authzClient).
			WithBackends(backends...).
			Build()
		if err != nil {
			failures++
			continue
		}

		t0 := time.Now()
		err = returning.Resume(ctx, nav)
		latencies = append(latencies, time.Since(t0))
		if err != nil || !returning.State().IsAuthenticated {
			failures++
		}
		_ = returning.Logout(ctx)
		returning.Close()
	}
	return computeStats(time.Since(start), latencies, failures)
}

// runMismatchPhase logs in with an admin intent while the resolver decides
// employee, expecting a full rollback every time.
func runMismatchPhase(ctx context.Context, controller *authbridge.Controller, resolver *scriptedResolver, iterations int) phaseStats {
	resolver.setRole("employee")
	defer resolver.setRole("admin")

	var failures int64
	latencies := make([]time.Duration, 0, iterations)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		t0 := time.Now()
		err := controller.Login(ctx, "alice", "secret", authbridge.RoleAdmin)
		latencies = append(latencies, time.Since(t0))
		if err == nil || controller.State().IsAuthenticated {
			failures++
		}
	}
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total, failures: failures}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

// scriptedProvider is an in-process identity provider for simulation runs.
type scriptedProvider struct {
	mu       sync.Mutex
	signedIn bool
	events   chan identity.Event
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{events: make(chan identity.Event)}
}

func (p *scriptedProvider) SignIn(_ context.Context, _, _ string) (identity.SignInResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedIn = true
	return identity.SignInResult{IsSignedIn: true}, nil
}

func (p *scriptedProvider) SignInWithRedirect(context.Context, string) error { return nil }

func (p *scriptedProvider) SignOut(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedIn = false
	return nil
}

func (p *scriptedProvider) CurrentUser(context.Context) (identity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return identity.User{}, identity.ErrNotAuthenticated
	}
	return identity.User{UserID: "sim-user", Username: "alice"}, nil
}

func (p *scriptedProvider) FetchSession(context.Context) (identity.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.signedIn {
		return identity.Session{}, identity.ErrNotAuthenticated
	}
	return identity.Session{Tokens: &token.Pair{IDToken: "sim-id", AccessToken: "sim-access"}}, nil
}

func (p *scriptedProvider) FetchUserAttributes(context.Context) (map[string]string, error) {
	return map[string]string{}, nil
}

func (p *scriptedProvider) ResetPassword(context.Context, string) error { return nil }
func (p *scriptedProvider) ConfirmResetPassword(context.Context, string, string, string) error {
	return nil
}
func (p *scriptedProvider) SignUp(context.Context, string, string) error        { return nil }
func (p *scriptedProvider) ConfirmSignUp(context.Context, string, string) error { return nil }
func (p *scriptedProvider) Events() <-chan identity.Event                       { return p.events }

func (p *scriptedProvider) forceSignedIn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedIn = true
}

// scriptedResolver serves the authorization endpoint with a switchable role.
type scriptedResolver struct {
	role atomic.Value
}

func (r *scriptedResolver) setRole(role string) {
	r.role.Store(role)
}

func (r *scriptedResolver) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		role, _ := r.role.Load().(string)
		_ = json.NewEncoder(w).Encode(authz.Profile{
			EmployeeID: "sim-emp",
			FirstName:  "Alice",
			LastName:   "Smith",
			Role:       role,
			Email:      "alice@example.com",
			IsActive:   true,
		})
	})
}

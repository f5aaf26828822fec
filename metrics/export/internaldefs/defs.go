package internaldefs

import (
	authbridge "github.com/mitsunagakazunari0515-glitch/authbridge"
)

// CounterDef defines a public type used by authbridge APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authbridge.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authbridge APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authbridge.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session controller.
var CounterDefs = []CounterDef{
	{ID: authbridge.MetricLoginSuccess, Name: "authbridge_login_success_total", Help: "Successful login attempts."},
	{ID: authbridge.MetricLoginFailure, Name: "authbridge_login_failure_total", Help: "Failed login attempts."},
	{ID: authbridge.MetricRedirectStarted, Name: "authbridge_redirect_started_total", Help: "Federated redirect departures."},
	{ID: authbridge.MetricCallbackDetected, Name: "authbridge_callback_detected_total", Help: "Federated redirect callbacks detected on resume."},
	{ID: authbridge.MetricSilentRestore, Name: "authbridge_silent_restore_total", Help: "Sessions restored silently on resume."},
	{ID: authbridge.MetricRestoreFailure, Name: "authbridge_restore_failure_total", Help: "Passive restore attempts that rolled back."},
	{ID: authbridge.MetricCommit, Name: "authbridge_commit_total", Help: "Authorize flows committed."},
	{ID: authbridge.MetricRollback, Name: "authbridge_rollback_total", Help: "Authorize flows rolled back."},
	{ID: authbridge.MetricPermissionMismatch, Name: "authbridge_permission_mismatch_total", Help: "Rollbacks caused by intended/resolved role mismatch."},
	{ID: authbridge.MetricAuthorizationRejected, Name: "authbridge_authorization_rejected_total", Help: "Rollbacks caused by resolver rejection or inactive profile."},
	{ID: authbridge.MetricProviderError, Name: "authbridge_provider_error_total", Help: "Rollbacks caused by identity or resolver outage."},
	{ID: authbridge.MetricTokenUnavailable, Name: "authbridge_token_unavailable_total", Help: "Token polls exhausted without a complete pair."},
	{ID: authbridge.MetricAlreadySignedInRecovered, Name: "authbridge_already_signed_in_recovered_total", Help: "Stale provider sessions recovered during sign-in."},
	{ID: authbridge.MetricSignOutRetry, Name: "authbridge_signout_retry_total", Help: "Provider sign-out retries after a failed attempt."},
	{ID: authbridge.MetricSignOutExhausted, Name: "authbridge_signout_exhausted_total", Help: "Provider sign-outs that exhausted their retries."},
	{ID: authbridge.MetricLogout, Name: "authbridge_logout_total", Help: "Explicit logout operations."},
	{ID: authbridge.MetricEventSignedIn, Name: "authbridge_event_signed_in_total", Help: "signedIn events consumed from the provider stream."},
	{ID: authbridge.MetricEventSignedOut, Name: "authbridge_event_signed_out_total", Help: "signedOut events consumed from the provider stream."},
	{ID: authbridge.MetricEventTokenRefresh, Name: "authbridge_event_token_refresh_total", Help: "tokenRefresh events consumed from the provider stream."},
	{ID: authbridge.MetricProfileRefreshSuccess, Name: "authbridge_profile_refresh_success_total", Help: "Profile refreshes re-committed after token rotation."},
	{ID: authbridge.MetricProfileRefreshFailure, Name: "authbridge_profile_refresh_failure_total", Help: "Profile refreshes that failed or rolled back."},
	{ID: authbridge.MetricIntentWriteDegraded, Name: "authbridge_intent_write_degraded_total", Help: "Intent replication writes or erasures that failed on every backend."},
	{ID: authbridge.MetricPasswordResetRequest, Name: "authbridge_password_reset_request_total", Help: "Password reset requests."},
	{ID: authbridge.MetricPasswordResetConfirm, Name: "authbridge_password_reset_confirm_total", Help: "Password reset confirmations."},
	{ID: authbridge.MetricSignUpRequest, Name: "authbridge_signup_request_total", Help: "Sign-up registrations."},
	{ID: authbridge.MetricSignUpConfirm, Name: "authbridge_signup_confirm_total", Help: "Sign-up confirmations."},
}

// HistogramDefs is an exported constant or variable used by the session controller.
var HistogramDefs = []HistogramDef{
	{ID: authbridge.MetricAuthorizeLatency, Name: "authbridge_authorize_latency_seconds", Help: "Authorize resolver latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session controller.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets may return an error when input validation, dependency calls, or security checks fail.
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets may return an error when input validation, dependency calls, or security checks fail.
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}

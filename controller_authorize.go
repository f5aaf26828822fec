package authbridge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/session"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

// authorizeAttempt carries one trigger through the authorize flow. explicit
// marks user-initiated triggers (login call, callback arrival) whose failures
// surface to the caller; passive triggers (mount-time restore, event stream)
// fail silently. callback holds the redirect query when the trigger is a
// provider callback, nil otherwise.
type authorizeAttempt struct {
	id       string
	explicit bool
	intended Role
	callback url.Values
}

func newAuthorizeAttempt(explicit bool, intended Role, callback url.Values) authorizeAttempt {
	return authorizeAttempt{
		id:       uuid.NewString(),
		explicit: explicit,
		intended: intended,
		callback: callback,
	}
}

// runAuthorize is the single authorization path. Every trigger lands here:
// password login, callback arrival, silent restore, and provider events. The
// flow either commits the session atomically or rolls the whole attempt back;
// there is no partially authenticated state.
func (c *Controller) runAuthorize(ctx context.Context, att authorizeAttempt) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	// A passive re-trigger against an already committed session is a no-op:
	// the event stream frequently replays signedIn after the commit landed.
	if !att.explicit && c.FlowState() == FlowCommitted && c.State().IsAuthenticated {
		return nil
	}

	c.setFlow(FlowAuthorizing)
	c.sessions.BeginLoading()

	user, err := c.provider.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, identity.ErrNotAuthenticated) {
			return c.rollback(ctx, att, ErrNotAuthenticated)
		}
		return c.rollback(ctx, att, fmt.Errorf("%w: %w", ErrProviderUnavailable, err))
	}

	pair, err := c.poller.Await(ctx, func(ctx context.Context) (token.Pair, error) {
		sess, fetchErr := c.provider.FetchSession(ctx)
		if fetchErr != nil {
			return token.Pair{}, fetchErr
		}
		if sess.Tokens == nil {
			return token.Pair{}, nil
		}
		return *sess.Tokens, nil
	})
	if err != nil {
		if errors.Is(err, identity.ErrNotAuthenticated) {
			return c.rollback(ctx, att, ErrNotAuthenticated)
		}
		if ctx.Err() != nil {
			return c.rollback(ctx, att, ctx.Err())
		}
		c.metricInc(MetricTokenUnavailable)
		return c.rollback(ctx, att, fmt.Errorf("%w: %w", ErrTokenUnavailable, err))
	}

	start := time.Now()
	profile, err := c.resolver.Authorize(ctx, pair)
	c.metricObserve(MetricAuthorizeLatency, time.Since(start))
	if err != nil {
		return c.rollback(ctx, att, classifyResolverError(err))
	}

	if !profile.IsActive {
		return c.rollback(ctx, att, ErrAuthorizationRejected)
	}

	resolved, ok := ParseRole(profile.Role)
	if !ok {
		return c.rollback(ctx, att, fmt.Errorf("%w: resolver returned %q", ErrRoleInvalid, profile.Role))
	}

	intended := att.intended
	if intended == RoleNone {
		rec, loadErr := c.intents.LoadRecord(ctx, att.callback)
		if loadErr == nil {
			intended, _ = ParseRole(rec.IntendedRole)
		}
	}
	if intended != RoleNone && intended != resolved {
		c.metricInc(MetricPermissionMismatch)
		return c.rollback(ctx, att, ErrPermissionMismatch)
	}

	return c.commit(ctx, att, user, pair, profile, resolved)
}

// commit finalizes a successful attempt: session state, profile cache, intent
// cleanup, flow state, audit, metrics. It is the only path that authenticates.
func (c *Controller) commit(
	ctx context.Context,
	att authorizeAttempt,
	user identity.User,
	pair token.Pair,
	profile authz.Profile,
	role Role,
) error {
	userName := profile.DisplayName()
	if userName == "" {
		userName = token.DisplayName(pair.IDToken)
	}
	if userName == "" {
		userName = user.Username
	}

	cached := session.CachedProfile{
		EmployeeID: profile.EmployeeID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Role:       profile.Role,
		Email:      profile.Email,
		IsActive:   profile.IsActive,
	}
	if err := c.sessions.Commit(ctx, cached, role.String(), user.UserID, userName); err != nil {
		return c.rollback(ctx, att, err)
	}

	if err := c.intents.EraseRecord(ctx); err != nil {
		c.metricInc(MetricIntentWriteDegraded)
		c.emitAudit(ctx, auditEventIntentWriteDegraded, false, att.id, user.UserID, role.String(), err, nil)
	}

	c.setFlow(FlowCommitted)
	c.metricInc(MetricCommit)
	if !att.explicit {
		c.metricInc(MetricSilentRestore)
	}
	c.emitAudit(ctx, auditEventAuthorizeCommit, true, att.id, user.UserID, role.String(), nil, func() map[string]string {
		return map[string]string{"explicit": fmt.Sprintf("%t", att.explicit)}
	})

	return nil
}

// rollback is the single failure path: provider sign-out (when a provider
// session may exist), intent erasure everywhere, session reset, flow state,
// then error surfacing per the attempt's trigger kind.
func (c *Controller) rollback(ctx context.Context, att authorizeAttempt, cause error) error {
	c.metricInc(MetricRollback)
	if !att.explicit {
		c.metricInc(MetricRestoreFailure)
	}
	switch {
	case errors.Is(cause, ErrAuthorizationRejected):
		c.metricInc(MetricAuthorizationRejected)
	case errors.Is(cause, ErrProviderUnavailable):
		c.metricInc(MetricProviderError)
	}

	// No provider session exists when the cause is an unauthenticated
	// provider; forcing a sign-out there would only burn retries.
	if !errors.Is(cause, ErrNotAuthenticated) {
		c.forceSignOut(ctx, att)
	}

	if err := c.intents.EraseRecord(ctx); err != nil {
		c.metricInc(MetricIntentWriteDegraded)
	}
	c.sessions.Reset(ctx, "rollback")
	c.setFlow(FlowRolledBack)

	c.emitAudit(ctx, auditEventAuthorizeRollback, false, att.id, "", att.intended.String(), cause, func() map[string]string {
		return map[string]string{"explicit": fmt.Sprintf("%t", att.explicit)}
	})

	return c.surface(att, cause)
}

// surface applies the error surfacing policy: an unauthenticated provider is
// never an error (it is simply the logged-out state), and passive triggers
// never propagate failures to their caller.
func (c *Controller) surface(att authorizeAttempt, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotAuthenticated) {
		return nil
	}
	if !att.explicit {
		return nil
	}
	return err
}

// forceSignOut tears down the provider-side session during rollback.
// Exhaustion is recorded but not returned: the local rollback proceeds
// regardless, leaving at worst an orphaned provider session that expires on
// its own.
func (c *Controller) forceSignOut(ctx context.Context, att authorizeAttempt) {
	_ = c.signOutWithRetry(ctx, att.id)
}

// signOutWithRetry applies the single configured sign-out retry policy: a
// fixed delay with jitter between attempts. Exhaustion yields
// [ErrSignOutIncomplete]; callers decide whether it surfaces.
func (c *Controller) signOutWithRetry(ctx context.Context, attemptID string) error {
	retryCfg := c.config.SignOutRetry

	attempt := 0
	operation := func() (struct{}, error) {
		if attempt > 0 {
			c.metricInc(MetricSignOutRetry)
		}
		attempt++
		return struct{}{}, c.provider.SignOut(ctx)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryCfg.Delay
	policy.Multiplier = 1.0
	policy.RandomizationFactor = retryCfg.JitterFactor

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(uint(retryCfg.MaxAttempts)),
	)
	if err != nil {
		c.metricInc(MetricSignOutExhausted)
		c.emitAudit(ctx, auditEventSignOutExhausted, false, attemptID, "", "", ErrSignOutIncomplete, nil)
		return fmt.Errorf("%w: %w", ErrSignOutIncomplete, err)
	}

	c.emitAudit(ctx, auditEventProviderSignedOut, true, attemptID, "", "", nil, nil)
	return nil
}

// classifyResolverError maps resolver transport and HTTP failures onto the
// controller's sentinel set. Server-side faults and network errors read as a
// provider outage; any 4xx is a deliberate rejection.
func classifyResolverError(err error) error {
	var apiErr *authz.Error
	if errors.As(err, &apiErr) {
		if apiErr.Temporary() {
			return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
		return fmt.Errorf("%w: %w", ErrAuthorizationRejected, err)
	}
	if errors.Is(err, authz.ErrMissingTokens) {
		return fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
}

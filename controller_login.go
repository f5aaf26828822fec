package authbridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/intent"
)

// Login authenticates with a username and password under the intended role,
// then runs the authorization flow to a commit or a rollback. The intended
// role is persisted as login intent before the provider call so that the
// attempt survives a restart mid-flow.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Login(ctx context.Context, username, password string, role Role) error {
	if !c.ready() {
		return ErrControllerNotReady
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrRoleInvalid, role)
	}

	return c.queue.Do(ctx, "login", func(ctx context.Context) error {
		att := newAuthorizeAttempt(true, role, nil)
		c.setFlow(FlowLoginInitiated)

		if err := c.intents.SaveRecord(ctx, intent.Record{IntendedRole: role.String()}); err != nil {
			// The attempt itself carries the role in memory; degraded intent
			// persistence only matters if the process dies mid-flow.
			c.metricInc(MetricIntentWriteDegraded)
			c.emitAudit(ctx, auditEventIntentWriteDegraded, false, att.id, "", role.String(), err, nil)
		}

		if err := c.signInRecoveringStaleSession(ctx, att, username, password); err != nil {
			c.metricInc(MetricLoginFailure)
			c.emitAudit(ctx, auditEventLoginFailure, false, att.id, "", role.String(), err, nil)
			if eraseErr := c.intents.EraseRecord(ctx); eraseErr != nil {
				c.metricInc(MetricIntentWriteDegraded)
			}
			c.setFlow(FlowIdle)
			return err
		}

		if err := c.runAuthorize(ctx, att); err != nil {
			c.metricInc(MetricLoginFailure)
			c.emitAudit(ctx, auditEventLoginFailure, false, att.id, "", role.String(), err, nil)
			return err
		}

		state := c.State()
		if !state.IsAuthenticated {
			// Rolled back for a cause that does not surface (the provider
			// reported no session right after accepting the credentials); the
			// caller still must not believe the login worked.
			c.metricInc(MetricLoginFailure)
			c.emitAudit(ctx, auditEventLoginFailure, false, att.id, "", role.String(), ErrProviderUnavailable, nil)
			return ErrProviderUnavailable
		}

		c.metricInc(MetricLoginSuccess)
		c.emitAudit(ctx, auditEventLoginSuccess, true, att.id, state.UserID, state.Role, nil, nil)
		return nil
	})
}

// signInRecoveringStaleSession performs the provider sign-in, recovering
// exactly once from a stale provider session: force the old session out,
// pause briefly, retry. A second stale-session rejection is returned as-is.
func (c *Controller) signInRecoveringStaleSession(ctx context.Context, att authorizeAttempt, username, password string) error {
	_, err := c.provider.SignIn(ctx, username, password)
	if err == nil {
		return nil
	}
	if errors.Is(err, identity.ErrInvalidCredentials) {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !errors.Is(err, identity.ErrAlreadySignedIn) {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	c.metricInc(MetricAlreadySignedInRecovered)
	c.emitAudit(ctx, auditEventAlreadySignedIn, true, att.id, "", att.intended.String(), nil, nil)
	c.forceSignOut(ctx, att)

	if delay := c.config.Recovery.AlreadySignedInDelay; delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if _, err := c.provider.SignIn(ctx, username, password); err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		case errors.Is(err, identity.ErrAlreadySignedIn):
			return fmt.Errorf("%w: %w", ErrAlreadySignedIn, err)
		default:
			return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
	}
	return nil
}

// SignInWithProvider starts federated sign-in through the named upstream
// provider. The intended role and an in-progress marker are replicated to the
// storage backends before departure: after the redirect returns, Resume picks
// the attempt back up from that record. The call returns once the departure
// has been initiated; the commit happens on the callback.
//
// SignInWithProvider may return an error when input validation, dependency calls, or security checks fail.
// SignInWithProvider does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SignInWithProvider(ctx context.Context, providerName string, role Role) error {
	if !c.ready() {
		return ErrControllerNotReady
	}
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrRoleInvalid, role)
	}

	return c.queue.Do(ctx, "login", func(ctx context.Context) error {
		att := newAuthorizeAttempt(true, role, nil)
		c.setFlow(FlowLoginInitiated)

		rec := intent.Record{IntendedRole: role.String(), OAuthInProgress: true}
		if err := c.intents.SaveRecord(ctx, rec); err != nil {
			// Without at least one surviving copy the attempt cannot outlive
			// the redirect; refuse to depart.
			c.setFlow(FlowIdle)
			return fmt.Errorf("%w: %w", ErrIntentUnavailable, err)
		}

		if err := c.provider.SignInWithRedirect(ctx, providerName); err != nil {
			if errors.Is(err, identity.ErrAlreadySignedIn) {
				c.metricInc(MetricAlreadySignedInRecovered)
				c.emitAudit(ctx, auditEventAlreadySignedIn, true, att.id, "", role.String(), nil, nil)
				c.forceSignOut(ctx, att)
				err = c.provider.SignInWithRedirect(ctx, providerName)
			}
			if err != nil {
				if eraseErr := c.intents.EraseRecord(ctx); eraseErr != nil {
					c.metricInc(MetricIntentWriteDegraded)
				}
				c.setFlow(FlowIdle)
				c.metricInc(MetricLoginFailure)
				c.emitAudit(ctx, auditEventLoginFailure, false, att.id, "", role.String(), err, nil)
				return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
			}
		}

		c.metricInc(MetricRedirectStarted)
		c.emitAudit(ctx, auditEventRedirectStarted, true, att.id, "", role.String(), nil, func() map[string]string {
			return map[string]string{"provider": providerName}
		})
		return nil
	})
}

// Logout signs the provider session out with the configured retry policy and
// clears all local state. Local state is cleared even when the provider
// sign-out exhausts its retries; the exhaustion is then surfaced as
// [ErrSignOutIncomplete] so the host can warn the user.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Logout(ctx context.Context) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	return c.queue.Do(ctx, "logout", func(ctx context.Context) error {
		att := newAuthorizeAttempt(true, RoleNone, nil)
		state := c.State()

		signOutErr := c.signOutWithRetry(ctx, att.id)

		if err := c.intents.EraseRecord(ctx); err != nil {
			c.metricInc(MetricIntentWriteDegraded)
		}
		c.sessions.Reset(ctx, "logout")
		c.setFlow(FlowIdle)

		c.metricInc(MetricLogout)
		c.emitAudit(ctx, auditEventLogout, signOutErr == nil, att.id, state.UserID, state.Role, signOutErr, nil)

		return signOutErr
	})
}

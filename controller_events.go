package authbridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitsunagakazunari0515-glitch/authbridge/authz"
	"github.com/mitsunagakazunari0515-glitch/authbridge/identity"
	"github.com/mitsunagakazunari0515-glitch/authbridge/session"
	"github.com/mitsunagakazunari0515-glitch/authbridge/token"
)

// runEventPump consumes the provider's asynchronous event stream until the
// controller closes or the provider shuts the channel. Every reaction goes
// through the trigger queue, so pump-driven authorizes serialize with calls
// from the host exactly like any other trigger.
func (c *Controller) runEventPump() {
	defer c.pumpWG.Done()

	events := c.provider.Events()
	if events == nil {
		return
	}

	for {
		select {
		case <-c.pumpDone:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) handleEvent(ev identity.Event) {
	ctx := context.Background()

	switch ev.Kind {
	case identity.KindSignedIn:
		c.metricInc(MetricEventSignedIn)
		_ = c.queue.Do(ctx, "event-signed-in", func(ctx context.Context) error {
			att := newAuthorizeAttempt(false, RoleNone, nil)
			return c.runAuthorize(ctx, att)
		})

	case identity.KindSignedOut:
		c.metricInc(MetricEventSignedOut)
		_ = c.queue.Do(ctx, "event-signed-out", func(ctx context.Context) error {
			if err := c.intents.EraseRecord(ctx); err != nil {
				c.metricInc(MetricIntentWriteDegraded)
			}
			c.sessions.Reset(ctx, "provider-signed-out")
			c.setFlow(FlowIdle)
			return nil
		})

	case identity.KindTokenRefresh:
		c.metricInc(MetricEventTokenRefresh)
		_ = c.queue.Do(ctx, "event-token-refresh", func(ctx context.Context) error {
			return c.refreshProfile(ctx)
		})

	case identity.KindTokenRefreshFailure:
		// The provider could not rotate the tokens; the session will stop
		// working on the next authorized call, so tear it down now.
		c.emitAudit(ctx, auditEventTokenRefreshFailure, false, "", "", "", ErrProviderUnavailable, nil)
		_ = c.queue.Do(ctx, "event-token-refresh", func(ctx context.Context) error {
			att := newAuthorizeAttempt(false, RoleNone, nil)
			return c.rollback(ctx, att, fmt.Errorf("%w: token refresh failed", ErrProviderUnavailable))
		})
	}
}

// refreshProfile re-resolves the business profile after a token rotation. A
// profile that has gone inactive or lost its role rolls the session back; a
// healthy profile is re-committed so role and name changes propagate without
// a new login.
func (c *Controller) refreshProfile(ctx context.Context) error {
	state := c.State()
	if !state.IsAuthenticated {
		return nil
	}

	att := newAuthorizeAttempt(false, RoleNone, nil)

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
		c.metricInc(MetricProfileRefreshFailure)
		if errors.Is(err, identity.ErrNotAuthenticated) {
			return c.rollback(ctx, att, ErrNotAuthenticated)
		}
		return c.rollback(ctx, att, fmt.Errorf("%w: %w", ErrTokenUnavailable, err))
	}

	profile, err := c.resolver.RefreshAuthorization(ctx, pair)
	if err != nil {
		c.metricInc(MetricProfileRefreshFailure)
		var apiErr *authz.Error
		if errors.As(err, &apiErr) && apiErr.Temporary() {
			// A resolver outage is not a decision about this session; keep
			// the committed state and let the next refresh try again.
			return nil
		}
		return c.rollback(ctx, att, classifyResolverError(err))
	}

	if !profile.IsActive {
		c.metricInc(MetricProfileRefreshFailure)
		return c.rollback(ctx, att, ErrAuthorizationRejected)
	}
	resolved, ok := ParseRole(profile.Role)
	if !ok {
		c.metricInc(MetricProfileRefreshFailure)
		return c.rollback(ctx, att, fmt.Errorf("%w: resolver returned %q", ErrRoleInvalid, profile.Role))
	}

	userName := profile.DisplayName()
	if userName == "" {
		userName = token.DisplayName(pair.IDToken)
	}
	if userName == "" {
		userName = state.UserName
	}

	cached := session.CachedProfile{
		EmployeeID: profile.EmployeeID,
		FirstName:  profile.FirstName,
		LastName:   profile.LastName,
		Role:       profile.Role,
		Email:      profile.Email,
		IsActive:   profile.IsActive,
	}
	if err := c.sessions.Commit(ctx, cached, resolved.String(), state.UserID, userName); err != nil {
		c.metricInc(MetricProfileRefreshFailure)
		return c.rollback(ctx, att, err)
	}

	c.metricInc(MetricProfileRefreshSuccess)
	c.emitAudit(ctx, auditEventProfileRefreshed, true, att.id, state.UserID, resolved.String(), nil, nil)
	return nil
}

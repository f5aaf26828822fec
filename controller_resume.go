package authbridge

import (
	"context"
	"strings"
)

// Resume is the mount-time entry point: the host calls it once per (re)start
// with the navigation context it landed on. Routing decides what the landing
// means:
//
//   - A callback marker in the query is a returning federated redirect; the
//     authorize flow runs as an explicit attempt whose failures surface.
//   - The entry route without a marker is the login screen. A pending intent
//     record means an attempt departed and came back without its marker; the
//     authorize flow completes it regardless of the route. Otherwise a
//     committed session revisiting the login screen is torn down and no
//     restore ever runs there: the user navigated here to log in, not to be
//     restored.
//   - Any other route triggers a silent restore that commits a surviving
//     session or quietly leaves the controller signed out.
//
// Resume may return an error when input validation, dependency calls, or security checks fail.
// Resume does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) Resume(ctx context.Context, nav Navigation) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	if c.isCallback(nav) {
		return c.queue.Do(ctx, "resume", func(ctx context.Context) error {
			return c.resumeCallback(ctx, nav)
		})
	}

	if c.isEntryRoute(nav) {
		return c.queue.Do(ctx, "resume", func(ctx context.Context) error {
			return c.resumeEntry(ctx)
		})
	}

	return c.queue.Do(ctx, "resume", func(ctx context.Context) error {
		return c.resumeSilent(ctx)
	})
}

func (c *Controller) isCallback(nav Navigation) bool {
	return strings.TrimSpace(nav.Query.Get(c.config.Routing.CallbackParam)) != ""
}

func (c *Controller) isEntryRoute(nav Navigation) bool {
	return nav.Route == c.config.Routing.EntryRoute
}

// resumeCallback completes a federated attempt that departed before the
// restart. The callback query participates in intent reads: a role carried in
// the URL outranks every stored copy for this attempt.
func (c *Controller) resumeCallback(ctx context.Context, nav Navigation) error {
	att := newAuthorizeAttempt(true, RoleNone, nav.Query)
	c.setFlow(FlowOAuthCallbackDetected)
	c.metricInc(MetricCallbackDetected)
	c.emitAudit(ctx, auditEventCallbackDetected, true, att.id, "", "", nil, nil)

	return c.runAuthorize(ctx, att)
}

// resumeEntry handles a landing on the login screen with no callback marker.
// A pending intent record outranks the route: the redirect may have bounced
// back here with its marker stripped (provider error redirect, restart
// mid-attempt), and the attempt must still reach a terminal state, so the
// authorize flow runs as an explicit attempt. With nothing pending, a
// committed session is reset, stale intent is erased, and the controller goes
// Idle without restoring.
func (c *Controller) resumeEntry(ctx context.Context) error {
	if rec, err := c.intents.LoadRecord(ctx, nil); err == nil && rec.Pending() {
		return c.runAuthorize(ctx, newAuthorizeAttempt(true, RoleNone, nil))
	}

	if c.State().IsAuthenticated {
		c.sessions.Reset(ctx, "entry-route-revisit")
	}
	if err := c.intents.EraseRecord(ctx); err != nil {
		c.metricInc(MetricIntentWriteDegraded)
	}
	c.setFlow(FlowIdle)
	return nil
}

// resumeSilent attempts to restore a surviving provider session on a
// non-entry route. Failures, including an unauthenticated provider, never
// reach the caller: the controller simply stays signed out.
func (c *Controller) resumeSilent(ctx context.Context) error {
	if c.FlowState() == FlowCommitted && c.State().IsAuthenticated {
		return nil
	}

	att := newAuthorizeAttempt(false, RoleNone, nil)
	return c.runAuthorize(ctx, att)
}

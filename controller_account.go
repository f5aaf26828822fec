package authbridge

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RequestPasswordReset starts the provider's password reset challenge for
// username. The controller only brokers the call; code delivery and the
// challenge itself live in the provider.
//
// RequestPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// RequestPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) RequestPasswordReset(ctx context.Context, username string) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	attemptID := uuid.NewString()
	err := c.provider.ResetPassword(ctx, username)
	c.metricInc(MetricPasswordResetRequest)
	c.emitAudit(ctx, auditEventPasswordResetRequest, err == nil, attemptID, "", "", err, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return nil
}

// ConfirmPasswordReset completes a reset challenge with the delivered code.
//
// ConfirmPasswordReset may return an error when input validation, dependency calls, or security checks fail.
// ConfirmPasswordReset does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) ConfirmPasswordReset(ctx context.Context, username, code, newPassword string) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	attemptID := uuid.NewString()
	err := c.provider.ConfirmResetPassword(ctx, username, code, newPassword)
	c.metricInc(MetricPasswordResetConfirm)
	c.emitAudit(ctx, auditEventPasswordResetConfirm, err == nil, attemptID, "", "", err, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return nil
}

// SignUp registers a new provider account pending confirmation. Registration
// grants no role: the account only becomes usable once the authorization
// resolver knows an active profile for it.
//
// SignUp may return an error when input validation, dependency calls, or security checks fail.
// SignUp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) SignUp(ctx context.Context, username, password string) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	attemptID := uuid.NewString()
	err := c.provider.SignUp(ctx, username, password)
	c.metricInc(MetricSignUpRequest)
	c.emitAudit(ctx, auditEventSignUpRequest, err == nil, attemptID, "", "", err, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return nil
}

// ConfirmSignUp confirms a pending registration with the delivered code.
//
// ConfirmSignUp may return an error when input validation, dependency calls, or security checks fail.
// ConfirmSignUp does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Controller) ConfirmSignUp(ctx context.Context, username, code string) error {
	if !c.ready() {
		return ErrControllerNotReady
	}

	attemptID := uuid.NewString()
	err := c.provider.ConfirmSignUp(ctx, username, code)
	c.metricInc(MetricSignUpConfirm)
	c.emitAudit(ctx, auditEventSignUpConfirm, err == nil, attemptID, "", "", err, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return nil
}

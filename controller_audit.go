package authbridge

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess          = "login_success"
	auditEventLoginFailure          = "login_failure"
	auditEventRedirectStarted       = "oauth_redirect_started"
	auditEventCallbackDetected      = "oauth_callback_detected"
	auditEventAuthorizeCommit       = "authorize_commit"
	auditEventAuthorizeRollback     = "authorize_rollback"
	auditEventAlreadySignedIn       = "already_signed_in_recovered"
	auditEventSignOutExhausted      = "signout_retry_exhausted"
	auditEventLogout                = "logout"
	auditEventProviderSignedOut     = "provider_signed_out"
	auditEventProfileRefreshed      = "profile_refreshed"
	auditEventTokenRefreshFailure   = "token_refresh_failure"
	auditEventIntentWriteDegraded   = "intent_write_degraded"
	auditEventPasswordResetRequest  = "password_reset_request"
	auditEventPasswordResetConfirm  = "password_reset_confirm"
	auditEventSignUpRequest         = "signup_request"
	auditEventSignUpConfirm         = "signup_confirm"
)

// AuditErrorCode defines a public type used by authbridge APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrNotAuthenticated     AuditErrorCode = "not_authenticated"
	auditErrInvalidCredentials   AuditErrorCode = "invalid_credentials"
	auditErrTokenUnavailable     AuditErrorCode = "token_unavailable"
	auditErrAuthorizationReject  AuditErrorCode = "authorization_rejected"
	auditErrPermissionMismatch   AuditErrorCode = "permission_mismatch"
	auditErrProviderUnavailable  AuditErrorCode = "provider_unavailable"
	auditErrAlreadySignedIn      AuditErrorCode = "already_signed_in"
	auditErrSignOutIncomplete    AuditErrorCode = "signout_incomplete"
	auditErrIntentUnavailable    AuditErrorCode = "intent_unavailable"
	auditErrRoleInvalid          AuditErrorCode = "role_invalid"
	auditErrInternal             AuditErrorCode = "internal"
)

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	attemptID string,
	userID string,
	role string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}
	if ua := userAgentFromContext(ctx); ua != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["user_agent"] = ua
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AttemptID: attemptID,
		UserID:    userID,
		Role:      role,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	c.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return auditErrNotAuthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrTokenUnavailable):
		return auditErrTokenUnavailable
	case errors.Is(err, ErrAuthorizationRejected):
		return auditErrAuthorizationReject
	case errors.Is(err, ErrPermissionMismatch):
		return auditErrPermissionMismatch
	case errors.Is(err, ErrProviderUnavailable):
		return auditErrProviderUnavailable
	case errors.Is(err, ErrAlreadySignedIn):
		return auditErrAlreadySignedIn
	case errors.Is(err, ErrSignOutIncomplete):
		return auditErrSignOutIncomplete
	case errors.Is(err, ErrIntentUnavailable):
		return auditErrIntentUnavailable
	case errors.Is(err, ErrRoleInvalid):
		return auditErrRoleInvalid
	default:
		return auditErrInternal
	}
}

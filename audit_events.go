package authflow

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLoginSuccess        = "login_success"
	auditEventLoginFailure        = "login_failure"
	auditEventOTPChallengeIssued  = "otp_challenge_issued"
	auditEventOTPConfirmSuccess   = "otp_confirm_success"
	auditEventOTPConfirmFailure   = "otp_confirm_failure"
	auditEventOTPResend           = "otp_resend"
	auditEventOTPResendFailure    = "otp_resend_failure"
	auditEventOTPCancelled        = "otp_cancelled"
	auditEventSignupSuccess       = "signup_success"
	auditEventSignupFailure       = "signup_failure"
	auditEventSignupUnackResponse = "signup_unacknowledged"
	auditEventResetRequest        = "reset_request"
	auditEventResetRequestFailure = "reset_request_failure"
	auditEventResetConfirm        = "reset_confirm"
	auditEventResetConfirmFailure = "reset_confirm_failure"
	auditEventSessionEstablished  = "session_established"
	auditEventSubmitRejected      = "submit_rejected"
)

// AuditErrorCode is the normalized error tag attached to failed events.
type AuditErrorCode string

const (
	auditErrValidation       AuditErrorCode = "validation_rejected"
	auditErrNoChallenge      AuditErrorCode = "no_active_challenge"
	auditErrPurposeMismatch  AuditErrorCode = "challenge_purpose_mismatch"
	auditErrNoPendingEmail   AuditErrorCode = "no_pending_email"
	auditErrCooldownActive   AuditErrorCode = "cooldown_active"
	auditErrSubmitInFlight   AuditErrorCode = "submit_in_flight"
	auditErrControllerClosed AuditErrorCode = "controller_closed"
	auditErrRemote           AuditErrorCode = "remote_failure"
	auditErrSessionPersist   AuditErrorCode = "session_persist_failed"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (c *Controller) emitAudit(
	ctx context.Context,
	eventType string,
	flow string,
	success bool,
	userID string,
	email string,
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

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Flow:      flow,
		UserID:    userID,
		Email:     email,
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
	case IsValidation(err):
		return auditErrValidation
	case errors.Is(err, ErrNoActiveChallenge):
		return auditErrNoChallenge
	case errors.Is(err, ErrChallengePurposeMismatch):
		return auditErrPurposeMismatch
	case errors.Is(err, ErrNoPendingEmail):
		return auditErrNoPendingEmail
	case errors.Is(err, ErrResendCooldownActive):
		return auditErrCooldownActive
	case errors.Is(err, ErrSubmitInFlight):
		return auditErrSubmitInFlight
	case errors.Is(err, ErrControllerClosed):
		return auditErrControllerClosed
	case IsRemote(err):
		return auditErrRemote
	default:
		return auditErrInternal
	}
}

package authflow

import "context"

// SubmitLogin validates the credentials locally, then asks the remote
// service to authenticate. Three outcomes: a one-time-code challenge
// becomes pending (LoginStepOTPRequired), a session is established and
// navigation to the dashboard or the captured intended route is
// signalled (LoginStepAuthenticated), or an error is surfaced and the
// controller returns to idle with no partial state.
func (c *Controller) SubmitLogin(ctx context.Context, fields LoginFields) (LoginStep, error) {
	if err := c.beginSubmit(); err != nil {
		return LoginStepNone, err
	}
	defer c.endSubmit()

	if fields.Email == "" || fields.Password == "" {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrMissingCredentials.Error())
		c.emitAudit(ctx, auditEventLoginFailure, "login", false, "", fields.Email, ErrMissingCredentials, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return LoginStepNone, ErrMissingCredentials
	}

	resp, err := c.service.Login(ctx, fields.Email, fields.Password)
	fields.Password = ""
	if err != nil {
		c.metricInc(MetricLoginFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.LoginFailed))
		c.emitAudit(ctx, auditEventLoginFailure, "login", false, "", fields.Email, err, nil)
		return LoginStepNone, err
	}

	if resp.RequiresOTP {
		email := resp.Email
		if email == "" {
			email = fields.Email
		}

		c.mu.Lock()
		c.otpRequired = true
		c.pendingUserID = resp.UserID
		c.pendingEmail = email
		c.pendingPurpose = PurposeLogin
		c.mu.Unlock()

		c.cooldown.Start(c.config.Resend.CooldownSeconds)

		c.metricInc(MetricOTPChallengeIssued)
		c.notifier.Success(c.config.Texts.OTPSent)
		c.emitAudit(ctx, auditEventOTPChallengeIssued, "login", true, resp.UserID, email, nil, nil)
		return LoginStepOTPRequired, nil
	}

	if _, err := c.establishSession(ctx, resp); err != nil {
		c.metricInc(MetricLoginFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.LoginFailed))
		c.emitAudit(ctx, auditEventLoginFailure, "login", false, resp.UserID, fields.Email, err, func() map[string]string {
			return map[string]string{
				"reason": "session_persist_failed",
			}
		})
		return LoginStepNone, err
	}

	c.metricInc(MetricLoginSuccess)
	c.notifier.Success(c.config.Texts.LoginSuccess)
	c.emitAudit(ctx, auditEventLoginSuccess, "login", true, resp.UserID, fields.Email, nil, nil)
	c.navigator.Navigate(c.postLoginRoute(ctx), NavigateOptions{Replace: true})
	return LoginStepAuthenticated, nil
}

// SubmitOTP confirms the pending login challenge. It fails fast with a
// state error when no login challenge is active; a wrong code preserves
// the challenge so the user can retry without re-entering credentials.
func (c *Controller) SubmitOTP(ctx context.Context, code string) error {
	if err := c.beginSubmit(); err != nil {
		return err
	}
	defer c.endSubmit()

	c.mu.Lock()
	purpose := c.pendingPurpose
	userID := c.pendingUserID
	email := c.pendingEmail
	active := c.otpRequired && userID != ""
	c.mu.Unlock()

	if purpose == PurposePasswordReset {
		c.emitAudit(ctx, auditEventOTPConfirmFailure, "login", false, "", email, ErrChallengePurposeMismatch, nil)
		return ErrChallengePurposeMismatch
	}
	if !active {
		c.emitAudit(ctx, auditEventOTPConfirmFailure, "login", false, "", email, ErrNoActiveChallenge, nil)
		return ErrNoActiveChallenge
	}
	if code == "" {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrMissingOTPCode.Error())
		c.emitAudit(ctx, auditEventOTPConfirmFailure, "login", false, userID, email, ErrMissingOTPCode, nil)
		return ErrMissingOTPCode
	}

	resp, err := c.service.VerifyLoginOTP(ctx, userID, code)
	if err != nil {
		// Challenge state survives so the user may retry.
		c.metricInc(MetricOTPConfirmFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.OTPVerifyFailed))
		c.emitAudit(ctx, auditEventOTPConfirmFailure, "login", false, userID, email, err, nil)
		return err
	}
	if resp.UserID == "" {
		resp.UserID = userID
	}
	if resp.Email == "" {
		resp.Email = email
	}

	if _, err := c.establishSession(ctx, resp); err != nil {
		c.metricInc(MetricOTPConfirmFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.OTPVerifyFailed))
		c.emitAudit(ctx, auditEventOTPConfirmFailure, "login", false, userID, email, err, func() map[string]string {
			return map[string]string{
				"reason": "session_persist_failed",
			}
		})
		return err
	}

	c.mu.Lock()
	c.clearChallengeLocked()
	c.mu.Unlock()
	c.cooldown.Stop()

	c.metricInc(MetricOTPConfirmSuccess)
	c.notifier.Success(c.config.Texts.LoginSuccess)
	c.emitAudit(ctx, auditEventOTPConfirmSuccess, "login", true, userID, email, nil, nil)
	c.navigator.Navigate(c.postLoginRoute(ctx), NavigateOptions{Replace: true})
	return nil
}

// CancelOTP abandons the pending challenge unconditionally. It is
// idempotent and has no remote effect.
func (c *Controller) CancelOTP(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	had := c.otpRequired || c.pendingEmail != "" || c.pendingUserID != ""
	c.clearChallengeLocked()
	c.mu.Unlock()

	if had {
		c.emitAudit(ctx, auditEventOTPCancelled, "", true, "", "", nil, nil)
	}
}

// ResendOTP asks the service to send a fresh code for the pending
// challenge. Without a pending email it fails without touching the
// network; while the cooldown is above zero it is rejected; a remote
// failure propagates without modifying the running cooldown.
func (c *Controller) ResendOTP(ctx context.Context) error {
	if err := c.beginSubmit(); err != nil {
		return err
	}
	defer c.endSubmit()

	c.mu.Lock()
	email := c.pendingEmail
	purpose := c.pendingPurpose
	c.mu.Unlock()

	if email == "" {
		c.metricInc(MetricOTPResendFailure)
		c.emitAudit(ctx, auditEventOTPResendFailure, purpose.String(), false, "", "", ErrNoPendingEmail, nil)
		return ErrNoPendingEmail
	}
	if c.cooldown.Remaining() > 0 {
		c.metricInc(MetricOTPResendFailure)
		c.emitAudit(ctx, auditEventOTPResendFailure, purpose.String(), false, "", email, ErrResendCooldownActive, nil)
		return ErrResendCooldownActive
	}

	var (
		ack *Ack
		err error
	)
	if purpose == PurposePasswordReset {
		ack, err = c.service.ResendForgotPasswordOTP(ctx, email)
	} else {
		ack, err = c.service.ResendLoginOTP(ctx, email)
	}
	if err != nil {
		c.metricInc(MetricOTPResendFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.OTPSendFailed))
		c.emitAudit(ctx, auditEventOTPResendFailure, purpose.String(), false, "", email, err, nil)
		return err
	}
	if ack == nil || !ack.Success {
		msg := ackMessage(ack)
		if msg == "" {
			msg = c.config.Texts.OTPSendFailed
		}
		rerr := NewRemoteError(msg, "", 0, nil)
		c.metricInc(MetricOTPResendFailure)
		c.notifier.Error(rerr.Message)
		c.emitAudit(ctx, auditEventOTPResendFailure, purpose.String(), false, "", email, rerr, nil)
		return rerr
	}

	c.cooldown.Start(c.config.Resend.CooldownSeconds)

	c.metricInc(MetricOTPResend)
	c.notifier.Success(c.config.Texts.OTPResent)
	c.emitAudit(ctx, auditEventOTPResend, purpose.String(), true, "", email, nil, nil)
	return nil
}

func ackMessage(ack *Ack) string {
	if ack == nil {
		return ""
	}
	return ack.Message
}

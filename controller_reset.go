package authflow

import "context"

// SubmitForgotPassword asks the service to send a reset code. On
// success a reset-purpose challenge becomes pending, the resend
// cooldown starts, and navigation to the reset-password route is
// signalled with the email carried forward as router state. A response
// without an explicit success flag is routed through the same failure
// handler as a thrown error, with the fixed send-failure message.
func (c *Controller) SubmitForgotPassword(ctx context.Context, email string) error {
	if err := c.beginSubmit(); err != nil {
		return err
	}
	defer c.endSubmit()

	if email == "" {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrMissingEmail.Error())
		c.emitAudit(ctx, auditEventResetRequestFailure, "password_reset", false, "", "", ErrMissingEmail, nil)
		return ErrMissingEmail
	}

	ack, err := c.service.ForgotPassword(ctx, email)
	if err == nil && (ack == nil || !ack.Success) {
		err = NewRemoteError(c.config.Texts.OTPSendFailed, "", 0, nil)
	}
	if err != nil {
		c.metricInc(MetricResetRequestFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.OTPSendFailed))
		c.emitAudit(ctx, auditEventResetRequestFailure, "password_reset", false, "", email, err, nil)
		return err
	}

	c.mu.Lock()
	c.otpRequired = false
	c.pendingUserID = ""
	c.pendingEmail = email
	c.pendingPurpose = PurposePasswordReset
	c.mu.Unlock()

	c.cooldown.Start(c.config.Resend.CooldownSeconds)

	c.metricInc(MetricResetRequest)
	c.notifier.Success(c.config.Texts.OTPSent)
	c.emitAudit(ctx, auditEventResetRequest, "password_reset", true, "", email, nil, nil)
	c.navigator.Navigate(c.config.Routes.ResetPassword, NavigateOptions{
		State: map[string]any{"email": email},
	})
	return nil
}

// SubmitResetPassword confirms the reset code and sets the new
// password. The confirmation mismatch is checked locally before any
// network call. On success, navigation back to the login route fires
// after a short delay so the success notice stays readable.
func (c *Controller) SubmitResetPassword(ctx context.Context, fields ResetFields) error {
	if err := c.beginSubmit(); err != nil {
		return err
	}
	defer c.endSubmit()

	if fields.Email == "" || fields.OTP == "" || fields.NewPassword == "" {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrMissingResetFields.Error())
		c.emitAudit(ctx, auditEventResetConfirmFailure, "password_reset", false, "", fields.Email, ErrMissingResetFields, nil)
		return ErrMissingResetFields
	}
	if fields.NewPassword != fields.ConfirmPassword {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrPasswordMismatch.Error())
		c.emitAudit(ctx, auditEventResetConfirmFailure, "password_reset", false, "", fields.Email, ErrPasswordMismatch, nil)
		return ErrPasswordMismatch
	}

	ack, err := c.service.ResetPassword(ctx, fields.Email, fields.OTP, fields.NewPassword)
	fields.NewPassword = ""
	fields.ConfirmPassword = ""
	if err != nil {
		c.metricInc(MetricResetConfirmFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.ResetFailed))
		c.emitAudit(ctx, auditEventResetConfirmFailure, "password_reset", false, "", fields.Email, err, nil)
		return err
	}

	c.mu.Lock()
	if c.pendingPurpose == PurposePasswordReset {
		c.clearChallengeLocked()
	}
	c.mu.Unlock()
	c.cooldown.Stop()

	msg := ackMessage(ack)
	if msg == "" {
		msg = c.config.Texts.ResetSuccess
	}

	c.metricInc(MetricResetConfirmSuccess)
	c.notifier.Success(msg)
	c.emitAudit(ctx, auditEventResetConfirm, "password_reset", true, "", fields.Email, nil, nil)
	c.navigateAfter(ctx, c.config.Reset.RedirectDelay, c.config.Routes.Login, NavigateOptions{Replace: true})
	return nil
}

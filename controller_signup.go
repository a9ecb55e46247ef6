package authflow

import "context"

// SubmitSignup validates the signup record, reshapes the flat contact
// and bank fields into their aggregates, and registers the account.
// Missing fields and a password mismatch are distinct user-visible
// failures. A server response without an explicit success flag yields
// SignupUnacknowledged: no navigation and no error notice, matching
// the system this replaces.
func (c *Controller) SubmitSignup(ctx context.Context, fields SignupFields) (SignupOutcome, error) {
	if err := c.beginSubmit(); err != nil {
		return SignupNone, err
	}
	defer c.endSubmit()

	if fields.Name == "" || fields.Email == "" || fields.Password == "" || fields.Mobile == "" {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrMissingSignupFields.Error())
		c.emitAudit(ctx, auditEventSignupFailure, "signup", false, "", fields.Email, ErrMissingSignupFields, func() map[string]string {
			return map[string]string{
				"reason": "missing_fields",
			}
		})
		return SignupNone, ErrMissingSignupFields
	}
	if fields.Password != fields.ConfirmPassword {
		c.metricInc(MetricValidationRejected)
		c.notifier.Error(ErrPasswordMismatch.Error())
		c.emitAudit(ctx, auditEventSignupFailure, "signup", false, "", fields.Email, ErrPasswordMismatch, func() map[string]string {
			return map[string]string{
				"reason": "password_mismatch",
			}
		})
		return SignupNone, ErrPasswordMismatch
	}

	req := buildRegisterRequest(fields)

	ack, err := c.service.Register(ctx, req)
	if err != nil {
		c.metricInc(MetricSignupFailure)
		c.notifier.Error(remoteText(err, c.config.Texts.SignupFailed))
		c.emitAudit(ctx, auditEventSignupFailure, "signup", false, "", fields.Email, err, nil)
		return SignupNone, err
	}

	if ack == nil || !ack.Success {
		// The server answered but did not confirm. The original
		// system fell through silently here; preserve that as a
		// distinct outcome instead of guessing.
		c.metricInc(MetricSignupUnacknowledged)
		c.emitAudit(ctx, auditEventSignupUnackResponse, "signup", false, "", fields.Email, nil, func() map[string]string {
			return map[string]string{
				"message": ackMessage(ack),
			}
		})
		return SignupUnacknowledged, nil
	}

	msg := ack.Message
	if msg == "" {
		msg = c.config.Texts.SignupSuccess
	}

	c.metricInc(MetricSignupSuccess)
	c.notifier.Success(msg)
	c.emitAudit(ctx, auditEventSignupSuccess, "signup", true, "", fields.Email, nil, nil)
	c.navigator.Navigate(c.config.Routes.Login, NavigateOptions{})
	return SignupAccepted, nil
}

// buildRegisterRequest is pure data reshaping; presence was already
// checked by the caller.
func buildRegisterRequest(fields SignupFields) RegisterRequest {
	return RegisterRequest{
		Name:         fields.Name,
		Email:        fields.Email,
		Password:     fields.Password,
		Mobile:       fields.Mobile,
		Role:         fields.Role,
		EmployeeCode: fields.EmployeeCode,
		EmergencyContact: EmergencyContact{
			Name:     fields.EmergencyContactName,
			Phone:    fields.EmergencyContactPhone,
			Relation: fields.EmergencyContactRelation,
		},
		BankDetails: BankDetails{
			AccountName:   fields.BankAccountName,
			AccountNumber: fields.BankAccountNumber,
			BankName:      fields.BankName,
			BranchCode:    fields.BankBranchCode,
		},
	}
}

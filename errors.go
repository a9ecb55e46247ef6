package authflow

import "errors"

// ValidationError is raised by local, pre-network checks. No remote
// call is made when one fires.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError builds a field-level validation failure.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// StateError is raised when an operation is invoked in a state that
// cannot accept it, such as confirming a code with no active challenge.
// These fail fast and never reach the network.
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

// RemoteError wraps a network or server failure. Message holds the
// structured server message field, Detail the structured server error
// field; either may be empty.
type RemoteError struct {
	Message string
	Detail  string
	Status  int
	cause   error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Detail != "":
		return e.Detail
	case e.cause != nil:
		return e.cause.Error()
	default:
		return "remote request failed"
	}
}

func (e *RemoteError) Unwrap() error { return e.cause }

// NewRemoteError wraps cause with the structured fields extracted from
// a server response.
func NewRemoteError(message, detail string, status int, cause error) *RemoteError {
	return &RemoteError{Message: message, Detail: detail, Status: status, cause: cause}
}

var (
	// ErrMissingCredentials fires when either login field is empty.
	ErrMissingCredentials = NewValidationError("email and password are required")
	// ErrMissingOTPCode fires when the challenge code is empty.
	ErrMissingOTPCode = NewValidationError("verification code is required")
	// ErrMissingSignupFields fires when a required signup field is empty.
	ErrMissingSignupFields = NewValidationError("name, email, password and mobile are required")
	// ErrPasswordMismatch fires when a password confirmation does not
	// match. It is distinct from the missing-fields failure.
	ErrPasswordMismatch = NewValidationError("passwords do not match")
	// ErrMissingEmail fires when the forgot-password email is empty.
	ErrMissingEmail = NewValidationError("email is required")
	// ErrMissingResetFields fires when email, code or new password is
	// empty on the reset form.
	ErrMissingResetFields = NewValidationError("email, code and new password are required")

	// ErrNoActiveChallenge is returned by SubmitOTP when no login
	// challenge is pending.
	ErrNoActiveChallenge = &StateError{msg: "no active verification challenge"}
	// ErrChallengePurposeMismatch is returned when the pending
	// challenge belongs to the other flow.
	ErrChallengePurposeMismatch = &StateError{msg: "challenge issued for a different purpose"}
	// ErrNoPendingEmail is returned by ResendOTP when no email was
	// captured; no network call is made.
	ErrNoPendingEmail = &StateError{msg: "no pending email for resend"}
	// ErrResendCooldownActive is returned while the resend cooldown
	// has not reached zero.
	ErrResendCooldownActive = &StateError{msg: "resend cooldown active"}
	// ErrSubmitInFlight is returned when a submit arrives while
	// another one is still running. The controller does not queue.
	ErrSubmitInFlight = &StateError{msg: "another submission is in flight"}
	// ErrControllerClosed is returned after Close.
	ErrControllerClosed = &StateError{msg: "controller closed"}
)

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsStateError reports whether err is an invalid-state rejection.
func IsStateError(err error) bool {
	var s *StateError
	return errors.As(err, &s)
}

// IsRemote reports whether err originated from the remote service.
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}

// remoteText resolves the user-visible message for a remote failure:
// structured server message, then structured server error, then the
// raw error text, then the hardcoded fallback. Precedence is fixed.
func remoteText(err error, fallback string) string {
	var r *RemoteError
	if errors.As(err, &r) {
		if r.Message != "" {
			return r.Message
		}
		if r.Detail != "" {
			return r.Detail
		}
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

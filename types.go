package authflow

import (
	"context"
	"net/http"
	"time"
)

// ChallengePurpose identifies which flow an active one-time-code
// challenge belongs to. A challenge is scoped to a single purpose and
// can never be consumed by the other flow.
type ChallengePurpose uint8

const (
	// PurposeNone means no challenge is active.
	PurposeNone ChallengePurpose = iota
	// PurposeLogin marks a challenge issued during password login.
	PurposeLogin
	// PurposePasswordReset marks a challenge issued by the
	// forgot-password flow.
	PurposePasswordReset
)

func (p ChallengePurpose) String() string {
	switch p {
	case PurposeLogin:
		return "login"
	case PurposePasswordReset:
		return "password_reset"
	default:
		return "none"
	}
}

// LoginFields is the typed record for the login form.
type LoginFields struct {
	Email    string
	Password string
}

// SignupFields is the typed record for the signup form. The flat
// emergency-contact and bank-details fields are reshaped into
// [EmergencyContact] and [BankDetails] aggregates before the register
// call.
type SignupFields struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	Mobile          string
	Role            string
	EmployeeCode    string

	EmergencyContactName     string
	EmergencyContactPhone    string
	EmergencyContactRelation string

	BankAccountName   string
	BankAccountNumber string
	BankName          string
	BankBranchCode    string
}

// ResetFields is the typed record for the reset-password form.
type ResetFields struct {
	Email           string
	OTP             string
	NewPassword     string
	ConfirmPassword string
}

// EmergencyContact is the aggregate sent to the register endpoint.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

// BankDetails is the aggregate sent to the register endpoint.
type BankDetails struct {
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
	BranchCode    string `json:"branch_code"`
}

// RegisterRequest is the payload handed to [Service.Register].
type RegisterRequest struct {
	Name             string           `json:"name"`
	Email            string           `json:"email"`
	Password         string           `json:"password"`
	Mobile           string           `json:"mobile"`
	Role             string           `json:"role,omitempty"`
	EmployeeCode     string           `json:"employee_code,omitempty"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
	BankDetails      BankDetails      `json:"bank_details"`
}

// LoginResponse is returned by [Service.Login] and
// [Service.VerifyLoginOTP]. When RequiresOTP is set only UserID, Email
// and Message are meaningful; the session fields are populated on full
// authentication.
type LoginResponse struct {
	RequiresOTP bool
	UserID      string
	Email       string
	Message     string

	Token     string
	ExpiresAt time.Time
	Claims    map[string]any
}

// Ack is the acknowledgement shape shared by the register, resend and
// password-reset endpoints.
type Ack struct {
	Success bool
	Message string
}

// Service is the remote auth service consumed by the controller. All
// network interaction goes through this interface; implementations live
// outside the core (a JSON/HTTP client ships in the service
// subpackage).
type Service interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	VerifyLoginOTP(ctx context.Context, userID, code string) (*LoginResponse, error)
	ResendLoginOTP(ctx context.Context, email string) (*Ack, error)
	Register(ctx context.Context, req RegisterRequest) (*Ack, error)
	ForgotPassword(ctx context.Context, email string) (*Ack, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (*Ack, error)
	ResendForgotPasswordOTP(ctx context.Context, email string) (*Ack, error)
}

// SessionPayload is the opaque proof of authentication persisted by a
// [SessionStore] after successful login or challenge verification.
type SessionPayload struct {
	Token     string
	UserID    string
	Email     string
	ExpiresAt time.Time
	Claims    map[string]any
}

// SessionOptions carries the persistence policy for a session write.
// The controller always requests SameSite=None with Secure set.
type SessionOptions struct {
	TTL      time.Duration
	SameSite http.SameSite
	Secure   bool
}

// SessionStore persists the session payload across page reloads. Route
// guards outside this core read it back.
type SessionStore interface {
	Set(ctx context.Context, payload SessionPayload, opts SessionOptions) error
}

// Notifier is the fire-and-forget notification sink. No ordering is
// guaranteed relative to navigation.
type Notifier interface {
	Success(text string)
	Error(text string)
}

// NavigateOptions mirrors the options of a client-side router.
type NavigateOptions struct {
	Replace bool
	State   map[string]any
}

// Navigator receives navigation signals from the controller. The
// controller never navigates itself.
type Navigator interface {
	Navigate(path string, opts NavigateOptions)
}

// LoginStep reports how far a login submit progressed.
type LoginStep uint8

const (
	// LoginStepNone is the zero value, returned alongside errors.
	LoginStepNone LoginStep = iota
	// LoginStepOTPRequired means credentials were accepted and a
	// one-time code challenge is now pending. The view should clear
	// its password field.
	LoginStepOTPRequired
	// LoginStepAuthenticated means a session was established and a
	// navigation signal was emitted.
	LoginStepAuthenticated
)

func (s LoginStep) String() string {
	switch s {
	case LoginStepOTPRequired:
		return "otp_required"
	case LoginStepAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

// SignupOutcome reports the result of a signup submit.
type SignupOutcome uint8

const (
	// SignupNone is the zero value, returned alongside errors.
	SignupNone SignupOutcome = iota
	// SignupAccepted means the server acknowledged the registration
	// and a navigation signal to the login route was emitted.
	SignupAccepted
	// SignupUnacknowledged means the server responded without an
	// explicit success flag. The original system neither navigated
	// nor surfaced an error in this case, so neither does the
	// controller; callers that want to treat it as a failure can.
	SignupUnacknowledged
)

package authflow

import (
	"errors"
	"time"
)

// Config carries every tunable of the controller. Zero values are
// filled in from defaults during Build; a populated Config should be
// treated as immutable afterwards.
type Config struct {
	Session SessionConfig
	Routes  RoutesConfig
	Resend  ResendConfig
	Reset   ResetConfig
	Texts   TextsConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls session persistence policy. The SameSite=None
// plus Secure cookie policy is fixed and not configurable.
type SessionConfig struct {
	// TTL is the fixed session lifetime written on every successful
	// login or challenge verification. Defaults to 10 hours.
	TTL time.Duration
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig names the routes the controller signals navigation to.
type RoutesConfig struct {
	Dashboard     string
	Login         string
	ResetPassword string
}

/*
====================================
RESEND CONFIG
====================================
*/

// ResendConfig controls the one-time-code resend cooldown.
type ResendConfig struct {
	// CooldownSeconds is the wait enforced between consecutive
	// resends. Started whenever a code is sent, reset on every
	// successful resend. Defaults to 30.
	CooldownSeconds int
	// TickInterval is the cooldown decrement period. Defaults to one
	// second; tests shorten it.
	TickInterval time.Duration
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig controls the reset-password flow.
type ResetConfig struct {
	// RedirectDelay is how long the success notice stays readable
	// before the navigation signal to the login route fires.
	// Defaults to 1.5 seconds.
	RedirectDelay time.Duration
}

/*
====================================
TEXTS CONFIG
====================================
*/

// TextsConfig holds the user-visible notification strings. String
// lookup and translation happen outside the core; hosts inject
// localized texts here.
type TextsConfig struct {
	LoginSuccess    string
	LoginFailed     string
	OTPSent         string
	OTPResent       string
	OTPSendFailed   string
	OTPVerifyFailed string
	SignupSuccess   string
	SignupFailed    string
	ResetSuccess    string
	ResetFailed     string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig controls the audit event dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events under backpressure instead of
	// blocking the submitting goroutine.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig controls the atomic flow counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultSessionTTL is the fixed session lifetime, roughly 0.417 days.
const DefaultSessionTTL = 10 * time.Hour

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL: DefaultSessionTTL,
		},
		Routes: RoutesConfig{
			Dashboard:     "/dashboard",
			Login:         "/login",
			ResetPassword: "/reset-password",
		},
		Resend: ResendConfig{
			CooldownSeconds: 30,
			TickInterval:    time.Second,
		},
		Reset: ResetConfig{
			RedirectDelay: 1500 * time.Millisecond,
		},
		Texts: TextsConfig{
			LoginSuccess:    "login successful",
			LoginFailed:     "login failed",
			OTPSent:         "verification code sent",
			OTPResent:       "verification code resent",
			OTPSendFailed:   "failed to send OTP",
			OTPVerifyFailed: "verification failed",
			SignupSuccess:   "registration successful",
			SignupFailed:    "registration failed",
			ResetSuccess:    "password reset successful",
			ResetFailed:     "password reset failed",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// applyDefaults fills zero values from defaultConfig so a sparse
// literal behaves sensibly.
func applyDefaults(cfg Config) Config {
	def := defaultConfig()

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = def.Session.TTL
	}
	if cfg.Routes.Dashboard == "" {
		cfg.Routes.Dashboard = def.Routes.Dashboard
	}
	if cfg.Routes.Login == "" {
		cfg.Routes.Login = def.Routes.Login
	}
	if cfg.Routes.ResetPassword == "" {
		cfg.Routes.ResetPassword = def.Routes.ResetPassword
	}
	if cfg.Resend.CooldownSeconds == 0 {
		cfg.Resend.CooldownSeconds = def.Resend.CooldownSeconds
	}
	if cfg.Resend.TickInterval == 0 {
		cfg.Resend.TickInterval = def.Resend.TickInterval
	}
	if cfg.Reset.RedirectDelay == 0 {
		cfg.Reset.RedirectDelay = def.Reset.RedirectDelay
	}
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = def.Audit.BufferSize
	}

	t := &cfg.Texts
	dt := def.Texts
	if t.LoginSuccess == "" {
		t.LoginSuccess = dt.LoginSuccess
	}
	if t.LoginFailed == "" {
		t.LoginFailed = dt.LoginFailed
	}
	if t.OTPSent == "" {
		t.OTPSent = dt.OTPSent
	}
	if t.OTPResent == "" {
		t.OTPResent = dt.OTPResent
	}
	if t.OTPSendFailed == "" {
		t.OTPSendFailed = dt.OTPSendFailed
	}
	if t.OTPVerifyFailed == "" {
		t.OTPVerifyFailed = dt.OTPVerifyFailed
	}
	if t.SignupSuccess == "" {
		t.SignupSuccess = dt.SignupSuccess
	}
	if t.SignupFailed == "" {
		t.SignupFailed = dt.SignupFailed
	}
	if t.ResetSuccess == "" {
		t.ResetSuccess = dt.ResetSuccess
	}
	if t.ResetFailed == "" {
		t.ResetFailed = dt.ResetFailed
	}

	return cfg
}

// Validate rejects configurations the controller cannot run with.
func (c Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("Session.TTL must be positive")
	}
	if c.Resend.CooldownSeconds < 0 {
		return errors.New("Resend.CooldownSeconds must not be negative")
	}
	if c.Resend.TickInterval <= 0 {
		return errors.New("Resend.TickInterval must be positive")
	}
	if c.Reset.RedirectDelay < 0 {
		return errors.New("Reset.RedirectDelay must not be negative")
	}
	if c.Routes.Dashboard == "" || c.Routes.Login == "" || c.Routes.ResetPassword == "" {
		return errors.New("Routes must name dashboard, login and reset-password paths")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	return nil
}

package authflow

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestSubmitLoginMissingFieldsStopsBeforeNetwork(t *testing.T) {
	h := newTestHarness(t, nil)

	step, err := h.controller.SubmitLogin(context.Background(), LoginFields{Email: "alice@example.com"})
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if step != LoginStepNone {
		t.Fatalf("expected LoginStepNone, got %v", step)
	}
	if got := h.service.Calls("Login"); got != 0 {
		t.Fatalf("expected no Login call, got %d", got)
	}
	if h.controller.Loading() {
		t.Fatal("expected loading to be cleared")
	}
	if notice := lastErrorNotice(t, h.notifier); notice.Text != ErrMissingCredentials.Error() {
		t.Fatalf("unexpected notice text %q", notice.Text)
	}
}

func TestSubmitLoginRemoteFailureSurfacesServerMessage(t *testing.T) {
	h := newTestHarness(t, nil)
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return nil, NewRemoteError("invalid credentials", "unauthorized", http.StatusUnauthorized, nil)
	}

	step, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "wrong",
	})
	if !IsRemote(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if step != LoginStepNone {
		t.Fatalf("expected LoginStepNone, got %v", step)
	}
	if notice := lastErrorNotice(t, h.notifier); notice.Text != "invalid credentials" {
		t.Fatalf("expected structured server message, got %q", notice.Text)
	}
	if h.sessions.Len() != 0 {
		t.Fatal("expected no session write on failed login")
	}
	if h.controller.OTPRequired() {
		t.Fatal("expected no pending challenge on failed login")
	}
}

func TestSubmitLoginChallengeSetsPendingState(t *testing.T) {
	h := newTestHarness(t, nil)
	h.issueLoginChallenge(t)

	if !h.controller.OTPRequired() {
		t.Fatal("expected pending challenge")
	}
	if got := h.controller.PendingUserID(); got != "u1" {
		t.Fatalf("expected pending user u1, got %q", got)
	}
	if got := h.controller.PendingEmail(); got != "alice@example.com" {
		t.Fatalf("expected pending email, got %q", got)
	}
	if got := h.controller.ChallengeActivePurpose(); got != PurposeLogin {
		t.Fatalf("expected login purpose, got %v", got)
	}
	if h.controller.Loading() {
		t.Fatal("expected loading to be cleared after challenge")
	}
	if h.sessions.Len() != 0 {
		t.Fatal("expected no session before challenge confirmation")
	}
	if h.navigator.Len() != 0 {
		t.Fatal("expected no navigation before challenge confirmation")
	}
	if h.controller.ResendCooldown() == 0 {
		t.Fatal("expected resend cooldown to start with the challenge")
	}
}

func TestSubmitLoginChallengeFallsBackToSubmittedEmail(t *testing.T) {
	h := newTestHarness(t, nil)
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{RequiresOTP: true, UserID: "u1"}, nil
	}

	if _, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}
	if got := h.controller.PendingEmail(); got != "alice@example.com" {
		t.Fatalf("expected form email captured, got %q", got)
	}
}

func TestSubmitLoginDirectAuthenticationEstablishesSession(t *testing.T) {
	h := newTestHarness(t, nil)
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{
			UserID:    "u1",
			Email:     "alice@example.com",
			Token:     "tok-1",
			ExpiresAt: expires,
			Claims:    map[string]any{"role": "admin"},
		}, nil
	}

	step, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}
	if step != LoginStepAuthenticated {
		t.Fatalf("expected LoginStepAuthenticated, got %v", step)
	}

	payload, opts := h.sessions.Last(t)
	if payload.Token != "tok-1" || payload.UserID != "u1" || payload.Email != "alice@example.com" {
		t.Fatalf("unexpected session payload %+v", payload)
	}
	if !payload.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, payload.ExpiresAt)
	}
	if opts.SameSite != http.SameSiteNoneMode || !opts.Secure {
		t.Fatalf("expected SameSite=None with Secure, got %+v", opts)
	}
	if opts.TTL != DefaultSessionTTL {
		t.Fatalf("expected default TTL, got %v", opts.TTL)
	}

	move := h.navigator.Last(t)
	if move.Path != "/dashboard" || !move.Opts.Replace {
		t.Fatalf("expected replace navigation to /dashboard, got %+v", move)
	}
	if h.controller.OTPRequired() {
		t.Fatal("expected no pending challenge after direct authentication")
	}
}

func TestSubmitLoginHonorsIntendedRoute(t *testing.T) {
	h := newTestHarness(t, nil)
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{UserID: "u1", Email: "alice@example.com", Token: "tok-1"}, nil
	}

	ctx := WithIntendedRoute(context.Background(), "/reports/42")
	if _, err := h.controller.SubmitLogin(ctx, LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}

	if move := h.navigator.Last(t); move.Path != "/reports/42" {
		t.Fatalf("expected intended route navigation, got %q", move.Path)
	}
}

func TestSubmitLoginGeneratesTokenWhenServerOmitsOne(t *testing.T) {
	h := newTestHarness(t, nil)
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{UserID: "u1", Email: "alice@example.com"}, nil
	}

	if _, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}

	payload, _ := h.sessions.Last(t)
	if payload.Token == "" {
		t.Fatal("expected a generated session token")
	}
	if payload.ExpiresAt.IsZero() {
		t.Fatal("expected a derived expiry")
	}
}

func TestSubmitLoginSessionPersistFailureReportsError(t *testing.T) {
	h := newTestHarness(t, nil)
	h.sessions.err = errors.New("store down")
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{UserID: "u1", Email: "alice@example.com", Token: "tok-1"}, nil
	}

	step, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if !IsRemote(err) {
		t.Fatalf("expected remote error, got %v", err)
	}
	if step != LoginStepNone {
		t.Fatalf("expected LoginStepNone, got %v", step)
	}
	if h.navigator.Len() != 0 {
		t.Fatal("expected no navigation when the session write fails")
	}
}

func TestSubmitRejectedWhileAnotherInFlight(t *testing.T) {
	h := newTestHarness(t, nil)

	release := make(chan struct{})
	started := make(chan struct{})
	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		close(started)
		<-release
		return &LoginResponse{UserID: "u1", Email: "alice@example.com", Token: "tok-1"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := h.controller.SubmitLogin(context.Background(), LoginFields{
			Email:    "alice@example.com",
			Password: "secret",
		})
		done <- err
	}()

	<-started
	if !h.controller.Loading() {
		t.Fatal("expected loading while a submit is in flight")
	}
	if _, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "bob@example.com",
		Password: "secret",
	}); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}
	if err := h.controller.SubmitOTP(context.Background(), "123456"); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight for concurrent SubmitOTP, got %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if h.controller.Loading() {
		t.Fatal("expected loading cleared after the submit finished")
	}
	if got := h.service.Calls("Login"); got != 1 {
		t.Fatalf("expected exactly one Login call, got %d", got)
	}
}

func TestSubmitAfterCloseRejected(t *testing.T) {
	h := newTestHarness(t, nil)
	h.controller.Close()

	if _, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	}); !errors.Is(err, ErrControllerClosed) {
		t.Fatalf("expected ErrControllerClosed, got %v", err)
	}
}

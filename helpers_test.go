package authflow

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeService scripts every remote call. Unset handlers fail the test
// so each case declares exactly the traffic it expects.
type fakeService struct {
	t *testing.T

	mu    sync.Mutex
	calls map[string]int

	loginFn        func(ctx context.Context, email, password string) (*LoginResponse, error)
	verifyFn       func(ctx context.Context, userID, code string) (*LoginResponse, error)
	resendLoginFn  func(ctx context.Context, email string) (*Ack, error)
	registerFn     func(ctx context.Context, req RegisterRequest) (*Ack, error)
	forgotFn       func(ctx context.Context, email string) (*Ack, error)
	resetFn        func(ctx context.Context, email, otp, newPassword string) (*Ack, error)
	resendForgotFn func(ctx context.Context, email string) (*Ack, error)
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	return &fakeService{t: t, calls: map[string]int{}}
}

func (f *fakeService) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

// Calls reports how many times the named operation was invoked.
func (f *fakeService) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	f.record("Login")
	if f.loginFn == nil {
		f.t.Fatal("unexpected Login call")
	}
	return f.loginFn(ctx, email, password)
}

func (f *fakeService) VerifyLoginOTP(ctx context.Context, userID, code string) (*LoginResponse, error) {
	f.record("VerifyLoginOTP")
	if f.verifyFn == nil {
		f.t.Fatal("unexpected VerifyLoginOTP call")
	}
	return f.verifyFn(ctx, userID, code)
}

func (f *fakeService) ResendLoginOTP(ctx context.Context, email string) (*Ack, error) {
	f.record("ResendLoginOTP")
	if f.resendLoginFn == nil {
		f.t.Fatal("unexpected ResendLoginOTP call")
	}
	return f.resendLoginFn(ctx, email)
}

func (f *fakeService) Register(ctx context.Context, req RegisterRequest) (*Ack, error) {
	f.record("Register")
	if f.registerFn == nil {
		f.t.Fatal("unexpected Register call")
	}
	return f.registerFn(ctx, req)
}

func (f *fakeService) ForgotPassword(ctx context.Context, email string) (*Ack, error) {
	f.record("ForgotPassword")
	if f.forgotFn == nil {
		f.t.Fatal("unexpected ForgotPassword call")
	}
	return f.forgotFn(ctx, email)
}

func (f *fakeService) ResetPassword(ctx context.Context, email, otp, newPassword string) (*Ack, error) {
	f.record("ResetPassword")
	if f.resetFn == nil {
		f.t.Fatal("unexpected ResetPassword call")
	}
	return f.resetFn(ctx, email, otp, newPassword)
}

func (f *fakeService) ResendForgotPasswordOTP(ctx context.Context, email string) (*Ack, error) {
	f.record("ResendForgotPasswordOTP")
	if f.resendForgotFn == nil {
		f.t.Fatal("unexpected ResendForgotPasswordOTP call")
	}
	return f.resendForgotFn(ctx, email)
}

// captureSessions records session writes along with the options they
// were written with.
type captureSessions struct {
	mu      sync.Mutex
	writes  []SessionPayload
	options []SessionOptions
	err     error
}

func (s *captureSessions) Set(_ context.Context, payload SessionPayload, opts SessionOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes = append(s.writes, payload)
	s.options = append(s.options, opts)
	return nil
}

func (s *captureSessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *captureSessions) Last(t *testing.T) (SessionPayload, SessionOptions) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.writes) == 0 {
		t.Fatal("expected at least one session write")
	}
	return s.writes[len(s.writes)-1], s.options[len(s.options)-1]
}

// navigation is one captured navigation signal.
type navigation struct {
	Path string
	Opts NavigateOptions
}

type captureNavigator struct {
	mu    sync.Mutex
	moves []navigation
}

func (n *captureNavigator) Navigate(path string, opts NavigateOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.moves = append(n.moves, navigation{Path: path, Opts: opts})
}

func (n *captureNavigator) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.moves)
}

func (n *captureNavigator) Last(t *testing.T) navigation {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.moves) == 0 {
		t.Fatal("expected at least one navigation")
	}
	return n.moves[len(n.moves)-1]
}

// waitForNavigation polls until a navigation arrives or the deadline
// passes. Used for the delayed post-reset redirect.
func (n *captureNavigator) waitForNavigation(t *testing.T, deadline time.Duration) navigation {
	t.Helper()
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		if n.Len() > 0 {
			return n.Last(t)
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("timed out waiting for navigation")
	return navigation{}
}

type testHarness struct {
	controller *Controller
	service    *fakeService
	sessions   *captureSessions
	navigator  *captureNavigator
	notifier   *RecordingNotifier
}

// testConfig shortens the timing knobs so cases run fast.
func testConfig() Config {
	cfg := defaultConfig()
	cfg.Resend.TickInterval = 5 * time.Millisecond
	cfg.Reset.RedirectDelay = 10 * time.Millisecond
	return cfg
}

func newTestHarness(t *testing.T, mutate func(cfg *Config)) *testHarness {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(&cfg)
	}

	svc := newFakeService(t)
	sessions := &captureSessions{}
	navigator := &captureNavigator{}
	notifier := &RecordingNotifier{}

	controller, err := New().
		WithConfig(cfg).
		WithService(svc).
		WithSessions(sessions).
		WithNavigator(navigator).
		WithNotifier(notifier).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(controller.Close)

	return &testHarness{
		controller: controller,
		service:    svc,
		sessions:   sessions,
		navigator:  navigator,
		notifier:   notifier,
	}
}

// issueLoginChallenge drives the harness into a pending login
// challenge for u1 / alice@example.com.
func (h *testHarness) issueLoginChallenge(t *testing.T) {
	t.Helper()

	h.service.loginFn = func(context.Context, string, string) (*LoginResponse, error) {
		return &LoginResponse{RequiresOTP: true, UserID: "u1", Email: "alice@example.com"}, nil
	}
	step, err := h.controller.SubmitLogin(context.Background(), LoginFields{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("SubmitLogin failed: %v", err)
	}
	if step != LoginStepOTPRequired {
		t.Fatalf("expected LoginStepOTPRequired, got %v", step)
	}
}

func lastErrorNotice(t *testing.T, n *RecordingNotifier) Notice {
	t.Helper()
	notices := n.Notices()
	for i := len(notices) - 1; i >= 0; i-- {
		if notices[i].IsErr {
			return notices[i]
		}
	}
	t.Fatal("expected an error notice")
	return Notice{}
}

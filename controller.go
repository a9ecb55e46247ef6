package authflow

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Controller owns the flow state machine: loading flag, pending
// one-time-code challenge, and resend cooldown. All state is scoped to
// one controller instance; nothing is shared across instances.
type Controller struct {
	config    Config
	service   Service
	sessions  SessionStore
	notifier  Notifier
	navigator Navigator
	audit     *auditDispatcher
	metrics   *Metrics

	busy   atomic.Bool
	closed atomic.Bool

	mu             sync.Mutex
	otpRequired    bool
	pendingUserID  string
	pendingEmail   string
	pendingPurpose ChallengePurpose

	cooldown *resendCooldown

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Close cancels the resend cooldown, aborts any pending delayed
// navigation, and shuts the audit dispatcher down. Idempotent. After
// Close every submit fails with ErrControllerClosed.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		c.wg.Wait()
		c.cooldown.Stop()
		c.audit.Close()
	})
}

// Loading reports whether a submit is currently in flight. While true,
// further submit operations are rejected with ErrSubmitInFlight.
func (c *Controller) Loading() bool {
	return c != nil && c.busy.Load()
}

// OTPRequired reports whether a login challenge is pending.
func (c *Controller) OTPRequired() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.otpRequired
}

// PendingUserID returns the user id of the pending login challenge, or
// "" when none is active.
func (c *Controller) PendingUserID() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingUserID
}

// PendingEmail returns the email the active challenge was issued for.
func (c *Controller) PendingEmail() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingEmail
}

// ChallengeActivePurpose returns which flow the pending challenge
// belongs to, or PurposeNone.
func (c *Controller) ChallengeActivePurpose() ChallengePurpose {
	if c == nil {
		return PurposeNone
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingPurpose
}

// ResendCooldown reports the seconds left until a manual resend is
// allowed again.
func (c *Controller) ResendCooldown() int {
	if c == nil {
		return 0
	}
	return c.cooldown.Remaining()
}

// MetricsSnapshot copies the flow counters.
func (c *Controller) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.Snapshot()
}

// AuditDropped reports audit events dropped under backpressure.
func (c *Controller) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

// beginSubmit flips the loading flag. Exactly one submit may hold it;
// a second caller is rejected rather than queued, since in-flight
// remote calls are never cancelled.
func (c *Controller) beginSubmit() error {
	if c == nil || c.closed.Load() {
		return ErrControllerClosed
	}
	if !c.busy.CompareAndSwap(false, true) {
		c.metricInc(MetricSubmitRejectedBusy)
		return ErrSubmitInFlight
	}
	if c.closed.Load() {
		c.busy.Store(false)
		return ErrControllerClosed
	}
	return nil
}

func (c *Controller) endSubmit() {
	c.busy.Store(false)
}

func (c *Controller) metricInc(id MetricID) {
	if c == nil {
		return
	}
	c.metrics.Inc(id)
}

// sessionOptions is the fixed persistence policy for every session
// write: same-site none, secure, fixed TTL.
func (c *Controller) sessionOptions() SessionOptions {
	return SessionOptions{
		TTL:      c.config.Session.TTL,
		SameSite: http.SameSiteNoneMode,
		Secure:   true,
	}
}

// establishSession persists the payload from a fully authenticated
// response and returns it. A missing token gets a generated opaque id
// so route guards always have something to key on.
func (c *Controller) establishSession(ctx context.Context, resp *LoginResponse) (SessionPayload, error) {
	payload := SessionPayload{
		Token:     resp.Token,
		UserID:    resp.UserID,
		Email:     resp.Email,
		ExpiresAt: resp.ExpiresAt,
		Claims:    resp.Claims,
	}
	if payload.Token == "" {
		payload.Token = uuid.NewString()
	}
	if payload.ExpiresAt.IsZero() {
		payload.ExpiresAt = time.Now().Add(c.config.Session.TTL)
	}

	if err := c.sessions.Set(ctx, payload, c.sessionOptions()); err != nil {
		return SessionPayload{}, NewRemoteError("", "", 0, err)
	}

	c.metricInc(MetricSessionEstablished)
	c.emitAudit(ctx, auditEventSessionEstablished, "", true, payload.UserID, payload.Email, nil, nil)
	return payload, nil
}

// postLoginRoute picks the intended route captured before the login
// redirect, falling back to the dashboard.
func (c *Controller) postLoginRoute(ctx context.Context) string {
	if path := intendedRouteFromContext(ctx); path != "" {
		return path
	}
	return c.config.Routes.Dashboard
}

// navigateAfter fires a navigation signal once delay elapses, unless
// the context is cancelled or the controller closes first. The delay
// exists so a success notice stays readable before the route changes.
func (c *Controller) navigateAfter(ctx context.Context, delay time.Duration, path string, opts NavigateOptions) {
	if delay <= 0 {
		c.navigator.Navigate(path, opts)
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C:
			c.navigator.Navigate(path, opts)
		case <-ctx.Done():
		case <-c.done:
		}
	}()
}

// clearChallengeLocked resets every challenge field in one step. The
// otpRequired flag and pendingUserID are never cleared independently.
func (c *Controller) clearChallengeLocked() {
	c.otpRequired = false
	c.pendingUserID = ""
	c.pendingEmail = ""
	c.pendingPurpose = PurposeNone
}

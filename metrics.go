package authflow

import "sync/atomic"

// MetricID indexes one flow counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts fully authenticated logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed login submits.
	MetricLoginFailure
	// MetricOTPChallengeIssued counts login submits that produced a
	// one-time-code challenge.
	MetricOTPChallengeIssued
	// MetricOTPConfirmSuccess counts verified challenges.
	MetricOTPConfirmSuccess
	// MetricOTPConfirmFailure counts failed challenge confirmations.
	MetricOTPConfirmFailure
	// MetricOTPResend counts successful code resends.
	MetricOTPResend
	// MetricOTPResendFailure counts failed or rejected resends.
	MetricOTPResendFailure
	// MetricSignupSuccess counts acknowledged registrations.
	MetricSignupSuccess
	// MetricSignupFailure counts rejected or failed registrations.
	MetricSignupFailure
	// MetricSignupUnacknowledged counts register responses without an
	// explicit success flag.
	MetricSignupUnacknowledged
	// MetricResetRequest counts accepted forgot-password requests.
	MetricResetRequest
	// MetricResetRequestFailure counts failed forgot-password requests.
	MetricResetRequestFailure
	// MetricResetConfirmSuccess counts completed password resets.
	MetricResetConfirmSuccess
	// MetricResetConfirmFailure counts failed password resets.
	MetricResetConfirmFailure
	// MetricValidationRejected counts submits stopped before the
	// network by local validation.
	MetricValidationRejected
	// MetricSessionEstablished counts session store writes.
	MetricSessionEstablished
	// MetricSubmitRejectedBusy counts submits rejected while another
	// one was in flight.
	MetricSubmitRejectedBusy
	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the controller's atomic flow counters.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics builds a counter set; a disabled set is inert.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether counting is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc bumps one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. A disabled set snapshots empty.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}

// MetricName returns the stable export name for id, or "" for an
// unknown id.
func MetricName(id MetricID) string {
	switch id {
	case MetricLoginSuccess:
		return "authflow_login_success_total"
	case MetricLoginFailure:
		return "authflow_login_failure_total"
	case MetricOTPChallengeIssued:
		return "authflow_otp_challenge_issued_total"
	case MetricOTPConfirmSuccess:
		return "authflow_otp_confirm_success_total"
	case MetricOTPConfirmFailure:
		return "authflow_otp_confirm_failure_total"
	case MetricOTPResend:
		return "authflow_otp_resend_total"
	case MetricOTPResendFailure:
		return "authflow_otp_resend_failure_total"
	case MetricSignupSuccess:
		return "authflow_signup_success_total"
	case MetricSignupFailure:
		return "authflow_signup_failure_total"
	case MetricSignupUnacknowledged:
		return "authflow_signup_unacknowledged_total"
	case MetricResetRequest:
		return "authflow_reset_request_total"
	case MetricResetRequestFailure:
		return "authflow_reset_request_failure_total"
	case MetricResetConfirmSuccess:
		return "authflow_reset_confirm_success_total"
	case MetricResetConfirmFailure:
		return "authflow_reset_confirm_failure_total"
	case MetricValidationRejected:
		return "authflow_validation_rejected_total"
	case MetricSessionEstablished:
		return "authflow_session_established_total"
	case MetricSubmitRejectedBusy:
		return "authflow_submit_rejected_busy_total"
	default:
		return ""
	}
}

// MetricIDs lists every defined counter id in order.
func MetricIDs() []MetricID {
	ids := make([]MetricID, 0, int(metricIDCount))
	for id := MetricID(0); id < metricIDCount; id++ {
		ids = append(ids, id)
	}
	return ids
}

package authflow

import "errors"

// Builder assembles a Controller. Collaborators are injected here;
// nothing is read from ambient process-wide state.
type Builder struct {
	config    Config
	service   Service
	sessions  SessionStore
	notifier  Notifier
	navigator Navigator
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the configuration. Zero-valued fields are filled
// from defaults during Build.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithService injects the remote auth service client. Required.
func (b *Builder) WithService(s Service) *Builder {
	b.service = s
	return b
}

// WithSessions injects the session store. Required.
func (b *Builder) WithSessions(s SessionStore) *Builder {
	b.sessions = s
	return b
}

// WithNotifier injects the notification sink. Optional; defaults to a
// NoOpNotifier.
func (b *Builder) WithNotifier(n Notifier) *Builder {
	b.notifier = n
	return b
}

// WithNavigator injects the navigation signal target. Required.
func (b *Builder) WithNavigator(n Navigator) *Builder {
	b.navigator = n
	return b
}

// WithAuditSink injects the audit event sink. Optional; without one,
// enabled audit goes to a NoOpSink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles the flow counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the Controller. A
// Builder may be used once.
func (b *Builder) Build() (*Controller, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := applyDefaults(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.service == nil {
		return nil, errors.New("service client required")
	}
	if b.sessions == nil {
		return nil, errors.New("session store required")
	}
	if b.navigator == nil {
		return nil, errors.New("navigator required")
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoOpNotifier{}
	}

	controller := &Controller{
		config:    cfg,
		service:   b.service,
		sessions:  b.sessions,
		notifier:  notifier,
		navigator: b.navigator,
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:   NewMetrics(cfg.Metrics),
		cooldown:  newResendCooldown(cfg.Resend.TickInterval),
		done:      make(chan struct{}),
	}

	b.built = true

	return controller, nil
}

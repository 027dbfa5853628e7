package mailforge

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// Option configures a Mailer.
type Option func(*Mailer)

// WithConfig replaces the mailer configuration. Empty fields get defaults.
func WithConfig(cfg Config) Option {
	return func(m *Mailer) {
		cfg.applyDefaults()
		m.config = cfg
	}
}

// WithFrom sets the default sender identity.
func WithFrom(name, email string) Option {
	return func(m *Mailer) {
		m.config.FromName = name
		m.config.FromEmail = email
	}
}

// WithCharset sets the default charset. Defaults to "UTF-8".
func WithCharset(charset string) Option {
	return func(m *Mailer) {
		if charset != "" {
			m.config.Charset = charset
		}
	}
}

// WithScheduler sets the scheduler used by SendLater.
func WithScheduler(s Scheduler) Option {
	return func(m *Mailer) {
		if s != nil {
			m.scheduler = s
		}
	}
}

// WithScheduleInterval sets the interval passed to the scheduler.
func WithScheduleInterval(d time.Duration) Option {
	return func(m *Mailer) {
		if d >= 0 {
			m.config.ScheduleInterval = d
		}
	}
}

// WithAttachmentResolver sets the resolver for integer attachment ids.
// Without one, integer ids are dropped with a warning.
func WithAttachmentResolver(r AttachmentResolver) Option {
	return func(m *Mailer) {
		if r != nil {
			m.resolver = r
		}
	}
}

// WithLocaleSwitcher replaces the locale switcher.
func WithLocaleSwitcher(s LocaleSwitcher) Option {
	return func(m *Mailer) {
		if s != nil {
			m.switcher = s
		}
	}
}

// WithRenderer sets the renderer used by TemplateMessage values that do
// not carry their own.
func WithRenderer(r *mailer.Renderer) Option {
	return func(m *Mailer) {
		if r != nil {
			m.renderer = r
		}
	}
}

// WithLogger sets the logger.
// If nil, logging is disabled.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mailer) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithTracer sets the tracer for dispatch spans. Defaults to the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(m *Mailer) {
		if t != nil {
			m.tracer = t
		}
	}
}

// WithClock sets the time source used to resolve SendLater expressions.
func WithClock(now func() time.Time) Option {
	return func(m *Mailer) {
		if now != nil {
			m.now = now
		}
	}
}

package mailforge

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/i18n"
	"github.com/dmitrymomot/mailforge/pkg/logger"
	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// Scheduler runs fn once at the given time. Calls with a key that is
// already pending are ignored. interval is the window in which a key is
// considered a duplicate.
type Scheduler interface {
	RegisterSingular(ctx context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error
}

// AlternativeScheduler replaces the configured Scheduler for one SendLater call.
type AlternativeScheduler func(ctx context.Context, at time.Time, msg Mailable) error

// AttachmentResolver maps an attachment id to a readable file path.
type AttachmentResolver interface {
	Resolve(ctx context.Context, id int) (string, bool)
}

// Mailer holds the default sender identity and builds dispatchers.
// Identity set with From or UseCharset applies to the next send only.
type Mailer struct {
	transport MailTransport
	hooks     *hook.Registry
	scheduler Scheduler
	resolver  AttachmentResolver
	switcher  LocaleSwitcher
	renderer  *mailer.Renderer
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
	config    Config

	mu      sync.Mutex
	pending identity
}

// identity is the sender identity of one send.
type identity struct {
	fromName  string
	fromEmail string
	charset   string
}

// New creates a mailer sending through transport.
func New(transport MailTransport, hooks *hook.Registry, opts ...Option) *Mailer {
	m := &Mailer{
		transport: transport,
		hooks:     hooks,
		logger:    logger.NewNope(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	m.config.applyDefaults()
	for _, opt := range opts {
		opt(m)
	}
	if m.switcher == nil {
		m.switcher = i18n.NewSwitcher(m.config.DefaultLocale)
	}
	return m
}

// From sets the sender identity of the next send. Empty values fall back
// to the configured defaults.
func (m *Mailer) From(name, email string) *Mailer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.fromName = name
	m.pending.fromEmail = email
	return m
}

// UseCharset sets the charset of the next send.
func (m *Mailer) UseCharset(charset string) *Mailer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending.charset = charset
	return m
}

// FromName returns the from name the next send will use.
func (m *Mailer) FromName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolve(m.pending).fromName
}

// FromEmail returns the from address the next send will use.
func (m *Mailer) FromEmail() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolve(m.pending).fromEmail
}

// Charset returns the charset the next send will use.
func (m *Mailer) Charset() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolve(m.pending).charset
}

// To starts a composition addressed to recipients. Identity set with From
// and UseCharset is taken by the composition's next send only.
func (m *Mailer) To(recipients any) *Compose {
	return newCompose(m, "", "").To(recipients)
}

// Make starts a composition whose sends use fromName and fromEmail. Empty
// values fall back to the pending identity, then to the defaults.
func (m *Mailer) Make(recipients any, fromName, fromEmail string) *Compose {
	return newCompose(m, fromName, fromEmail).To(recipients)
}

// Send builds msg and dispatches it with the pending identity.
func (m *Mailer) Send(ctx context.Context, msg Mailable) bool {
	return m.send(ctx, msg, m.take())
}

// Raw sends a message without a Mailable. to accepts anything SanitizeEmails
// does; a User recipient sets the locale. attachments hold paths or ids.
func (m *Mailer) Raw(ctx context.Context, to any, subject, body string, attachments []any, headers []string, onSuccess ...Listener) bool {
	id := m.take()
	params := NewMailParams(SanitizeEmails(to), subject, body, headers, m.resolveAttachments(ctx, attachments), localeOf(to))
	return m.newDispatcher(id).OnSuccess(onSuccess...).Dispatch(ctx, params)
}

// Render returns the body of msg rendered in its locale.
func (m *Mailer) Render(ctx context.Context, msg Mailable) (string, error) {
	if isNil(msg) {
		return "", ErrNilMessage
	}
	msg = cloneMailable(msg)
	m.prepare(msg)
	return m.renderBody(ctx, msg, msg.envelope().attrs.Locale)
}

// Hooks returns the hook registry shared with the transport.
func (m *Mailer) Hooks() *hook.Registry { return m.hooks }

func (m *Mailer) send(ctx context.Context, msg Mailable, id identity) bool {
	params, listeners, err := m.build(ctx, msg)
	if err != nil {
		// Listeners describe transport outcomes; nothing was handed to it.
		m.logger.ErrorContext(ctx, "failed to build mail", slog.Any("error", err))
		return false
	}

	d := m.newDispatcher(id)
	d.listeners = listeners
	return d.Dispatch(ctx, params)
}

// build renders msg and snapshots it into MailParams.
func (m *Mailer) build(ctx context.Context, msg Mailable) (*MailParams, Listeners, error) {
	if isNil(msg) {
		return nil, Listeners{}, ErrNilMessage
	}
	// Rendering may fill in the subject or headers; keep that off the caller's value.
	msg = cloneMailable(msg)
	env := msg.envelope()
	listeners := env.Listeners()

	m.prepare(msg)
	body, err := m.renderBody(ctx, msg, env.attrs.Locale)
	if err != nil {
		return nil, listeners, fmt.Errorf("render %s: %w", defaultSubject(msg), err)
	}

	// Read after rendering, the body may set the subject.
	attrs := env.Attributes()
	subject := attrs.Subject
	if subject == "" {
		subject = defaultSubject(msg)
	}

	params := NewMailParams(
		SanitizeEmails(attrs.To),
		subject,
		body,
		attrs.BuildHeaders(),
		m.resolveAttachments(ctx, env.attachments),
		attrs.Locale,
	)
	return params, listeners, nil
}

func (m *Mailer) renderBody(ctx context.Context, msg Mailable, locale string) (string, error) {
	if locale != "" {
		if !isDetached(ctx) && m.switcher.Switch(locale) {
			defer m.switcher.Restore()
		}
		ctx = i18n.WithLocale(ctx, locale)
	}
	return msg.Body(ctx)
}

func (m *Mailer) prepare(msg Mailable) {
	if tm, ok := msg.(templated); ok && m.renderer != nil {
		tm.useRenderer(m.renderer, m.config.DefaultLayout)
	}
}

func (m *Mailer) resolveAttachments(ctx context.Context, items []any) []string {
	paths := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			paths = append(paths, v)
		case fmt.Stringer:
			paths = append(paths, v.String())
		case int:
			paths = m.appendResolved(ctx, paths, v)
		case int64:
			paths = m.appendResolved(ctx, paths, int(v))
		case int32:
			paths = m.appendResolved(ctx, paths, int(v))
		default:
			m.logger.WarnContext(ctx, "unsupported attachment", slog.String("type", fmt.Sprintf("%T", item)))
		}
	}
	return paths
}

func (m *Mailer) appendResolved(ctx context.Context, paths []string, id int) []string {
	if m.resolver == nil {
		m.logger.WarnContext(ctx, "attachment id without resolver", slog.Int("id", id))
		return paths
	}
	path, ok := m.resolver.Resolve(ctx, id)
	if !ok {
		m.logger.WarnContext(ctx, "attachment not found", slog.Int("id", id))
		return paths
	}
	return append(paths, path)
}

func (m *Mailer) newDispatcher(id identity) *Dispatcher {
	return NewDispatcher(m.transport, m.hooks,
		WithDispatchLogger(m.logger),
		WithDispatchTracer(m.tracer),
		WithDispatchLocaleSwitcher(m.switcher),
	).WithFrom(id.fromName, id.fromEmail).WithCharset(id.charset)
}

// take returns the identity of the next send and clears the pending overrides.
func (m *Mailer) take() identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.resolve(m.pending)
	m.pending = identity{}
	return id
}

func (m *Mailer) resolve(id identity) identity {
	if id.fromName == "" {
		id.fromName = m.config.FromName
	}
	if id.fromEmail == "" {
		id.fromEmail = m.config.FromEmail
	}
	if id.charset == "" {
		id.charset = m.config.Charset
	}
	return id
}

func isNil(msg Mailable) bool {
	if msg == nil {
		return true
	}
	v := reflect.ValueOf(msg)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

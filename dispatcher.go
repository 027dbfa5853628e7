package mailforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/i18n"
	"github.com/dmitrymomot/mailforge/pkg/logger"
	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// Hooks owned by this package.
const (
	// HookEmailParams filters the *MailParams of every dispatch. Extra args:
	// the *Dispatcher. Returning anything other than a non-nil *MailParams
	// cancels the dispatch.
	HookEmailParams = "mailforge/email_params"

	// HookDispatched fires after every dispatch that reached the transport,
	// with the *MailParams passed to Dispatch and the *Dispatcher. The
	// params after filtering are available from Dispatcher.Params.
	HookDispatched = "mailforge/dispatched"
)

// FromFilterPriority is the priority of the sender identity filters a
// dispatch installs, late enough to win over most host filters.
const FromFilterPriority = 500

const tracerName = "github.com/dmitrymomot/mailforge"

// MailTransport is the host mail primitive a Dispatcher drives.
// *mailer.Transport implements it.
type MailTransport interface {
	Mail(ctx context.Context, to, subject, body string, headers, attachments []string) bool
	Encoding() string
	SetEncoding(enc string)
}

// LocaleSwitcher changes the process locale for the duration of a send.
// *i18n.Switcher implements it. Its state is process-wide, so it is only
// used by sends on the caller's goroutine; see Detached.
type LocaleSwitcher interface {
	Switch(locale string) bool
	Restore() bool
	IsSwitched() bool
}

type detachedKey struct{}

// Detached marks ctx as belonging to a send that runs apart from its caller,
// such as a scheduler callback or a worker job. Such sends carry the locale
// in ctx only and leave the LocaleSwitcher untouched.
func Detached(ctx context.Context) context.Context {
	return context.WithValue(ctx, detachedKey{}, true)
}

func isDetached(ctx context.Context) bool {
	detached, _ := ctx.Value(detachedKey{}).(bool)
	return detached
}

// Dispatcher runs a single send: it installs temporary hooks, calls the
// transport, runs listener chains and removes everything it installed.
// A Dispatcher is used once.
type Dispatcher struct {
	transport MailTransport
	hooks     *hook.Registry
	switcher  LocaleSwitcher
	logger    *slog.Logger
	tracer    trace.Tracer
	listeners Listeners

	id        string
	fromName  string
	fromEmail string
	charset   string

	mu               sync.Mutex
	params           *MailParams
	err              error
	sent             bool
	failed           bool
	used             bool
	encoding         string
	encodingCaptured bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDispatchLogger sets the dispatcher logger.
func WithDispatchLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDispatchTracer sets the tracer used for dispatch spans.
func WithDispatchTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithDispatchLocaleSwitcher sets the switcher used when params carry a locale.
func WithDispatchLocaleSwitcher(s LocaleSwitcher) DispatcherOption {
	return func(d *Dispatcher) {
		if s != nil {
			d.switcher = s
		}
	}
}

// NewDispatcher creates a dispatcher bound to transport and hooks.
func NewDispatcher(transport MailTransport, hooks *hook.Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		hooks:     hooks,
		switcher:  i18n.NewSwitcher(i18n.DefaultLocale),
		logger:    logger.NewNope(),
		tracer:    otel.Tracer(tracerName),
		id:        uuid.NewString(),
		charset:   "UTF-8",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithFrom sets the sender identity. Empty values leave the host's choice alone.
func (d *Dispatcher) WithFrom(name, email string) *Dispatcher {
	d.fromName = name
	d.fromEmail = email
	return d
}

// WithCharset sets the charset reported through the charset filter.
func (d *Dispatcher) WithCharset(charset string) *Dispatcher {
	if charset != "" {
		d.charset = charset
	}
	return d
}

// OnSuccess appends success listeners.
func (d *Dispatcher) OnSuccess(ls ...Listener) *Dispatcher {
	d.listeners.OnSuccess(ls...)
	return d
}

// OnFailure appends failure listeners.
func (d *Dispatcher) OnFailure(ls ...Listener) *Dispatcher {
	d.listeners.OnFailure(ls...)
	return d
}

func (d *Dispatcher) ID() string        { return d.id }
func (d *Dispatcher) FromName() string  { return d.fromName }
func (d *Dispatcher) FromEmail() string { return d.fromEmail }
func (d *Dispatcher) Charset() string   { return d.charset }

// Params returns the effective parameters of the dispatch, or nil before it ran.
func (d *Dispatcher) Params() *MailParams {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// IsSent reports whether the transport accepted the message.
func (d *Dispatcher) IsSent() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sent
}

// IsFailed reports whether the transport reported a failure.
func (d *Dispatcher) IsFailed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failed
}

// Err returns the failure recorded for the dispatch.
func (d *Dispatcher) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Dispatch sends params. It reports whether the transport accepted the
// message. Hooks and the locale it changes are restored before it returns.
func (d *Dispatcher) Dispatch(ctx context.Context, params *MailParams) bool {
	d.mu.Lock()
	if d.used {
		d.mu.Unlock()
		d.logger.WarnContext(ctx, "dispatcher reused", slog.String("dispatch_id", d.id))
		return false
	}
	d.used = true
	d.mu.Unlock()

	ctx, span := d.tracer.Start(ctx, "mailforge.Dispatcher.Dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("mailforge.dispatch_id", d.id))
	ctx = context.WithValue(ctx, dispatchIDKey{}, d.id)

	if params == nil {
		span.SetStatus(codes.Error, ErrNilMessage.Error())
		return false
	}

	effective, ok := d.hooks.ApplyFilters(HookEmailParams, params, d).(*MailParams)
	if !ok || effective == nil {
		d.logger.DebugContext(ctx, "dispatch cancelled by params filter")
		span.SetStatus(codes.Error, "params discarded")
		return false
	}

	d.mu.Lock()
	d.params = effective
	d.mu.Unlock()

	if effective.To() == "" {
		d.mu.Lock()
		d.err = ErrNoRecipient
		d.mu.Unlock()
		d.logger.DebugContext(ctx, "dispatch skipped", slog.Any("error", ErrNoRecipient))
		span.RecordError(ErrNoRecipient)
		span.SetStatus(codes.Error, ErrNoRecipient.Error())
		return false
	}

	span.SetAttributes(
		attribute.String("mailforge.subject", effective.Subject()),
		attribute.Int("mailforge.recipients", len(strings.Split(effective.To(), ","))),
		attribute.String("mailforge.locale", effective.Locale()),
	)

	scope := d.hooks.NewScope()
	defer func() {
		scope.Close()
		d.hooks.DoAction(HookDispatched, params, d)
	}()

	ctx = d.install(ctx, scope, effective)

	sent := d.send(ctx, effective)

	d.mu.Lock()
	d.sent = sent
	d.mu.Unlock()
	span.SetAttributes(attribute.Bool("mailforge.sent", sent))

	if !sent {
		if err := d.Err(); err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, "send failed")
		return false
	}

	span.SetStatus(codes.Ok, "")
	d.logger.DebugContext(ctx, "mail dispatched", slog.String("subject", effective.Subject()))
	runChain(ctx, d.logger, "success", d.listeners.success, Event{Params: effective, Dispatcher: d})
	return true
}

// install registers the temporary hooks of this dispatch on scope and
// returns ctx carrying the message locale.
func (d *Dispatcher) install(ctx context.Context, scope *hook.Scope, params *MailParams) context.Context {
	scope.AddAction(mailer.HookMailFailed, func(args ...any) {
		if !d.owns(args) {
			return
		}
		d.fail(ctx, deliveryErr(args))
	}, hook.DefaultPriority)

	scope.AddFilter(mailer.HookMailCharset, func(v any, args ...any) any {
		if !d.owns(args) {
			return v
		}
		d.captureEncoding()
		if strings.EqualFold(d.charset, "UTF-8") {
			d.transport.SetEncoding(mailer.EncodingBase64)
		} else {
			d.transport.SetEncoding(mailer.Encoding8Bit)
		}
		return d.charset
	}, hook.DefaultPriority)
	scope.Defer(d.restoreEncoding)

	if locale := params.Locale(); locale != "" {
		if !isDetached(ctx) && d.switcher.Switch(locale) {
			scope.Defer(func() { d.switcher.Restore() })
		}
		ctx = i18n.WithLocale(ctx, locale)
	}

	if d.fromEmail != "" {
		scope.AddFilter(mailer.HookMailFrom, d.override(d.fromEmail), FromFilterPriority)
	}
	if d.fromName != "" {
		scope.AddFilter(mailer.HookMailFromName, d.override(d.fromName), FromFilterPriority)
	}
	return ctx
}

func (d *Dispatcher) override(value string) hook.FilterFunc {
	return func(v any, args ...any) any {
		if !d.owns(args) {
			return v
		}
		return value
	}
}

func (d *Dispatcher) send(ctx context.Context, p *MailParams) (sent bool) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: %v", ErrTransportPanic, r)
			d.logger.ErrorContext(ctx, "mail transport panicked", slog.Any("error", err))
			sent = false
			if !d.IsFailed() {
				d.fail(ctx, err)
			}
		}
	}()
	return d.transport.Mail(ctx, p.To(), p.Subject(), p.Body(), p.Headers(), p.Attachments())
}

func (d *Dispatcher) fail(ctx context.Context, err error) {
	d.mu.Lock()
	d.failed = true
	d.err = err
	params := d.params
	d.mu.Unlock()

	runChain(ctx, d.logger, "failure", d.listeners.failure, Event{Params: params, Dispatcher: d, Err: err})
}

func (d *Dispatcher) captureEncoding() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.encodingCaptured {
		d.encoding = d.transport.Encoding()
		d.encodingCaptured = true
	}
}

func (d *Dispatcher) restoreEncoding() {
	d.mu.Lock()
	enc, captured := d.encoding, d.encodingCaptured
	d.mu.Unlock()
	if captured {
		d.transport.SetEncoding(enc)
	}
}

// owns reports whether a hook invocation belongs to this dispatch. Hook
// calls without a context are attributed to whichever dispatch is running.
func (d *Dispatcher) owns(args []any) bool {
	for _, a := range args {
		if ctx, ok := a.(context.Context); ok {
			id, ok := DispatchID(ctx)
			return !ok || id == d.id
		}
	}
	return true
}

func deliveryErr(args []any) error {
	for _, a := range args {
		if err, ok := a.(error); ok && err != nil {
			return err
		}
	}
	return errors.New("mailforge: delivery failed")
}

type dispatchIDKey struct{}

// DispatchID returns the id of the dispatch running in ctx.
func DispatchID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(dispatchIDKey{}).(string)
	return id, ok && id != ""
}

// LogDispatchID is a logger.ContextExtractor adding the dispatch id to log records.
func LogDispatchID(ctx context.Context) (slog.Attr, bool) {
	if id, ok := DispatchID(ctx); ok {
		return slog.String("dispatch_id", id), true
	}
	return slog.Attr{}, false
}

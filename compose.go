package mailforge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailforge/internal/when"
)

// Compose accumulates recipients, listeners and attachments for one or more
// messages. Nothing is validated until a send. Obtain one from Mailer.To or
// Mailer.Make.
type Compose struct {
	mailer *Mailer
	// Sender given to Mailer.Make; applies to every send of this builder.
	fromName, fromEmail string

	to, cc, bcc any
	locale      string
	attachments []any
	// Distinguishes SetAttachments() with no items from never calling it.
	attachmentsSet bool
	listeners      Listeners
}

func newCompose(m *Mailer, fromName, fromEmail string) *Compose {
	return &Compose{mailer: m, fromName: fromName, fromEmail: fromEmail}
}

// To sets the recipients. A User recipient sets the locale unless one was
// already chosen.
func (c *Compose) To(v any) *Compose {
	c.to = v
	if c.locale == "" {
		c.locale = localeOf(v)
	}
	return c
}

func (c *Compose) Cc(v any) *Compose        { c.cc = v; return c }
func (c *Compose) Bcc(v any) *Compose       { c.bcc = v; return c }
func (c *Compose) Locale(l string) *Compose { c.locale = l; return c }

func (c *Compose) OnSuccess(ls ...Listener) *Compose {
	c.listeners.OnSuccess(ls...)
	return c
}

func (c *Compose) OnFailure(ls ...Listener) *Compose {
	c.listeners.OnFailure(ls...)
	return c
}

// SetAttachments replaces the attachments of the message being sent.
func (c *Compose) SetAttachments(items ...any) *Compose {
	c.attachments = slices.Clone(items)
	c.attachmentsSet = true
	return c
}

// AddAttachment adds attachments on top of the message's own.
func (c *Compose) AddAttachment(items ...any) *Compose {
	c.attachments = append(c.attachments, items...)
	return c
}

// Send fills the composed state into msg and sends it.
func (c *Compose) Send(ctx context.Context, msg Mailable) bool {
	if isNil(msg) {
		c.mailer.logger.ErrorContext(ctx, "compose send", slog.Any("error", ErrNilMessage))
		return false
	}
	return c.mailer.send(ctx, c.fill(msg), c.takeIdentity())
}

// takeIdentity takes the mailer's pending identity for one send and puts the
// Make sender on top of it.
func (c *Compose) takeIdentity() identity {
	id := c.mailer.take()
	if c.fromName != "" {
		id.fromName = c.fromName
	}
	if c.fromEmail != "" {
		id.fromEmail = c.fromEmail
	}
	return id
}

// SendWhen sends msg only if cond holds.
func (c *Compose) SendWhen(ctx context.Context, cond bool, msg Mailable) bool {
	if !cond {
		return false
	}
	return c.Send(ctx, msg)
}

// SendOnAction sends msg when the hook action fires. If the action is firing
// right now, or has fired before, msg is sent immediately. Otherwise one
// callback is registered that sends once and removes itself. It reports
// whether a send happened during the call.
func (c *Compose) SendOnAction(ctx context.Context, action string, msg Mailable, priority int) bool {
	hooks := c.mailer.hooks
	if hooks.DoingAction(action) {
		return c.Send(ctx, msg)
	}

	deferred := Detached(context.WithoutCancel(ctx))
	registered := hooks.OnceUnlessFired(action, func(...any) {
		c.Send(deferred, msg)
	}, priority)
	if !registered {
		return c.Send(ctx, msg)
	}
	return false
}

// SendLater schedules msg for the time described by at: a time.Time, an
// epoch in seconds, a time.Duration from now or a string expression such as
// "next week" or "+2 hours". With an alternative scheduler, it alone
// receives the message.
func (c *Compose) SendLater(ctx context.Context, at any, msg Mailable, alternative ...AlternativeScheduler) error {
	var alt AlternativeScheduler
	if len(alternative) > 0 {
		alt = alternative[0]
	}
	if alt == nil && c.mailer.scheduler == nil {
		return ErrSchedulerNotConfigured
	}
	if isNil(msg) {
		return ErrNilMessage
	}

	ts, err := when.Parse(at, c.mailer.now())
	if err != nil {
		return errors.Join(ErrInvalidSendTime, err)
	}

	if alt != nil {
		return alt(ctx, ts, c.fill(msg))
	}

	key := fmt.Sprintf("mailforge:send:%s:%s", defaultSubject(msg), uuid.NewString())
	err = c.mailer.scheduler.RegisterSingular(ctx, key, c.mailer.config.ScheduleInterval, ts, func(ctx context.Context) error {
		if !c.Send(Detached(ctx), msg) {
			return ErrNotDelivered
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", key, err)
	}

	c.mailer.logger.DebugContext(ctx, "mail scheduled",
		slog.String("key", key),
		slog.Time("at", ts),
	)
	return nil
}

// fill returns a copy of msg carrying the composed state. Unset values
// keep the message's own; builder listeners run after the message's. The
// caller's msg is not modified, so it can be sent again.
func (c *Compose) fill(msg Mailable) Mailable {
	out := cloneMailable(msg)
	env := out.envelope()
	if c.to != nil {
		env.attrs.To = c.to
	}
	if c.cc != nil {
		env.attrs.Cc = c.cc
	}
	if c.bcc != nil {
		env.attrs.Bcc = c.bcc
	}
	if c.locale != "" {
		env.attrs.Locale = c.locale
	}
	if c.attachmentsSet {
		env.attachments = slices.Clone(c.attachments)
	} else {
		env.attachments = append(env.attachments, c.attachments...)
	}
	env.listeners.merge(c.listeners)
	return out
}

// cloneMailable makes a shallow copy of the struct behind msg with its
// own envelope.
func cloneMailable(msg Mailable) Mailable {
	v := reflect.ValueOf(msg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return msg
	}
	cp := reflect.New(v.Elem().Type())
	cp.Elem().Set(v.Elem())
	out, ok := cp.Interface().(Mailable)
	if !ok {
		return msg
	}
	env := out.envelope()
	env.attrs = env.attrs.clone()
	env.attachments = slices.Clone(env.attachments)
	env.listeners = env.listeners.clone()
	return out
}

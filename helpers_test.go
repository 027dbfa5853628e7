package mailforge_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/i18n"
	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

type outbox struct {
	mu      sync.Mutex
	emails  []*mailer.Email
	locales []string
	err     error
}

func (o *outbox) send(ctx context.Context, email *mailer.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	locale, _ := i18n.LocaleFromContext(ctx)
	o.emails = append(o.emails, email)
	o.locales = append(o.locales, locale)
	return nil
}

func (o *outbox) len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.emails)
}

func (o *outbox) last() *mailer.Email {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.emails) == 0 {
		return nil
	}
	return o.emails[len(o.emails)-1]
}

type env struct {
	hooks     *hook.Registry
	transport *mailer.Transport
	outbox    *outbox
}

func newEnv(t *testing.T) *env {
	t.Helper()
	box := &outbox{}
	hooks := hook.New()
	return &env{
		hooks:     hooks,
		outbox:    box,
		transport: mailer.NewTransport(mailer.SenderFunc(box.send), hooks, mailer.Config{FromEmail: "host@example.com", FromName: "Host"}),
	}
}

func (e *env) mailer(opts ...mailforge.Option) *mailforge.Mailer {
	return mailforge.New(e.transport, e.hooks, opts...)
}

type user struct {
	email  string
	locale string
}

func (u user) Email() string  { return u.email }
func (u user) Locale() string { return u.locale }

type WelcomeEmail struct {
	mailforge.Message
	Name string
}

func (w *WelcomeEmail) Body(ctx context.Context) (string, error) {
	locale, _ := i18n.LocaleFromContext(ctx)
	return "Hello " + w.Name + " [" + locale + "]", nil
}

type recordingScheduler struct {
	mu    sync.Mutex
	calls []scheduled
}

type scheduled struct {
	key      string
	interval time.Duration
	at       time.Time
	fn       func(context.Context) error
}

func (s *recordingScheduler) RegisterSingular(_ context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduled{key: key, interval: interval, at: at, fn: fn})
	return nil
}

// track returns a listener appending name to log and returning result.
func track(log *[]string, name string, result bool) mailforge.Listener {
	return mailforge.Callback(func(context.Context, mailforge.Event) bool {
		*log = append(*log, name)
		return result
	})
}

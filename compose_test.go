package mailforge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/i18n"
)

var jan1 = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestCompose_Send(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.mailer()

	var calls []string
	msg := &WelcomeEmail{Name: "Ann"}
	msg.To("old@example.com").Cc("keep@example.com").AddAttachment().OnSuccess(track(&calls, "message", true))

	ok := m.To(user{email: "ann@example.com", locale: "de"}).
		Bcc("audit@example.com").
		OnSuccess(track(&calls, "compose", true)).
		Send(context.Background(), msg)

	require.True(t, ok)
	email := e.outbox.last()
	assert.Equal(t, []string{"ann@example.com"}, email.To)
	assert.Equal(t, []string{"keep@example.com"}, email.CC, "unset builder values keep the message's own")
	assert.Equal(t, []string{"audit@example.com"}, email.BCC)
	assert.Equal(t, "Hello Ann [de]", email.Text)
	assert.Equal(t, []string{"message", "compose"}, calls)

	assert.Equal(t, "old@example.com", msg.Attributes().To, "the caller's message is not modified")
	assert.Len(t, msg.Listeners().Success(), 1)
}

func TestCompose_Make(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.mailer(mailforge.WithFrom("Team", "team@example.com"))

	require.True(t, m.Make("a@example.com", "Support", "").Send(context.Background(), &WelcomeEmail{}))
	assert.Equal(t, "Support <team@example.com>", e.outbox.last().From)
}

func TestCompose_IdentityAppliesToOneSend(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.mailer(mailforge.WithFrom("Team", "team@example.com"))

	c := m.From("Billing", "billing@example.com").UseCharset("ISO-8859-1").To("a@example.com")

	require.True(t, c.Send(context.Background(), &WelcomeEmail{}))
	assert.Equal(t, "Billing <billing@example.com>", e.outbox.last().From)
	assert.Equal(t, "ISO-8859-1", e.outbox.last().Charset)

	require.True(t, c.Send(context.Background(), &WelcomeEmail{}))
	assert.Equal(t, "Team <team@example.com>", e.outbox.last().From)
	assert.Equal(t, "UTF-8", e.outbox.last().Charset)
}

func TestCompose_MakeIdentityKeptAcrossSends(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.mailer(mailforge.WithFrom("Team", "team@example.com"))

	c := m.Make("a@example.com", "Support", "support@example.com")
	require.True(t, c.Send(context.Background(), &WelcomeEmail{}))
	require.True(t, c.Send(context.Background(), &WelcomeEmail{}))
	assert.Equal(t, "Support <support@example.com>", e.outbox.last().From)
	assert.Equal(t, "Team", m.FromName())
}

func TestCompose_SendWhen(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	m := e.mailer()

	assert.False(t, m.To("a@example.com").SendWhen(context.Background(), false, &WelcomeEmail{}))
	assert.Zero(t, e.outbox.len())
	assert.True(t, m.To("a@example.com").SendWhen(context.Background(), true, &WelcomeEmail{}))
	assert.Equal(t, 1, e.outbox.len())
}

func TestCompose_SendOnAction(t *testing.T) {
	t.Parallel()

	t.Run("before the action fires", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		m := e.mailer()

		sent := m.To("a@example.com").SendOnAction(context.Background(), "user_registered", &WelcomeEmail{}, hook.DefaultPriority)
		assert.False(t, sent)
		assert.Zero(t, e.outbox.len())
		assert.True(t, e.hooks.HasAction("user_registered"))

		e.hooks.DoAction("user_registered")
		assert.Equal(t, 1, e.outbox.len())
		assert.False(t, e.hooks.HasAction("user_registered"))

		e.hooks.DoAction("user_registered")
		assert.Equal(t, 1, e.outbox.len(), "sends once")
	})

	t.Run("after the action fired", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		m := e.mailer()
		e.hooks.DoAction("user_registered")

		sent := m.To("a@example.com").SendOnAction(context.Background(), "user_registered", &WelcomeEmail{}, hook.DefaultPriority)
		assert.True(t, sent)
		assert.Equal(t, 1, e.outbox.len())
		assert.False(t, e.hooks.HasAction("user_registered"))
	})

	t.Run("while the action fires", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		m := e.mailer()

		var sent bool
		e.hooks.AddAction("user_registered", func(...any) {
			sent = m.To("a@example.com").SendOnAction(context.Background(), "user_registered", &WelcomeEmail{}, hook.DefaultPriority)
		}, hook.DefaultPriority)
		e.hooks.DoAction("user_registered")

		assert.True(t, sent)
		assert.Equal(t, 1, e.outbox.len())
	})
}

func TestCompose_SendLater(t *testing.T) {
	t.Parallel()

	newMailer := func(t *testing.T) (*env, *recordingScheduler, *mailforge.Mailer) {
		t.Helper()
		e := newEnv(t)
		s := &recordingScheduler{}
		m := e.mailer(
			mailforge.WithScheduler(s),
			mailforge.WithScheduleInterval(time.Minute),
			mailforge.WithClock(func() time.Time { return jan1 }),
		)
		return e, s, m
	}

	t.Run("relative expression", func(t *testing.T) {
		t.Parallel()
		e, s, m := newMailer(t)

		require.NoError(t, m.To("a@example.com").SendLater(context.Background(), "next week", &WelcomeEmail{Name: "Ann"}))
		require.Len(t, s.calls, 1)
		call := s.calls[0]
		assert.Equal(t, time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC), call.at.UTC())
		assert.Equal(t, time.Minute, call.interval)
		assert.Regexp(t, `^mailforge:send:WelcomeEmail:[0-9a-f-]{36}$`, call.key)
		assert.Zero(t, e.outbox.len())

		require.NoError(t, call.fn(context.Background()))
		require.Equal(t, 1, e.outbox.len())
		assert.Equal(t, "Hello Ann []", e.outbox.last().Text)
	})

	t.Run("callback keeps locale in context", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		s := &recordingScheduler{}
		switcher := i18n.NewSwitcher("en")
		m := e.mailer(
			mailforge.WithScheduler(s),
			mailforge.WithLocaleSwitcher(switcher),
			mailforge.WithClock(func() time.Time { return jan1 }),
		)

		var switched bool
		msg := &WelcomeEmail{Name: "Ann"}
		msg.Locale("de").OnSuccess(mailforge.Callback(func(context.Context, mailforge.Event) bool {
			switched = switcher.IsSwitched()
			return true
		}))

		require.NoError(t, m.To("a@example.com").SendLater(context.Background(), time.Hour, msg))
		require.Len(t, s.calls, 1)
		require.NoError(t, s.calls[0].fn(context.Background()))

		assert.Equal(t, "Hello Ann [de]", e.outbox.last().Text)
		assert.Equal(t, []string{"de"}, e.outbox.locales)
		assert.False(t, switched)
		assert.Equal(t, "en", switcher.Locale())
	})

	t.Run("epoch", func(t *testing.T) {
		t.Parallel()
		_, s, m := newMailer(t)

		require.NoError(t, m.To("a@example.com").SendLater(context.Background(), 1700000000, &WelcomeEmail{}))
		require.Len(t, s.calls, 1)
		assert.Equal(t, int64(1700000000), s.calls[0].at.Unix())
	})

	t.Run("distinct keys", func(t *testing.T) {
		t.Parallel()
		_, s, m := newMailer(t)

		c := m.To("a@example.com")
		require.NoError(t, c.SendLater(context.Background(), time.Hour, &WelcomeEmail{}))
		require.NoError(t, c.SendLater(context.Background(), time.Hour, &WelcomeEmail{}))
		require.Len(t, s.calls, 2)
		assert.NotEqual(t, s.calls[0].key, s.calls[1].key)
	})

	t.Run("invalid time", func(t *testing.T) {
		t.Parallel()
		_, s, m := newMailer(t)

		err := m.To("a@example.com").SendLater(context.Background(), "not-a-date", &WelcomeEmail{})
		assert.ErrorIs(t, err, mailforge.ErrInvalidSendTime)
		assert.Empty(t, s.calls)
	})

	t.Run("undelivered", func(t *testing.T) {
		t.Parallel()
		_, s, m := newMailer(t)

		require.NoError(t, m.To("nobody").SendLater(context.Background(), "+1 hour", &WelcomeEmail{}))
		require.Len(t, s.calls, 1)
		assert.ErrorIs(t, s.calls[0].fn(context.Background()), mailforge.ErrNotDelivered)
	})

	t.Run("no scheduler", func(t *testing.T) {
		t.Parallel()
		m := newEnv(t).mailer()

		err := m.To("a@example.com").SendLater(context.Background(), "not-a-date", &WelcomeEmail{})
		assert.ErrorIs(t, err, mailforge.ErrSchedulerNotConfigured)
	})

	t.Run("alternative scheduler", func(t *testing.T) {
		t.Parallel()
		_, s, m := newMailer(t)

		var (
			gotAt  time.Time
			gotMsg mailforge.Mailable
		)
		alt := func(_ context.Context, at time.Time, msg mailforge.Mailable) error {
			gotAt, gotMsg = at, msg
			return nil
		}

		require.NoError(t, m.To("a@example.com").SendLater(context.Background(), "tomorrow", &WelcomeEmail{}, alt))
		assert.Empty(t, s.calls)
		assert.Equal(t, jan1.AddDate(0, 0, 1), gotAt.UTC())
		require.IsType(t, &WelcomeEmail{}, gotMsg)
		assert.Equal(t, "a@example.com", gotMsg.(*WelcomeEmail).Attributes().To)
	})
}

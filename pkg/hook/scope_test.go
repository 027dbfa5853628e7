package hook_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/pkg/hook"
)

func TestScope_Close(t *testing.T) {
	t.Parallel()

	t.Run("removes exactly what it added", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		foreign := r.AddFilter("mail_from", func(v any, _ ...any) any { return v }, hook.DefaultPriority)

		s := r.NewScope()
		s.AddFilter("mail_from", func(v any, _ ...any) any { return "scoped" }, 500)
		s.AddAction("mail_failed", func(_ ...any) {}, hook.DefaultPriority)
		require.Equal(t, 2, s.Len())
		require.Equal(t, "scoped", r.ApplyFilters("mail_from", "x"))

		s.Close()

		require.Equal(t, 0, s.Len())
		require.False(t, r.HasAction("mail_failed"))
		require.True(t, r.HasFilter("mail_from"))
		require.True(t, r.RemoveFilter("mail_from", foreign))
	})

	t.Run("releases in reverse order exactly once", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		s := r.NewScope()
		var order []int
		s.Defer(func() { order = append(order, 1) })
		s.Defer(func() { order = append(order, 2) })
		s.Defer(func() { order = append(order, 3) })

		s.Close()
		s.Close()

		require.Equal(t, []int{3, 2, 1}, order)
	})

	t.Run("runs remaining releases when one panics", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		s := r.NewScope()
		ran := false
		s.Defer(func() { ran = true })
		s.Defer(func() { panic("boom") })

		require.PanicsWithValue(t, "boom", s.Close)
		require.True(t, ran)
	})
}

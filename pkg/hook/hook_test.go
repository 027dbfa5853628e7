package hook_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/pkg/hook"
)

func TestRegistry_ApplyFilters(t *testing.T) {
	t.Parallel()

	t.Run("returns value unchanged without filters", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		require.Equal(t, "value", r.ApplyFilters("missing", "value"))
	})

	t.Run("runs filters by priority then registration order", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		appendFilter := func(s string) hook.FilterFunc {
			return func(v any, _ ...any) any { return v.(string) + s }
		}
		r.AddFilter("f", appendFilter("c"), 20)
		r.AddFilter("f", appendFilter("a"), 10)
		r.AddFilter("f", appendFilter("b"), 10)
		r.AddFilter("f", appendFilter("0"), 1)

		require.Equal(t, ">0abc", r.ApplyFilters("f", ">"))
	})

	t.Run("passes extra arguments", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		var got []any
		r.AddFilter("f", func(v any, args ...any) any {
			got = args
			return v
		}, hook.DefaultPriority)

		r.ApplyFilters("f", 1, "x", 2)
		require.Equal(t, []any{"x", 2}, got)
	})
}

func TestRegistry_RemoveFilter(t *testing.T) {
	t.Parallel()

	r := hook.New()
	id := r.AddFilter("f", func(v any, _ ...any) any { return "changed" }, hook.DefaultPriority)
	require.True(t, r.HasFilter("f"))

	require.True(t, r.RemoveFilter("f", id))
	require.False(t, r.RemoveFilter("f", id))
	require.False(t, r.HasFilter("f"))
	require.Equal(t, "orig", r.ApplyFilters("f", "orig"))
}

func TestRegistry_DoAction(t *testing.T) {
	t.Parallel()

	t.Run("tracks fired count and current action", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		var (
			current string
			didIn   int
		)
		r.AddAction("init", func(_ ...any) {
			current = r.CurrentAction()
			didIn = r.DidAction("init")
		}, hook.DefaultPriority)

		require.Equal(t, 0, r.DidAction("init"))
		r.DoAction("init")
		r.DoAction("init")

		assert.Equal(t, "init", current)
		assert.Equal(t, 2, didIn)
		assert.Equal(t, 2, r.DidAction("init"))
		assert.Empty(t, r.CurrentAction())
	})

	t.Run("nested actions report innermost", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		var inner, outerAfter string
		r.AddAction("outer", func(_ ...any) {
			r.DoAction("inner")
			outerAfter = r.CurrentAction()
		}, hook.DefaultPriority)
		r.AddAction("inner", func(_ ...any) {
			inner = r.CurrentAction()
			assert.True(t, r.DoingAction("outer"))
		}, hook.DefaultPriority)

		r.DoAction("outer")
		assert.Equal(t, "inner", inner)
		assert.Equal(t, "outer", outerAfter)
	})

	t.Run("removal during firing does not skip others", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		var calls []string
		var first hook.ID
		first = r.AddAction("a", func(_ ...any) {
			calls = append(calls, "first")
			r.RemoveAction("a", first)
		}, hook.DefaultPriority)
		r.AddAction("a", func(_ ...any) { calls = append(calls, "second") }, hook.DefaultPriority)

		r.DoAction("a")
		r.DoAction("a")
		require.Equal(t, []string{"first", "second", "second"}, calls)
	})
}

func TestRegistry_OnceUnlessFired(t *testing.T) {
	t.Parallel()

	t.Run("registers before the action fired and runs once", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		calls := 0
		registered := r.OnceUnlessFired("ready", func(_ ...any) { calls++ }, hook.DefaultPriority)
		require.True(t, registered)
		require.True(t, r.HasAction("ready"))

		r.DoAction("ready")
		r.DoAction("ready")

		require.Equal(t, 1, calls)
		require.False(t, r.HasAction("ready"))
	})

	t.Run("refuses after the action fired", func(t *testing.T) {
		t.Parallel()
		r := hook.New()
		r.DoAction("ready")

		registered := r.OnceUnlessFired("ready", func(_ ...any) {}, hook.DefaultPriority)
		require.False(t, registered)
		require.False(t, r.HasAction("ready"))
	})
}

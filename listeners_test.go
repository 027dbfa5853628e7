package mailforge_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge"
)

type seenKey struct{}

// seen collects what handler listeners observe; it travels in ctx.
type seen struct {
	counts []int
	names  []string
}

func seenFrom(ctx context.Context) *seen {
	s, _ := ctx.Value(seenKey{}).(*seen)
	return s
}

type counter struct{ n int }

func (c *counter) Handle(ctx context.Context, _ mailforge.Event) bool {
	c.n++
	s := seenFrom(ctx)
	s.counts = append(s.counts, c.n)
	s.names = append(s.names, "counter")
	return true
}

type stopper struct{}

func (*stopper) Handle(ctx context.Context, _ mailforge.Event) bool {
	s := seenFrom(ctx)
	s.names = append(s.names, "stopper")
	return false
}

type failureRecorder struct{}

func (*failureRecorder) Handle(ctx context.Context, e mailforge.Event) bool {
	s := seenFrom(ctx)
	if e.Err != nil {
		s.names = append(s.names, "failure")
	}
	return true
}

func TestHandler_FreshInstancePerCall(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := &seen{}
	ctx := context.WithValue(context.Background(), seenKey{}, s)

	listener := mailforge.Handler[counter]()
	d := mailforge.NewDispatcher(e.transport, e.hooks).
		OnSuccess(listener, mailforge.Handler[counter](), listener)

	require.True(t, d.Dispatch(ctx, params("a@example.com")))
	assert.Equal(t, []int{1, 1, 1}, s.counts)
	assert.Equal(t, "mailforge_test.counter", listener.Name())
}

func TestHandler_FalseStopsChain(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	s := &seen{}
	ctx := context.WithValue(context.Background(), seenKey{}, s)

	d := mailforge.NewDispatcher(e.transport, e.hooks).
		OnSuccess(
			mailforge.Handler[counter](),
			mailforge.Handler[stopper](),
			mailforge.Handler[counter](),
		)

	require.True(t, d.Dispatch(ctx, params("a@example.com")))
	assert.Equal(t, []string{"counter", "stopper"}, s.names)
	assert.Equal(t, []int{1}, s.counts)
}

func TestHandler_FailureChain(t *testing.T) {
	t.Parallel()

	e := newEnv(t)
	e.outbox.err = errors.New("mailbox full")
	s := &seen{}
	ctx := context.WithValue(context.Background(), seenKey{}, s)

	d := mailforge.NewDispatcher(e.transport, e.hooks).
		OnSuccess(mailforge.Handler[counter]()).
		OnFailure(
			mailforge.Handler[failureRecorder](),
			mailforge.Handler[stopper](),
			mailforge.Handler[counter](),
		)

	assert.False(t, d.Dispatch(ctx, params("a@example.com")))
	assert.Equal(t, []string{"failure", "stopper"}, s.names, "success chain skipped, failure chain stops at false")
	assert.Empty(t, s.counts)
}

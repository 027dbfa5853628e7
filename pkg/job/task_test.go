package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

type testTask struct {
	got testPayload
	err error
}

func (t *testTask) Name() string { return "test_task" }

func (t *testTask) Handle(_ context.Context, p testPayload) error {
	t.got = p
	return t.err
}

func TestTaskRegistry(t *testing.T) {
	t.Parallel()

	r := newTaskRegistry()
	assert.Empty(t, r.names())

	r.register("b", periodicTask(func(context.Context) error { return nil }))
	r.register("a", typedTask[testPayload, *testTask]{task: &testTask{}})

	_, ok := r.get("a")
	assert.True(t, ok)
	_, ok = r.get("missing")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "b"}, r.names())
}

func TestTypedTask_Execute(t *testing.T) {
	t.Parallel()

	t.Run("decodes payload", func(t *testing.T) {
		t.Parallel()
		task := &testTask{}
		raw, err := json.Marshal(testPayload{To: "a@example.com", Subject: "Hi"})
		require.NoError(t, err)

		require.NoError(t, typedTask[testPayload, *testTask]{task: task}.Execute(context.Background(), raw))
		assert.Equal(t, testPayload{To: "a@example.com", Subject: "Hi"}, task.got)
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()
		task := &testTask{}
		require.NoError(t, typedTask[testPayload, *testTask]{task: task}.Execute(context.Background(), nil))
		assert.Zero(t, task.got)
	})

	t.Run("invalid payload", func(t *testing.T) {
		t.Parallel()
		err := typedTask[testPayload, *testTask]{task: &testTask{}}.Execute(context.Background(), json.RawMessage(`{`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("handler error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		err := typedTask[testPayload, *testTask]{task: &testTask{err: boom}}.Execute(context.Background(), nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestDeferredExecutor(t *testing.T) {
	t.Parallel()

	store := newCallbackStore()
	exec := &deferredExecutor{callbacks: store}

	var calls int
	require.True(t, store.add("k1", func(context.Context) error {
		calls++
		return nil
	}))
	assert.False(t, store.add("k1", func(context.Context) error { return nil }), "pending key is kept")

	raw, err := json.Marshal(deferredPayload{Key: "k1"})
	require.NoError(t, err)

	require.NoError(t, exec.Execute(context.Background(), raw))
	assert.Equal(t, 1, calls)
	assert.Zero(t, store.len(), "callback released after success")

	err = exec.Execute(context.Background(), raw)
	assert.ErrorIs(t, err, ErrCallbackLost)

	boom := errors.New("boom")
	store.add("k2", func(context.Context) error { return boom })
	raw2, _ := json.Marshal(deferredPayload{Key: "k2"})
	assert.ErrorIs(t, exec.Execute(context.Background(), raw2), boom)
	assert.Equal(t, 1, store.len(), "kept for retry")

	exec.Abandon(raw2)
	assert.Zero(t, store.len())
}

package job

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildJobArgs(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		args, opts, err := buildJobArgs("send", nil)
		require.NoError(t, err)
		assert.Equal(t, "send", args.TaskName)
		assert.Empty(t, args.Payload)
		assert.Empty(t, args.UniqueKey)
		assert.Empty(t, opts.Queue)
		assert.False(t, opts.UniqueOpts.ByArgs)
	})

	t.Run("all options", func(t *testing.T) {
		t.Parallel()
		at := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
		payload := testPayload{To: "a@example.com", Subject: "Hi"}

		args, opts, err := buildJobArgs("send", payload,
			InQueue("mail"),
			InQueue(""),
			ScheduledAt(at),
			MaxAttempts(3),
			MaxAttempts(0),
			Priority(2),
			Tags("deferred", "mail"),
			UniqueKey("mailforge:send:Welcome:1"),
			UniqueFor(time.Hour),
		)
		require.NoError(t, err)

		var decoded testPayload
		require.NoError(t, json.Unmarshal(args.Payload, &decoded))
		assert.Equal(t, payload, decoded)
		assert.Equal(t, "mailforge:send:Welcome:1", args.UniqueKey)
		assert.Equal(t, "mail", opts.Queue)
		assert.Equal(t, at, opts.ScheduledAt)
		assert.Equal(t, 3, opts.MaxAttempts)
		assert.Equal(t, 2, opts.Priority)
		assert.Equal(t, []string{"deferred", "mail"}, opts.Tags)
		assert.True(t, opts.UniqueOpts.ByArgs)
		assert.Equal(t, time.Hour, opts.UniqueOpts.ByPeriod)
	})

	t.Run("unique period without key is ignored", func(t *testing.T) {
		t.Parallel()
		_, opts, err := buildJobArgs("send", nil, UniqueFor(time.Hour))
		require.NoError(t, err)
		assert.False(t, opts.UniqueOpts.ByArgs)
		assert.Zero(t, opts.UniqueOpts.ByPeriod)
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		t.Parallel()
		_, _, err := buildJobArgs("send", make(chan int))
		assert.Error(t, err)
	})

	t.Run("scheduled in", func(t *testing.T) {
		t.Parallel()
		before := time.Now()
		_, opts, err := buildJobArgs("send", nil, ScheduledIn(time.Minute))
		require.NoError(t, err)
		assert.WithinDuration(t, before.Add(time.Minute), opts.ScheduledAt, time.Second)
	})
}

func TestTaskArgs_Kind(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "mailforge:task", taskArgs{}.Kind())
}

func TestNewManager_NilPool(t *testing.T) {
	t.Parallel()
	_, err := NewManager(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)

	_, err = NewEnqueuer(nil)
	assert.ErrorIs(t, err, ErrPoolRequired)
}

func TestParseCronSchedule(t *testing.T) {
	t.Parallel()

	schedule, err := parseCronSchedule("0 * * * *")
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	next := schedule.Next(base)
	assert.Equal(t, time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC), next)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), schedule.Next(next))

	for _, expr := range []string{"", "* * *", "* * * * * *", "60 * * * *", "not a cron expression"} {
		_, err := parseCronSchedule(expr)
		assert.Error(t, err, expr)
	}
}

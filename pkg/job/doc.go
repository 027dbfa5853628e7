// Package job provides schedulers for deferred sends and a River worker
// for background tasks.
//
// Every scheduler implements
//
//	RegisterSingular(ctx, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error
//
// which runs fn once at at. A key that is already pending is ignored and
// interval is the window within which a key counts as a duplicate.
//
//   - Memory: timers in the current process.
//   - Redis: a sorted set of due times with uniqueness locks shared by all
//     instances. Call Run to poll.
//   - Manager: River jobs in Postgres. Also runs tasks registered with
//     WithTask and cron tasks registered with WithScheduledTask.
//
// Callbacks are closures and stay in the process that registered them.
// For sends that must survive a restart, enqueue a task with a serializable
// payload instead:
//
//	e, _ := job.NewEnqueuer(pool)
//	_ = e.Enqueue(ctx, "mailforge:send_raw", payload, job.ScheduledAt(at))
//
// and register the task on the worker:
//
//	m, _ := job.NewManager(pool,
//		job.WithTask[RawPayload](&SendRaw{mailer: mailer}),
//		job.WithScheduledTask(&PruneAttachments{dir: dir}),
//	)
//	_ = m.Start(ctx)
package job

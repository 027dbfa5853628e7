package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/db"
	"github.com/dmitrymomot/mailforge/pkg/job"
	"github.com/dmitrymomot/mailforge/pkg/redis"
)

// Schedulers selectable with send --scheduler.
const (
	schedulerMemory = "memory"
	schedulerRedis  = "redis"
	schedulerRiver  = "river"
)

func sendCommand() *cli.Command {
	flags := append(messageFlags(),
		&cli.StringFlag{Name: "from-name", Usage: "sender name for this message"},
		&cli.StringFlag{Name: "from-email", Usage: "sender address for this message"},
		&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Usage: "markdown template in MAILFORGE_TEMPLATES_DIR"},
		&cli.StringFlag{Name: "layout", Usage: "layout for --template (default MAILFORGE_DEFAULT_LAYOUT)"},
		&cli.StringFlag{Name: "data", Usage: "template data as a JSON object"},
		&cli.StringFlag{Name: "at", Usage: `send time: "+10 minutes", "tomorrow 9:00", "90s", a date, or "@<unix seconds>"`},
		&cli.StringFlag{Name: "scheduler", Usage: "memory, redis or river; used with --at", Value: schedulerMemory},
	)

	return &cli.Command{
		Name:   "send",
		Usage:  "send a message now or wait and send it at --at",
		Flags:  flags,
		Action: runSend,
	}
}

func runSend(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	p, err := payloadFromFlags(c)
	if err != nil {
		return err
	}

	at := c.String("at")
	var (
		sched *awaitScheduler
		opts  []mailforge.Option
	)
	if at != "" {
		inner, s, err := newScheduler(ctx, c.String("scheduler"), cfg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()
			if err := s(shutdownCtx); err != nil {
				newLogger(cfg).Error("scheduler shutdown failed", slog.Any("error", err))
			}
		}()
		sched = newAwaitScheduler(inner)
		opts = append(opts, mailforge.WithScheduler(sched))
	}

	d, err := newDeps(ctx, cfg, opts...)
	if err != nil {
		return err
	}

	var msg mailforge.Mailable
	switch {
	case c.String("template") != "":
		if msg, err = templateMessage(c, p); err != nil {
			return err
		}
	case p.Body != "":
		msg = p.Message()
	default:
		return errNoBody
	}

	b := compose(d.mailer, c, p).OnFailure(mailforge.Callback(func(ctx context.Context, e mailforge.Event) bool {
		d.logger.ErrorContext(ctx, "message not delivered", slog.Any("error", e.Err))
		return true
	}))

	if at == "" {
		if !b.Send(ctx, msg) {
			return mailforge.ErrNotDelivered
		}
		return nil
	}

	if err := b.SendLater(ctx, at, msg); err != nil {
		return err
	}
	d.logger.InfoContext(ctx, "waiting for scheduled send", slog.String("at", at))

	select {
	case err := <-sched.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newScheduler returns the scheduler for name and a function releasing
// its resources.
func newScheduler(ctx context.Context, name string, cfg *config) (mailforge.Scheduler, func(context.Context) error, error) {
	log := newLogger(cfg)

	switch name {
	case schedulerMemory, "":
		mem := job.NewMemory(job.WithMemoryLogger(log))
		return mem, mem.Stop, nil

	case schedulerRedis:
		client, err := redis.Open(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		r, err := job.NewRedis(client, job.WithRedisLogger(log))
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}

		runCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := r.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("redis scheduler stopped", slog.Any("error", err))
			}
		}()
		return r, func(context.Context) error {
			cancel()
			<-done
			return client.Close()
		}, nil

	case schedulerRiver:
		dbCfg, err := loadDBConfig()
		if err != nil {
			return nil, nil, err
		}
		pool, err := db.Connect(ctx, dbCfg)
		if err != nil {
			return nil, nil, err
		}
		mgr, err := job.NewManager(pool, job.WithLogger(log))
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		if err := mgr.Start(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return mgr, func(ctx context.Context) error {
			defer pool.Close()
			return mgr.Stop(ctx)
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown scheduler %q", name)
	}
}

// awaitScheduler reports the result of the first callback it registers
// on done, so a one-shot command can exit after the send.
type awaitScheduler struct {
	next mailforge.Scheduler
	done chan error
}

func newAwaitScheduler(next mailforge.Scheduler) *awaitScheduler {
	return &awaitScheduler{next: next, done: make(chan error, 1)}
}

func (a *awaitScheduler) RegisterSingular(ctx context.Context, key string, interval time.Duration, at time.Time, fn func(context.Context) error) error {
	return a.next.RegisterSingular(ctx, key, interval, at, func(ctx context.Context) error {
		err := fn(ctx)
		select {
		case a.done <- err:
		default:
		}
		return err
	})
}

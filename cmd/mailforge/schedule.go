package main

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge/internal/tasks"
	"github.com/dmitrymomot/mailforge/internal/when"
	"github.com/dmitrymomot/mailforge/pkg/db"
	"github.com/dmitrymomot/mailforge/pkg/job"
)

func scheduleCommand() *cli.Command {
	flags := append(messageFlags(),
		&cli.StringFlag{Name: "at", Usage: "send time; empty sends as soon as a worker picks it up"},
		&cli.IntFlag{Name: "max-attempts", Usage: "delivery attempts before giving up", Value: 5},
		&cli.StringFlag{Name: "unique-key", Usage: "skip the job if one with this key is already queued"},
		&cli.DurationFlag{Name: "unique-for", Usage: "how long --unique-key blocks duplicates", Value: time.Hour},
	)

	return &cli.Command{
		Name:   "schedule",
		Usage:  "queue a message in PostgreSQL for the worker to deliver",
		Flags:  flags,
		Action: runSchedule,
	}
}

func runSchedule(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	p, err := payloadFromFlags(c)
	if err != nil {
		return err
	}
	if p.Body == "" {
		return errNoBody
	}
	if err := p.Validate(); err != nil {
		return err
	}

	opts := []job.EnqueueOption{
		job.MaxAttempts(c.Int("max-attempts")),
		job.Tags("cli"),
	}
	if raw := c.String("at"); raw != "" {
		at, err := when.Parse(raw, time.Now())
		if err != nil {
			return err
		}
		opts = append(opts, job.ScheduledAt(at))
	}
	if key := c.String("unique-key"); key != "" {
		opts = append(opts, job.UniqueKey(key), job.UniqueFor(c.Duration("unique-for")))
	}

	dbCfg, err := loadDBConfig()
	if err != nil {
		return err
	}
	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	enq, err := job.NewEnqueuer(pool, job.WithEnqueuerLogger(log))
	if err != nil {
		return err
	}
	if err := enq.Enqueue(ctx, tasks.SendRawName, p, opts...); err != nil {
		return err
	}

	log.InfoContext(ctx, "message queued",
		slog.Any("to", p.To),
		slog.String("subject", p.Subject),
		slog.String("at", c.String("at")),
	)
	return nil
}

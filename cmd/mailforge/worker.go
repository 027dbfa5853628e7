package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge/internal/tasks"
	"github.com/dmitrymomot/mailforge/pkg/db"
	"github.com/dmitrymomot/mailforge/pkg/job"
)

func workerCommand() *cli.Command {
	return &cli.Command{
		Name:  "worker",
		Usage: "deliver queued messages until interrupted",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "workers", Usage: "concurrent deliveries", Value: 10},
			&cli.StringFlag{Name: "prune-schedule", Usage: "cron expression for attachment cleanup", Value: "0 * * * *"},
			&cli.DurationFlag{Name: "shutdown-timeout", Usage: "how long to wait for running deliveries", Value: 30 * time.Second},
		},
		Action: runWorker,
	}
}

func runWorker(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	d, err := newDeps(ctx, cfg)
	if err != nil {
		return err
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

	opts := []job.Option{
		job.WithLogger(d.logger),
		job.WithMaxWorkers(c.Int("workers")),
		job.WithTask[tasks.RawPayload](tasks.NewSendRaw(d.mailer)),
	}
	if d.attachments != nil {
		opts = append(opts, job.WithScheduledTask(tasks.NewPruneAttachments(d.attachments, c.String("prune-schedule"), d.logger)))
	}

	mgr, err := job.NewManager(pool, opts...)
	if err != nil {
		return err
	}
	if err := mgr.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	d.logger.Info("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := mgr.Stop(shutdownCtx); err != nil && !errors.Is(err, job.ErrNotStarted) {
		d.logger.Error("worker shutdown failed", slog.Any("error", err))
		return err
	}

	d.logger.Info("worker stopped")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge/pkg/db"
	"github.com/dmitrymomot/mailforge/pkg/redis"
)

var errCheckFailed = errors.New("one or more checks failed")

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "verify the provider config and reachability of the scheduler backends",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "redis", Usage: "ping REDIS_URL"},
			&cli.BoolFlag{Name: "db", Usage: "ping DATABASE_CONN_URL and look for the job tables"},
		},
		Action: runCheck,
	}
}

func runCheck(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	log := newLogger(cfg)
	failed := false
	report := func(name string, err error) {
		if err != nil {
			failed = true
			fmt.Fprintf(c.App.Writer, "%-8s FAIL %v\n", name, err)
			return
		}
		fmt.Fprintf(c.App.Writer, "%-8s ok\n", name)
	}

	_, err = newSender(ctx, cfg, log)
	report("provider", err)

	if c.Bool("redis") {
		report("redis", checkRedis(ctx, cfg))
	}
	if c.Bool("db") {
		report("db", checkDB(ctx))
	}

	if failed {
		return errCheckFailed
	}
	return nil
}

func checkRedis(ctx context.Context, cfg *config) error {
	rcfg := cfg.Redis
	rcfg.RetryAttempts = 1
	client, err := redis.Open(ctx, rcfg)
	if err != nil {
		return err
	}
	defer client.Close()
	return redis.Healthcheck(client)(ctx)
}

func checkDB(ctx context.Context) error {
	dbCfg, err := loadDBConfig()
	if err != nil {
		return err
	}
	dbCfg.RetryAttempts = 1
	pool, err := db.Connect(ctx, dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()
	return db.Healthcheck(pool)(ctx)
}

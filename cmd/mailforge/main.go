// Command mailforge sends, schedules and works mail jobs from the shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mailforge",
		Usage: "compose and deliver email through the configured provider",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-file",
				Usage:   "dotenv file loaded before reading the environment",
				Value:   ".env",
				EnvVars: []string{"MAILFORGE_ENV_FILE"},
			},
		},
		Commands: []*cli.Command{
			sendCommand(),
			scheduleCommand(),
			workerCommand(),
			migrateCommand(),
			checkCommand(),
		},
	}
}

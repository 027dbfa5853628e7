package main

import (
	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge/pkg/db"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or upgrade the job queue tables",
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			dbCfg, err := loadDBConfig()
			if err != nil {
				return err
			}

			pool, err := db.Connect(c.Context, dbCfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			return db.Migrate(c.Context, pool, newLogger(cfg))
		},
	}
}

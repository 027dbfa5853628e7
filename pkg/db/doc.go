// Package db connects to PostgreSQL for the River-backed job manager and
// applies River's schema migrations.
//
//	pool, err := db.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := db.Migrate(ctx, pool, log); err != nil {
//		return err
//	}
//
// Settings come from the environment:
//
//	DATABASE_CONN_URL           - connection URL (required)
//	DATABASE_MAX_OPEN_CONNS     - pool size (default: 10)
//	DATABASE_MIN_CONNS          - idle connections kept open (default: 2)
//	DATABASE_HEALTHCHECK_PERIOD - default: 1m
//	DATABASE_MAX_CONN_IDLE_TIME - default: 10m
//	DATABASE_MAX_CONN_LIFETIME  - default: 30m
//	DATABASE_RETRY_ATTEMPTS     - default: 3
//	DATABASE_RETRY_INTERVAL     - base retry interval (default: 5s)
package db

package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns a check that pings pool and checks that the job
// tables exist, so an unmigrated database reports unhealthy.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if pool == nil {
			return errors.Join(ErrHealthcheckFailed, ErrNilPool)
		}
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		if _, err := pool.Exec(ctx, "SELECT 1 FROM river_job LIMIT 1"); err != nil {
			return errors.Join(ErrHealthcheckFailed, ErrMigrationsMissing, err)
		}
		return nil
	}
}

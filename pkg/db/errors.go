package db

import "errors"

var (
	ErrFailedToParseDBConfig    = errors.New("db: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("db: failed to open database connection")
	ErrMigrationsFailed         = errors.New("db: failed to apply river migrations")
	ErrMigrationsMissing        = errors.New("db: river tables not found, run migrate")
	ErrHealthcheckFailed        = errors.New("db: healthcheck failed")
	ErrNilPool                  = errors.New("db: pool is nil")
)

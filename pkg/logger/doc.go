// Package logger builds the slog loggers used across mailforge.
//
// Records go to stdout as JSON (or text) and, when a Sentry DSN is set,
// errors are mirrored to Sentry. Context extractors add per-call
// attributes such as the dispatch id:
//
//	log := logger.New(logger.Config{Level: "debug"}, mailforge.LogDispatchID)
//	log.InfoContext(ctx, "mail queued")
//	// {"level":"INFO","msg":"mail queued","dispatch_id":"6f1c..."}
//
// NewNope returns a logger that discards everything; components use it
// when no logger is supplied.
package logger

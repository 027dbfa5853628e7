package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a stdout logger from cfg. Errors are mirrored to Sentry when
// cfg.Sentry.DSN is set. Extractors run on every record for both outputs.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return NewWithWriter(os.Stdout, cfg, extractors...)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, cfg Config, extractors ...ContextExtractor) *slog.Logger {
	base := newHandler(w, cfg)
	if sentry := newSentryHandler(cfg.Sentry, base); sentry != nil {
		base = fanout{base, sentry}
	}
	return slog.New(WithContext(base, extractors...))
}

func newHandler(w io.Writer, cfg Config) slog.Handler {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}

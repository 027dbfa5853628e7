package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFanout(t *testing.T) {
	t.Parallel()

	var info, errs bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	}
	log := slog.New(h).With(slog.String("provider", "ses"))

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	log.Info("delivered")
	log.Error("failed")

	assert.Contains(t, info.String(), "msg=delivered")
	assert.Contains(t, info.String(), "msg=failed")
	assert.NotContains(t, errs.String(), "delivered")
	assert.Contains(t, errs.String(), "provider=ses")
}

func TestNewSentryHandler_NoDSN(t *testing.T) {
	t.Parallel()
	assert.Nil(t, newSentryHandler(SentryConfig{}, slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

type failingHandler struct {
	slog.Handler
	err error
}

func (h failingHandler) Handle(context.Context, slog.Record) error { return h.err }

func TestFanout_ContinuesAfterError(t *testing.T) {
	t.Parallel()

	errBroken := errors.New("broken pipe")
	var out bytes.Buffer
	h := fanout{
		failingHandler{Handler: slog.NewTextHandler(&bytes.Buffer{}, nil), err: errBroken},
		slog.NewTextHandler(&out, nil),
	}

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "queued", 0))
	assert.ErrorIs(t, err, errBroken)
	assert.Contains(t, out.String(), "msg=queued")
}

package logsender_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
	"github.com/dmitrymomot/mailforge/pkg/mailer/logsender"
)

func TestSender(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := logsender.New(slog.New(slog.NewJSONHandler(&buf, nil)), 2)

	for _, subject := range []string{"one", "two", "three"} {
		require.NoError(t, s.Send(context.Background(), &mailer.Email{To: []string{"a@example.com"}, Subject: subject}))
	}

	sent := s.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "two", sent[0].Subject)
	assert.Equal(t, "three", sent[1].Subject)
	assert.Contains(t, buf.String(), `"subject":"one"`)
}

func TestSender_NoRetention(t *testing.T) {
	t.Parallel()

	s := logsender.New(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), 0)
	require.NoError(t, s.Send(context.Background(), &mailer.Email{Subject: "x"}))
	assert.Empty(t, s.Sent())
}

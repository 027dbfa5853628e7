package sendgrid

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

func TestSender_Send(t *testing.T) {
	t.Parallel()

	var payload struct {
		From struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"from"`
		Subject          string `json:"subject"`
		Personalizations []struct {
			To  []struct{ Email string } `json:"to"`
			Bcc []struct{ Email string } `json:"bcc"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
		Categories []string `json:"categories"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, sendEndpoint, r.URL.Path)
		assert.Equal(t, "Bearer SG.test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(srv.Close)

	s, err := New(Config{APIKey: "SG.test", Host: srv.URL, SenderEmail: "team@example.com", SenderName: "Team"})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		To:      []string{"Ada <ada@example.com>"},
		BCC:     []string{"audit@example.com"},
		Subject: "Hello",
		Text:    "Body",
		HTML:    "<p>Body</p>",
		Tags:    mailer.SimpleTags("welcome", "onboarding"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Team", payload.From.Name)
	assert.Equal(t, "team@example.com", payload.From.Email)
	assert.Equal(t, "Hello", payload.Subject)
	require.Len(t, payload.Personalizations, 1)
	assert.Equal(t, "ada@example.com", payload.Personalizations[0].To[0].Email)
	assert.Equal(t, "audit@example.com", payload.Personalizations[0].Bcc[0].Email)
	require.Len(t, payload.Content, 2)
	assert.Equal(t, "text/plain", payload.Content[0].Type)
	assert.Equal(t, []string{"onboarding", "welcome"}, payload.Categories)
}

func TestSender_Send_APIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad"}]}`))
	}))
	t.Cleanup(srv.Close)

	s, err := New(Config{APIKey: "SG.test", Host: srv.URL})
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{From: "team@example.com", To: []string{"a@example.com"}, Text: "x"})
	require.ErrorIs(t, err, ErrAPI)
}

func TestSender_Build_Errors(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	s, err := New(Config{APIKey: "k"})
	require.NoError(t, err)

	_, err = s.build(&mailer.Email{From: "team@example.com"})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)

	_, err = s.build(&mailer.Email{To: []string{"a@example.com"}})
	require.Error(t, err, "no from address configured")
}

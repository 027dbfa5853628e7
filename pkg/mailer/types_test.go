package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimpleTags(t *testing.T) {
	t.Parallel()

	tags := SimpleTags("welcome", "onboarding")
	require.Equal(t, Tags{"welcome": struct{}{}, "onboarding": struct{}{}}, tags)
	require.Empty(t, SimpleTags())
}

func TestRecipient(t *testing.T) {
	t.Parallel()

	require.Equal(t, "John Doe <john@example.com>", Recipient("John Doe", "john@example.com"))
	require.Equal(t, "john@example.com", Recipient("", "john@example.com"))
	require.Empty(t, Recipient("John Doe", ""))
}

func TestEmail_Recipients(t *testing.T) {
	t.Parallel()

	e := &Email{To: []string{"a@x.io"}, CC: []string{"b@x.io"}, BCC: []string{"c@x.io", "d@x.io"}}
	require.Equal(t, []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io"}, e.Recipients())
	require.Empty(t, (&Email{}).Recipients())
}

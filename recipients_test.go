package mailforge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailforge"
)

func TestSanitizeEmails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"single", "a@example.com", "a@example.com"},
		{"comma list with spaces", " a@example.com , b@example.com ", "a@example.com,b@example.com"},
		{"drops invalid", "a@example.com, not-an-email, ,b@example.com", "a@example.com,b@example.com"},
		{"keeps duplicates", "a@example.com,a@example.com", "a@example.com,a@example.com"},
		{"user", user{email: "u@example.com", locale: "de"}, "u@example.com"},
		{"string slice", []string{"a@example.com", "bad", "b@example.com"}, "a@example.com,b@example.com"},
		{"user slice", []mailforge.User{user{email: "a@example.com"}, user{email: "oops"}}, "a@example.com"},
		{"mixed slice", []any{"a@example.com", user{email: "u@example.com"}, 42}, "a@example.com,u@example.com"},
		{"unsupported", 42, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, mailforge.SanitizeEmails(tt.in))
		})
	}
}

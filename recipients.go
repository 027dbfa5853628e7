package mailforge

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// User is a recipient record that carries its own preferred locale.
type User interface {
	Email() string
	Locale() string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SanitizeEmails normalizes recipients into a comma-joined address list.
//
// v may be a string (split on commas), a User, or a []string, []User or
// []any holding either. Slice elements are taken whole, not split.
// Entries that fail an email syntax check are dropped. Order is kept and
// duplicates are not removed.
func SanitizeEmails(v any) string {
	var candidates []string

	switch r := v.(type) {
	case nil:
	case string:
		candidates = strings.Split(r, ",")
	case User:
		candidates = []string{r.Email()}
	case []string:
		candidates = r
	case []User:
		for _, u := range r {
			candidates = append(candidates, userEmail(u))
		}
	case []any:
		for _, item := range r {
			switch it := item.(type) {
			case string:
				candidates = append(candidates, it)
			case User:
				candidates = append(candidates, userEmail(it))
			}
		}
	}

	valid := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c = strings.TrimSpace(c); isEmail(c) {
			valid = append(valid, c)
		}
	}
	return strings.Join(valid, ",")
}

// localeOf returns the locale of a User recipient, or "".
func localeOf(v any) string {
	if u, ok := v.(User); ok && u != nil {
		return u.Locale()
	}
	return ""
}

func userEmail(u User) string {
	if u == nil {
		return ""
	}
	return u.Email()
}

func isEmail(s string) bool {
	return s != "" && validate.Var(s, "email") == nil
}

package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Canonical normalizes a locale identifier to its BCP 47 form.
// Underscore separated identifiers such as "de_DE" are accepted.
// It reports false for empty or malformed input.
func Canonical(locale string) (string, bool) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return "", false
	}
	tag, err := language.Parse(strings.ReplaceAll(locale, "_", "-"))
	if err != nil || tag == language.Und {
		return "", false
	}
	return tag.String(), true
}

// Base returns the language subtag of a locale: "pt-BR" becomes "pt".
// Malformed input is returned lowercased and unchanged otherwise.
func Base(locale string) string {
	canonical, ok := Canonical(locale)
	if !ok {
		return strings.ToLower(locale)
	}
	tag := language.Make(canonical)
	base, _ := tag.Base()
	return base.String()
}

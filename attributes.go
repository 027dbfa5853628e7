package mailforge

import (
	"slices"
	"strings"
)

// Attributes is the envelope of a message before it is turned into MailParams.
// Recipient fields accept anything SanitizeEmails accepts.
type Attributes struct {
	To      any
	Cc      any
	Bcc     any
	ReplyTo any
	Subject string
	Locale  string
	Headers []string
}

// BuildHeaders returns a copy of the raw header lines with cc, bcc and
// reply-to appended when they hold at least one valid address. The
// receiver is not modified, so repeated calls return the same lines.
func (a Attributes) BuildHeaders() []string {
	headers := slices.Clone(a.Headers)
	for _, h := range []struct {
		name  string
		value any
	}{
		{"cc", a.Cc},
		{"bcc", a.Bcc},
		{"reply-to", a.ReplyTo},
	} {
		if list := SanitizeEmails(h.value); list != "" {
			headers = append(headers, h.name+": "+list)
		}
	}
	return headers
}

func (a Attributes) clone() Attributes {
	a.Headers = slices.Clone(a.Headers)
	return a
}

func hasHeader(headers []string, name string) bool {
	for _, line := range headers {
		n, _, ok := strings.Cut(line, ":")
		if ok && strings.EqualFold(strings.TrimSpace(n), name) {
			return true
		}
	}
	return false
}

package mailer

import (
	"mime"
	"net/mail"
	"net/textproto"
	"strings"
)

// Headers is the structured form of raw "name: value" header lines.
type Headers struct {
	Extra       map[string]string
	FromName    string
	FromEmail   string
	ContentType string
	Charset     string
	ReplyTo     string
	CC          []string
	BCC         []string
}

// ParseHeaders splits raw header lines into address headers, content type
// and everything else. An entry may hold several lines separated by newlines.
// Lines without a colon are ignored.
func ParseHeaders(raw []string) Headers {
	h := Headers{Extra: make(map[string]string)}

	for _, entry := range raw {
		for line := range strings.SplitSeq(entry, "\n") {
			name, value, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			value = strings.TrimSpace(value)
			if name == "" || value == "" {
				continue
			}

			switch strings.ToLower(name) {
			case "from":
				if addr, err := mail.ParseAddress(value); err == nil {
					h.FromName, h.FromEmail = addr.Name, addr.Address
				} else {
					h.FromEmail = value
				}
			case "content-type":
				if mediaType, params, err := mime.ParseMediaType(value); err == nil {
					h.ContentType = mediaType
					if cs := params["charset"]; cs != "" {
						h.Charset = cs
					}
				}
			case "cc":
				h.CC = append(h.CC, SplitAddresses(value)...)
			case "bcc":
				h.BCC = append(h.BCC, SplitAddresses(value)...)
			case "reply-to":
				if addrs := SplitAddresses(value); len(addrs) > 0 {
					h.ReplyTo = addrs[0]
				}
			default:
				key := textproto.CanonicalMIMEHeaderKey(name)
				if prev, ok := h.Extra[key]; ok {
					value = prev + ", " + value
				}
				h.Extra[key] = value
			}
		}
	}

	return h
}

// SplitAddresses splits a comma-separated address list, trimming blanks.
func SplitAddresses(list string) []string {
	var out []string
	for part := range strings.SplitSeq(list, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/internal/tasks"
)

var errNoBody = errors.New("one of --body, --body-file or --template is required")

func messageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{Name: "to", Usage: "recipient address, repeatable", Required: true},
		&cli.StringSliceFlag{Name: "cc", Usage: "carbon copy address, repeatable"},
		&cli.StringSliceFlag{Name: "bcc", Usage: "blind carbon copy address, repeatable"},
		&cli.StringFlag{Name: "reply-to", Usage: "reply-to address"},
		&cli.StringFlag{Name: "subject", Aliases: []string{"s"}, Usage: "subject line"},
		&cli.StringFlag{Name: "body", Aliases: []string{"b"}, Usage: "message body"},
		&cli.PathFlag{Name: "body-file", Usage: "read the body from a file"},
		&cli.BoolFlag{Name: "html", Usage: "send the body as text/html"},
		&cli.StringFlag{Name: "locale", Aliases: []string{"l"}, Usage: "recipient locale"},
		&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: `raw header line such as "X-Campaign: spring"`},
		&cli.StringSliceFlag{Name: "attach", Aliases: []string{"a"}, Usage: "file path to attach, repeatable"},
		&cli.IntSliceFlag{Name: "attach-id", Usage: "attachment id resolved from storage, repeatable"},
	}
}

// payloadFromFlags builds a raw message from the shared message flags.
// Body and subject may be empty when a template supplies them.
func payloadFromFlags(c *cli.Context) (tasks.RawPayload, error) {
	p := tasks.RawPayload{
		To:            c.StringSlice("to"),
		Cc:            c.StringSlice("cc"),
		Bcc:           c.StringSlice("bcc"),
		ReplyTo:       c.String("reply-to"),
		Subject:       c.String("subject"),
		Body:          c.String("body"),
		HTML:          c.Bool("html"),
		Locale:        c.String("locale"),
		Headers:       c.StringSlice("header"),
		Attachments:   c.StringSlice("attach"),
		AttachmentIDs: c.IntSlice("attach-id"),
	}

	if path := c.Path("body-file"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("read body: %w", err)
		}
		p.Body = string(b)
	}
	return p, nil
}

// templateMessage builds a template-backed message for --template, using
// --data as the JSON template data.
func templateMessage(c *cli.Context, p tasks.RawPayload) (mailforge.Mailable, error) {
	var data map[string]any
	if raw := c.String("data"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			return nil, fmt.Errorf("parse --data: %w", err)
		}
	}

	msg := &mailforge.TemplateMessage{
		Template: c.String("template"),
		Layout:   c.String("layout"),
		Data:     data,
	}
	msg.Subject(p.Subject).SetHeaders(p.Headers...)
	if p.ReplyTo != "" {
		msg.ReplyTo(p.ReplyTo)
	}
	for _, path := range p.Attachments {
		msg.AddAttachment(path)
	}
	for _, id := range p.AttachmentIDs {
		msg.AddAttachment(id)
	}
	return msg, nil
}

func compose(m *mailforge.Mailer, c *cli.Context, p tasks.RawPayload) *mailforge.Compose {
	b := m.Make(p.To, c.String("from-name"), c.String("from-email")).Locale(p.Locale)
	if len(p.Cc) > 0 {
		b.Cc(p.Cc)
	}
	if len(p.Bcc) > 0 {
		b.Bcc(p.Bcc)
	}
	return b
}

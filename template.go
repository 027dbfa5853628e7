package mailforge

import (
	"context"
	"errors"

	"github.com/dmitrymomot/mailforge/pkg/mailer"
)

// TemplateMessage is a Message whose body is a markdown template rendered
// by mailer.Renderer. The frontmatter Subject is used when no subject was
// set on the message. Renderer and Layout default to the mailer's.
//
//	type ResetEmail struct {
//		mailforge.TemplateMessage
//	}
//
//	msg := &ResetEmail{mailforge.TemplateMessage{Template: "reset.md", Data: data}}
//	m.To(user).Send(ctx, msg)
type TemplateMessage struct {
	Message

	Renderer *mailer.Renderer
	Layout   string
	Template string
	Data     any
}

// templated is implemented by messages that accept the mailer's renderer.
type templated interface {
	useRenderer(r *mailer.Renderer, layout string)
}

var errNoRenderer = errors.New("mailforge: template message without renderer")

func (t *TemplateMessage) useRenderer(r *mailer.Renderer, layout string) {
	if t.Renderer == nil {
		t.Renderer = r
	}
	if t.Layout == "" {
		t.Layout = layout
	}
}

// Body renders the template in the locale carried by ctx.
func (t *TemplateMessage) Body(ctx context.Context) (string, error) {
	if t.Renderer == nil {
		return "", errNoRenderer
	}
	res, err := t.Renderer.RenderContext(ctx, t.Layout, t.Template, t.Data)
	if err != nil {
		return "", err
	}
	if t.attrs.Subject == "" && res.Subject != "" {
		t.attrs.Subject = res.Subject
	}
	if !hasHeader(t.attrs.Headers, "Content-Type") {
		t.attrs.Headers = append(t.attrs.Headers, "Content-Type: text/html; charset=UTF-8")
	}
	return res.HTML, nil
}

// Package mailer is the host-side mail primitive: it takes a raw send
// request, lets hooks adjust it, and hands a fully resolved Email to a
// provider Sender.
//
// # Architecture
//
//   - Transport: Mail(ctx, to, subject, body, headers, attachments) bool.
//     Parses raw header lines, applies the mail_from, mail_from_name,
//     mail_content_type and mail_charset filters, reads attachment files and
//     fires mail_succeeded or mail_failed.
//   - Sender: interface provider packages implement (resend, smtp, ses,
//     sendgrid, logsender).
//   - Renderer: markdown templates with YAML frontmatter rendered into an
//     HTML layout, with locale-aware translation helpers.
//
// # Usage
//
//	hooks := hook.New()
//	sender, err := resend.New(resend.Config{APIKey: os.Getenv("RESEND_API_KEY")})
//	if err != nil {
//		return err
//	}
//
//	transport := mailer.NewTransport(sender, hooks, mailer.Config{
//		FromEmail: "team@example.com",
//		FromName:  "Team",
//	})
//
//	hooks.AddAction(mailer.HookMailFailed, func(args ...any) {
//		log.Println(args[0].(*mailer.DeliveryError))
//	}, hook.DefaultPriority)
//
//	ok := transport.Mail(ctx, "user@example.com", "Hello", "<p>Hi</p>",
//		[]string{"Content-Type: text/html; charset=UTF-8"}, nil)
//
// HTML bodies get a plain text alternative derived by stripping tags.
//
// # Templates
//
// Templates are markdown with optional frontmatter. The Subject value is
// itself a template:
//
//	---
//	Subject: {{t "welcome.subject" "name" .Name}}
//	---
//	{{t "welcome.greeting"}} **{{.Name}}**!
//
//	[>Confirm email]({{.ConfirmURL}})
//
// A link written as [>Label](url) becomes a call-to-action link with the
// class set by WithActionClass, for layouts to style as a button.
//
//	renderer := mailer.NewRenderer(emails.FS, mailer.WithCatalog(catalog))
//	result, err := renderer.RenderContext(i18n.WithLocale(ctx, "de"), "base.html", "welcome.md", data)
//
// Layouts receive .Content, .Subject, .Metadata and .Locale.
package mailer

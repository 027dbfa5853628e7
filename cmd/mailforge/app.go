package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/attachment"
	"github.com/dmitrymomot/mailforge/pkg/hook"
	"github.com/dmitrymomot/mailforge/pkg/i18n"
	"github.com/dmitrymomot/mailforge/pkg/logger"
	"github.com/dmitrymomot/mailforge/pkg/mailer"
	"github.com/dmitrymomot/mailforge/pkg/mailer/logsender"
	"github.com/dmitrymomot/mailforge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailforge/pkg/mailer/sendgrid"
	"github.com/dmitrymomot/mailforge/pkg/mailer/ses"
	"github.com/dmitrymomot/mailforge/pkg/mailer/smtp"
)

// deps is everything a command needs to send mail.
type deps struct {
	cfg    *config
	logger *slog.Logger
	hooks  *hook.Registry
	mailer *mailforge.Mailer
	// nil unless ATTACHMENTS_S3_BUCKET is set.
	attachments *attachment.S3
}

func newLogger(cfg *config) *slog.Logger {
	return logger.New(cfg.Log, mailforge.LogDispatchID)
}

func newSender(ctx context.Context, cfg *config, log *slog.Logger) (mailer.Sender, error) {
	switch cfg.Provider {
	case providerLog, "":
		return logsender.New(log, 0), nil
	case providerResend:
		return resend.New(cfg.Resend)
	case providerSMTP:
		return smtp.New(cfg.SMTP)
	case providerSES:
		return ses.New(ctx, cfg.SES)
	case providerSendGrid:
		return sendgrid.New(cfg.SendGrid)
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// newDeps wires the transport, renderer, catalog and attachment resolver.
// Extra options are applied last.
func newDeps(ctx context.Context, cfg *config, opts ...mailforge.Option) (*deps, error) {
	log := newLogger(cfg)

	sender, err := newSender(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	hooks := hook.New()
	transport := mailer.NewTransport(sender, hooks, cfg.Transport, mailer.WithTransportLogger(log))

	base := []mailforge.Option{
		mailforge.WithConfig(cfg.Mailforge),
		mailforge.WithLogger(log),
	}

	if cfg.TemplatesDir != "" {
		rendererOpts := []mailer.RendererOption{}
		if cfg.LocalesDir != "" {
			catalog, err := i18n.New(
				i18n.WithDefaultLocale(cfg.Mailforge.DefaultLocale),
				i18n.WithYAMLDir(os.DirFS(cfg.LocalesDir)),
				i18n.WithJSONDir(os.DirFS(cfg.LocalesDir)),
			)
			if err != nil {
				return nil, fmt.Errorf("load locales: %w", err)
			}
			rendererOpts = append(rendererOpts, mailer.WithCatalog(catalog))
		}
		base = append(base, mailforge.WithRenderer(mailer.NewRenderer(os.DirFS(cfg.TemplatesDir), rendererOpts...)))
	}

	d := &deps{cfg: cfg, logger: log, hooks: hooks}
	if cfg.Attachments.Bucket != "" {
		s3r, err := attachment.NewS3(cfg.Attachments, attachment.WithS3Logger(log))
		if err != nil {
			return nil, err
		}
		d.attachments = s3r
		base = append(base, mailforge.WithAttachmentResolver(attachment.NewCached(s3r)))
	}

	d.mailer = mailforge.New(transport, hooks, append(base, opts...)...)
	return d, nil
}

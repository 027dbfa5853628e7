package main

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/dmitrymomot/mailforge"
	"github.com/dmitrymomot/mailforge/pkg/attachment"
	"github.com/dmitrymomot/mailforge/pkg/db"
	"github.com/dmitrymomot/mailforge/pkg/logger"
	"github.com/dmitrymomot/mailforge/pkg/mailer"
	"github.com/dmitrymomot/mailforge/pkg/mailer/resend"
	"github.com/dmitrymomot/mailforge/pkg/mailer/sendgrid"
	"github.com/dmitrymomot/mailforge/pkg/mailer/ses"
	"github.com/dmitrymomot/mailforge/pkg/mailer/smtp"
	"github.com/dmitrymomot/mailforge/pkg/redis"
)

// Provider names accepted by MAILER_PROVIDER.
const (
	providerLog      = "log"
	providerResend   = "resend"
	providerSMTP     = "smtp"
	providerSES      = "ses"
	providerSendGrid = "sendgrid"
)

type config struct {
	Provider     string `env:"MAILER_PROVIDER" envDefault:"log"`
	TemplatesDir string `env:"MAILFORGE_TEMPLATES_DIR"`
	LocalesDir   string `env:"MAILFORGE_LOCALES_DIR"`

	Mailforge   mailforge.Config
	Transport   mailer.Config
	Log         logger.Config
	Attachments attachment.S3Config
	Redis       redis.Config

	Resend   resend.Config
	SMTP     smtp.Config
	SES      ses.Config
	SendGrid sendgrid.Config
}

// loadConfig reads the dotenv file named by --env-file, if present, and
// then the environment.
func loadConfig(c *cli.Context) (*config, error) {
	if err := godotenv.Load(c.String("env-file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDBConfig is separate because DATABASE_CONN_URL is only required by
// commands that talk to the job queue.
func loadDBConfig() (db.Config, error) {
	var cfg db.Config
	err := env.Parse(&cfg)
	return cfg, err
}

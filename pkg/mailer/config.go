package mailer

// Config holds transport defaults.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	FromEmail     string `env:"MAILER_FROM_EMAIL"`
	FromName      string `env:"MAILER_FROM_NAME"`
	Charset       string `env:"MAILER_CHARSET" envDefault:"UTF-8"`
	Encoding      string `env:"MAILER_ENCODING" envDefault:"8bit"`
	DefaultLayout string `env:"MAILER_DEFAULT_LAYOUT" envDefault:"base.html"`
}

func (c *Config) applyDefaults() {
	if c.Charset == "" {
		c.Charset = "UTF-8"
	}
	if c.Encoding == "" {
		c.Encoding = Encoding8Bit
	}
}

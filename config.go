package mailforge

import "time"

// Config holds the default sender identity and scheduling settings.
// Fields carry env tags for github.com/caarlos0/env.
type Config struct {
	FromName      string `env:"MAILFORGE_FROM_NAME"`
	FromEmail     string `env:"MAILFORGE_FROM_EMAIL"`
	Charset       string `env:"MAILFORGE_CHARSET" envDefault:"UTF-8"`
	DefaultLocale string `env:"MAILFORGE_DEFAULT_LOCALE" envDefault:"en"`
	DefaultLayout string `env:"MAILFORGE_DEFAULT_LAYOUT" envDefault:"base.html"`

	// ScheduleInterval is passed to the scheduler with every deferred send.
	// Schedulers treat it as a uniqueness window for the key.
	ScheduleInterval time.Duration `env:"MAILFORGE_SCHEDULE_INTERVAL" envDefault:"0s"`
}

func (c *Config) applyDefaults() {
	if c.Charset == "" {
		c.Charset = "UTF-8"
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = "en"
	}
	if c.DefaultLayout == "" {
		c.DefaultLayout = "base.html"
	}
}

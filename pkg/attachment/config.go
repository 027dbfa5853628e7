package attachment

import "time"

// S3Config describes where attachments live in object storage and where
// they are cached on disk.
//
// Objects are stored as {Prefix}/{id}/{filename}; the file name becomes
// the attachment name in the delivered message.
type S3Config struct {
	Bucket    string `env:"ATTACHMENTS_S3_BUCKET"`
	AccessKey string `env:"ATTACHMENTS_S3_ACCESS_KEY"`
	SecretKey string `env:"ATTACHMENTS_S3_SECRET_KEY"`
	Region    string `env:"ATTACHMENTS_S3_REGION" envDefault:"us-east-1"`
	// MinIO and other S3-compatible services.
	Endpoint  string `env:"ATTACHMENTS_S3_ENDPOINT"`
	PathStyle bool   `env:"ATTACHMENTS_S3_PATH_STYLE"`

	Prefix string `env:"ATTACHMENTS_S3_PREFIX" envDefault:"attachments"`
	Dir    string `env:"ATTACHMENTS_DIR"`

	MaxSize int64         `env:"ATTACHMENTS_MAX_SIZE" envDefault:"26214400"`
	MaxAge  time.Duration `env:"ATTACHMENTS_MAX_AGE" envDefault:"24h"`
}

const (
	DefaultRegion  = "us-east-1"
	DefaultPrefix  = "attachments"
	DefaultMaxSize = 25 << 20
	DefaultMaxAge  = 24 * time.Hour
)

func (c *S3Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.MaxAge <= 0 {
		c.MaxAge = DefaultMaxAge
	}
}

func (c *S3Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" || c.Dir == "" {
		return ErrInvalidConfig
	}
	return nil
}

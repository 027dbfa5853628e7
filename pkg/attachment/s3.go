package attachment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/mailforge/pkg/logger"
)

// objectAPI is the subset of *s3.Client used by S3.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3 resolves attachment ids by downloading {Prefix}/{id}/{filename} into
// {Dir}/{id}/{filename}. A file already on disk is reused.
type S3 struct {
	client objectAPI
	logger *slog.Logger
	now    func() time.Time
	cfg    S3Config
}

// S3Option configures S3.
type S3Option func(*S3)

// WithS3Logger sets the logger.
func WithS3Logger(l *slog.Logger) S3Option {
	return func(s *S3) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithS3Clock overrides time.Now for Prune.
func WithS3Clock(now func() time.Time) S3Option {
	return func(s *S3) {
		if now != nil {
			s.now = now
		}
	}
}

// NewS3 creates an S3 resolver. Bucket, credentials and Dir are required.
func NewS3(cfg S3Config, opts ...S3Option) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	client := s3.New(s3.Options{}, func(o *s3.Options) {
		o.Region = cfg.Region
		o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		}
	})
	return newS3(client, cfg, opts...), nil
}

func newS3(client objectAPI, cfg S3Config, opts ...S3Option) *S3 {
	s := &S3{
		client: client,
		logger: logger.NewNope(),
		now:    time.Now,
		cfg:    cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve implements Resolver. Download failures are logged and reported
// as a miss.
func (s *S3) Resolve(ctx context.Context, id int) (string, bool) {
	p, err := s.Fetch(ctx, id)
	if err != nil {
		s.logger.WarnContext(ctx, "attachment not resolved",
			slog.Int("id", id),
			slog.Any("error", err),
		)
		return "", false
	}
	return p, true
}

// Fetch downloads attachment id and returns its local path.
func (s *S3) Fetch(ctx context.Context, id int) (string, error) {
	if id <= 0 {
		return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	key, err := s.lookup(ctx, id)
	if err != nil {
		return "", err
	}

	name := path.Base(key)
	dst := filepath.Join(s.cfg.Dir, strconv.Itoa(id), name)
	if fi, err := os.Stat(dst); err == nil && fi.Mode().IsRegular() {
		return dst, nil
	}

	if err := s.download(ctx, key, dst); err != nil {
		return "", err
	}

	s.logger.DebugContext(ctx, "attachment downloaded",
		slog.Int("id", id),
		slog.String("key", key),
	)
	return dst, nil
}

func (s *S3) prefix(id int) string {
	return path.Join(s.cfg.Prefix, strconv.Itoa(id)) + "/"
}

func (s *S3) lookup(ctx context.Context, id int) (string, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.cfg.Bucket),
		Prefix:  aws.String(s.prefix(id)),
		MaxKeys: aws.Int32(2), // skips a folder marker object
	})
	if err != nil {
		return "", wrapS3Error(err, ErrDownloadFailed)
	}

	for _, obj := range out.Contents {
		key := aws.ToString(obj.Key)
		if name := path.Base(key); name != "" && name != "." && name != "/" && key != s.prefix(id) {
			return key, nil
		}
	}
	return "", fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func (s *S3) download(ctx context.Context, key, dst string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return wrapS3Error(err, ErrDownloadFailed)
	}
	defer out.Body.Close()

	if n := aws.ToInt64(out.ContentLength); n > s.cfg.MaxSize {
		return fmt.Errorf("%w: %s is %d bytes", ErrTooLarge, key, n)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return errors.Join(ErrDownloadFailed, err)
	}

	// Written under a temporary name so concurrent readers never see a
	// partial file.
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".download-*")
	if err != nil {
		return errors.Join(ErrDownloadFailed, err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(out.Body, s.cfg.MaxSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return errors.Join(ErrDownloadFailed, err)
	}
	if n > s.cfg.MaxSize {
		return fmt.Errorf("%w: %s", ErrTooLarge, key)
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return errors.Join(ErrDownloadFailed, err)
	}
	return nil
}

// Prune removes downloaded attachments not modified within MaxAge and
// returns how many id directories were deleted.
func (s *S3) Prune(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := s.now().Add(-s.cfg.MaxAge)
	var removed int
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.cfg.Dir, e.Name())); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "pruned attachment cache", slog.Int("removed", removed))
	}
	return removed, nil
}

var _ Resolver = (*S3)(nil)

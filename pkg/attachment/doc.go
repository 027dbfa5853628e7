// Package attachment resolves integer attachment ids into local file paths
// for mailforge.Mailer.
//
// Map and Func cover static tables and custom lookups. S3 downloads
// objects stored as {prefix}/{id}/{filename} into a local directory, and
// Prune clears that directory on a schedule. Cached puts an in-memory
// layer in front of any resolver:
//
//	s3r, err := attachment.NewS3(cfg, attachment.WithS3Logger(log))
//	if err != nil {
//		return err
//	}
//	m := mailforge.New(transport, hooks,
//		mailforge.WithAttachmentResolver(attachment.NewCached(s3r)),
//	)
package attachment

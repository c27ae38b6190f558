// Package storage provides read-only attachment sources.
//
// Attachments are referenced by path when a message is composed and read only
// when the mailer assembles the email. A path without a scheme is served by a
// Local source; "s3://key" paths are served by an S3 source:
//
//	local := storage.NewLocal("/")
//	bucket, err := storage.NewS3(storage.Config{
//		Bucket:    "mail-attachments",
//		AccessKey: os.Getenv("STORAGE_ACCESS_KEY"),
//		SecretKey: os.Getenv("STORAGE_SECRET_KEY"),
//	})
//
//	m := mailer.New(sender, renderer, cfg,
//		mailer.WithAttachmentSource("", local),
//		mailer.WithAttachmentSource("s3", bucket),
//	)
//
// Errors map onto the sentinels in this package (ErrNotFound,
// ErrAccessDenied, ErrFileTooLarge) regardless of the backend.
package storage

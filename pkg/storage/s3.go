package storage

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 reads attachments from S3-compatible object storage.
type S3 struct {
	client *s3.Client
	cfg    Config
}

// NewS3 creates an S3 source with the given configuration.
func NewS3(cfg Config) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
	}, nil
}

// Open fetches the object stored under key.
// Objects larger than Config.MaxSize are rejected before any content is read.
func (s *S3) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return nil, ErrInvalidKey
	}

	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, wrapS3Error(err, ErrReadFailed)
	}

	if size := aws.ToInt64(output.ContentLength); size > s.cfg.MaxSize {
		_ = output.Body.Close()
		return nil, ErrFileTooLarge
	}

	return output.Body, nil
}

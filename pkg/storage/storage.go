package storage

import (
	"context"
	"io"
)

// Source opens stored files by key. Sources are read-only: pigeon only ever
// reads attachment content at delivery time.
type Source interface {
	// Open returns a reader for the file stored under key.
	// The caller is responsible for closing the returned reader.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"STORAGE_BUCKET"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"STORAGE_ACCESS_KEY"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"STORAGE_SECRET_KEY"`

	// Endpoint is a custom S3 endpoint URL (MinIO or other S3-compatible services).
	Endpoint string `env:"STORAGE_ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"STORAGE_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"STORAGE_PATH_STYLE"`

	// MaxSize caps the size of a single attachment in bytes (default: 25MB).
	MaxSize int64 `env:"STORAGE_MAX_SIZE"`
}

// Default configuration values.
const (
	DefaultRegion  = "us-east-1"
	DefaultMaxSize = 25 << 20 // most providers reject messages above 25MB
)

// applyDefaults fills in default values for empty config fields.
func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.MaxSize == 0 {
		c.MaxSize = DefaultMaxSize
	}
}

// validate checks that required configuration fields are set.
func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

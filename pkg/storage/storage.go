package storage

import (
	"context"
	"io"
)

// Reader is read-only access to stored objects.
type Reader interface {
	// Get retrieves an object. The caller must close the returned reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Config holds S3-compatible storage configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"CARD_ASSETS_BUCKET"`

	// Prefix is prepended to every key, e.g. "postcard/assets".
	Prefix string `env:"CARD_ASSETS_PREFIX"`

	// AccessKey is the access key ID (required).
	AccessKey string `env:"S3_ACCESS_KEY"`

	// SecretKey is the secret access key (required).
	SecretKey string `env:"S3_SECRET_KEY"`

	// Endpoint is a custom endpoint URL for MinIO or other S3-compatible services.
	Endpoint string `env:"S3_ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"S3_REGION" envDefault:"us-east-1"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `env:"S3_PATH_STYLE" envDefault:"false"`
}

// Enabled reports whether a bucket is configured.
func (c Config) Enabled() bool {
	return c.Bucket != ""
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// Package storage abstracts the object store holding uploaded media and
// generated certificates.
package storage

import (
	"context"
	"fmt"
	"io"
)

// Storage is an idempotent PUT over content paths: saving the same path
// twice overwrites in place.
type Storage interface {
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL returns the public URL for a stored object.
	URL(path string) string
}

type Config struct {
	Type      string // local, s3
	BasePath  string // local root
	BaseURL   string // public URL base
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string // custom S3-compatible endpoint
	Prefix    string // key prefix inside the bucket
}

func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// internal/storage/blob/bucket.go
package blob

import (
	"context"
	"fmt"
)

// Bucket is a read-only view over a tree of snapshot documents.
type Bucket interface {
	// List returns the relative paths of all objects under prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Read returns the content of the object at path
	Read(ctx context.Context, path string) ([]byte, error)
}

// Config selects and configures a bucket backend.
type Config struct {
	Type string // "localfs" or "s3"
	Path string // localfs root
	S3   S3Config
}

// Open creates the bucket described by cfg.
func Open(cfg Config) (Bucket, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, fmt.Errorf("unknown bucket type: %s", cfg.Type)
	}
}

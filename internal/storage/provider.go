package storage

import (
	"context"
	"io"
)

// Object describes one stored archive blob.
type Object struct {
	Name string
	Size int64
}

// Provider stores and retrieves model archive blobs. Implementations back
// onto the local filesystem or S3-compatible object storage.
type Provider interface {
	CreateBucket(ctx context.Context, bucket string) error

	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	PutObject(ctx context.Context, bucket, key string, data io.Reader) error

	DeleteObject(ctx context.Context, bucket, key string) error

	ListObjects(ctx context.Context, bucket, prefix string) ([]Object, error)
}

package storage

import "context"

// ArtifactStore defines the interface for separated-stem object storage.
type ArtifactStore interface {
	Put(ctx context.Context, bucket, key string, data []byte) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Exists(ctx context.Context, bucket, key string) (bool, error)
}

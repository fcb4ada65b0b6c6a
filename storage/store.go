// Package storage defines the Store interface a blob backend must satisfy.
// Concrete backends — MongoDB GridFS, S3 and the rest — are out of scope;
// storage/memstore and storage/fsstore are the two reference
// implementations exercised by this repo's own tests and demo CLI.
package storage

import (
	"context"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexmeta"
)

// Fetched is one result of a GetManyParallel call.
type Fetched struct {
	Path  string
	Bytes []byte
	Err   error
}

// Store persists chunk bytes and their metadata, addressed by an
// implementation-assigned path stable for the blob's lifetime.
type Store interface {
	// Add persists chunk_bytes under the given layer and returns the
	// assigned path.
	Add(ctx context.Context, chunkBytes []byte, meta chunk.Meta, im indexmeta.Meta, layer string) (string, error)
	// GetOne returns the bytes stored at path.
	GetOne(ctx context.Context, path string) ([]byte, error)
	// GetManyParallel fetches every path in paths with up to parallelism
	// concurrent reads, streaming results on the returned channel in the
	// same order paths were given.
	GetManyParallel(ctx context.Context, paths []string, parallelism int) <-chan Fetched
	// Delete removes every path in the batch. Deletion is idempotent per
	// path: unknown paths are silent successes.
	Delete(ctx context.Context, paths []string) error
	// Close releases any resources held by the store.
	Close() error
}

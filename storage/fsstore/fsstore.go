// Package fsstore is a filesystem-backed reference Store implementation.
// It follows the shape of a FlyDB/JsonStore-style wrapper (basePath,
// key-to-filename mapping, Get/Set/Del returning plain errors) but writes
// each blob as its own file rather than through flydb, which is a
// single-writer embedded KV store unsuited to arbitrary-size streamed
// blobs (see DESIGN.md).
package fsstore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/oarkflow/xid"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/storage"
)

type Store struct {
	basePath string
}

// New returns a Store rooted at basePath, creating it if necessary.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, &errkind.UpstreamFailure{Op: "fsstore.New", Cause: err}
	}
	return &Store{basePath: basePath}, nil
}

func (s *Store) Add(_ context.Context, chunkBytes []byte, _ chunk.Meta, _ indexmeta.Meta, layer string) (string, error) {
	relDir := filepath.Clean(layer)
	if relDir == "." || relDir == "" {
		relDir = "default"
	}
	if err := os.MkdirAll(filepath.Join(s.basePath, relDir), 0o755); err != nil {
		return "", &errkind.UpstreamFailure{Op: "add", Cause: err}
	}
	path := filepath.Join(relDir, xid.New().String()+".bin")
	if err := os.WriteFile(filepath.Join(s.basePath, path), chunkBytes, 0o644); err != nil {
		return "", &errkind.UpstreamFailure{Op: "add", Cause: err}
	}
	return path, nil
}

func (s *Store) GetOne(_ context.Context, path string) ([]byte, error) {
	b, err := os.ReadFile(filepath.Join(s.basePath, path))
	if err != nil {
		return nil, &errkind.UpstreamFailure{Op: "get_one", Cause: err}
	}
	return b, nil
}

func (s *Store) GetManyParallel(ctx context.Context, paths []string, parallelism int) <-chan storage.Fetched {
	return storage.ParallelFetch(ctx, paths, parallelism, s.GetOne)
}

func (s *Store) Delete(_ context.Context, paths []string) error {
	for _, p := range paths {
		if err := os.Remove(filepath.Join(s.basePath, p)); err != nil && !os.IsNotExist(err) {
			return &errkind.UpstreamFailure{Op: "delete", Cause: err}
		}
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

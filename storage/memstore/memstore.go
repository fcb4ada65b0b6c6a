// Package memstore is an in-memory reference Store implementation,
// grounded on the original storage/memdb.MemDB: a single concurrent map
// guarding blob bytes, with no persistence across restarts.
// It exists for tests (the demo CLI uses fsstore); it is not a
// candidate for production use at any real data volume.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/oarkflow/xid"
	maps "github.com/oarkflow/xsync"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/storage"
)

type Store struct {
	client  maps.IMap[string, []byte]
	closed  atomic.Bool
	closeMu sync.Mutex
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{client: maps.NewMap[string, []byte]()}
}

func (s *Store) Add(_ context.Context, chunkBytes []byte, _ chunk.Meta, _ indexmeta.Meta, layer string) (string, error) {
	if s.closed.Load() {
		return "", &errkind.UpstreamFailure{Op: "add", Cause: errClosed}
	}
	path := layer + "/" + xid.New().String()
	cp := make([]byte, len(chunkBytes))
	copy(cp, chunkBytes)
	s.client.Set(path, cp)
	return path, nil
}

func (s *Store) GetOne(_ context.Context, path string) ([]byte, error) {
	b, ok := s.client.Get(path)
	if !ok {
		return nil, &errkind.UpstreamFailure{Op: "get_one", Cause: errNotFound(path)}
	}
	return b, nil
}

func (s *Store) GetManyParallel(ctx context.Context, paths []string, parallelism int) <-chan storage.Fetched {
	return storage.ParallelFetch(ctx, paths, parallelism, s.GetOne)
}

func (s *Store) Delete(_ context.Context, paths []string) error {
	for _, p := range paths {
		s.client.Del(p)
	}
	return nil
}

func (s *Store) Close() error {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed.CompareAndSwap(false, true) {
		s.client.Clear()
	}
	return nil
}

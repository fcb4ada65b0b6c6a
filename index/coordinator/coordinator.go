// Package coordinator implements IndexCoordinator: composition in place
// of the source's AbstractIndex/IndexedStore inheritance. A Coordinator
// holds a Store and an Index side by side and
// performs delete-by-query itself, by querying paths from the index and
// then asking the store to delete them — neither collaborator needs to
// know about the other.
package coordinator

import (
	"context"
	"fmt"

	"github.com/oarkflow/georocket/cache"
	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/queryast"
	"github.com/oarkflow/georocket/storage"
)

type Coordinator struct {
	Store storage.Store
	Index index.Index

	// addedChunkMeta and loadedChunkMeta are per-key single-flight identity
	// caches shared across index operations: concurrent lookups for the
	// same path collapse onto one computation.
	addedChunkMeta  *cache.Cache[string, chunk.Meta]
	loadedChunkMeta *cache.Cache[string, chunk.Meta]
}

// New returns a Coordinator composing store and idx.
func New(store storage.Store, idx index.Index) *Coordinator {
	return &Coordinator{
		Store:           store,
		Index:           idx,
		addedChunkMeta:  cache.New[string, chunk.Meta](),
		loadedChunkMeta: cache.New[string, chunk.Meta](),
	}
}

// Add persists chunk bytes via the store and records the resulting path's
// metadata in the added-chunk cache, so a concurrent LoadMeta call for the
// same path never re-derives it from the index.
func (c *Coordinator) Add(ctx context.Context, chunkBytes []byte, meta chunk.Meta, im indexmeta.Meta, layer string) (string, error) {
	path, err := c.Store.Add(ctx, chunkBytes, meta, im, layer)
	if err != nil {
		return "", &errkind.UpstreamFailure{Op: "coordinator.add", Cause: err}
	}
	c.addedChunkMeta.Get(path, func() (chunk.Meta, error) { return meta, nil })
	return path, nil
}

// LoadMeta returns the chunk metadata for path. Concurrent calls for the
// same path that both miss the added-chunk cache share one index scan.
func (c *Coordinator) LoadMeta(ctx context.Context, path string) (chunk.Meta, error) {
	if m, ok := c.addedChunkMeta.Peek(path); ok {
		return m, nil
	}
	return c.loadedChunkMeta.Get(path, func() (chunk.Meta, error) {
		results, err := c.Index.GetMeta(ctx, queryast.All{})
		if err != nil {
			return chunk.Meta{}, &errkind.UpstreamFailure{Op: "coordinator.load_meta", Cause: err}
		}
		for r := range results {
			if r.Path == path {
				return r.Meta, nil
			}
		}
		return chunk.Meta{}, &errkind.UpstreamFailure{Op: "coordinator.load_meta", Cause: fmt.Errorf("path %q not indexed", path)}
	})
}

// DeleteByQuery removes both the index rows and the store blobs matching q.
func (c *Coordinator) DeleteByQuery(ctx context.Context, q queryast.Node) error {
	pathsCh, err := c.Index.GetPaths(ctx, q)
	if err != nil {
		return &errkind.UpstreamFailure{Op: "coordinator.delete_by_query.get_paths", Cause: err}
	}
	var paths []string
	for p := range pathsCh {
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		return nil
	}
	if err := c.Store.Delete(ctx, paths); err != nil {
		return &errkind.UpstreamFailure{Op: "coordinator.delete_by_query.store_delete", Cause: err}
	}
	if err := c.Index.DeleteByPaths(ctx, paths); err != nil {
		return &errkind.UpstreamFailure{Op: "coordinator.delete_by_query.index_delete", Cause: err}
	}
	c.invalidate(paths)
	return nil
}

// DeleteByPaths removes both the store blobs and the index rows for paths
// directly, without a query round-trip.
func (c *Coordinator) DeleteByPaths(ctx context.Context, paths []string) error {
	if err := c.Store.Delete(ctx, paths); err != nil {
		return &errkind.UpstreamFailure{Op: "coordinator.delete_by_paths.store_delete", Cause: err}
	}
	if err := c.Index.DeleteByPaths(ctx, paths); err != nil {
		return &errkind.UpstreamFailure{Op: "coordinator.delete_by_paths.index_delete", Cause: err}
	}
	c.invalidate(paths)
	return nil
}

func (c *Coordinator) invalidate(paths []string) {
	for _, p := range paths {
		c.addedChunkMeta.Invalidate(p)
		c.loadedChunkMeta.Invalidate(p)
	}
}

// Close releases the store's resources; the Index interface has no Close.
func (c *Coordinator) Close() error {
	return c.Store.Close()
}

// Package index defines the Index interface required of an index backend.
// Concrete backends — MongoDB, PostgreSQL — are out of scope;
// index/memindex is the reference implementation exercised by this repo's
// own tests, demo CLI and index/coordinator.
package index

import (
	"context"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

// Entry is one (path, index document) pair to add.
type Entry struct {
	Path string
	Doc  indexer.Doc
	Meta chunk.Meta
}

// MetaResult pairs a path with its stored chunk metadata.
type MetaResult struct {
	Path string
	Meta chunk.Meta
}

// Index is the query-facing side of the pipeline: it never
// sees chunk bytes, only paths, documents and chunk metadata.
type Index interface {
	AddMany(ctx context.Context, entries []Entry) error

	GetMeta(ctx context.Context, q queryast.Node) (<-chan MetaResult, error)
	GetDistinctMeta(ctx context.Context, q queryast.Node) (<-chan chunk.Meta, error)
	GetPaths(ctx context.Context, q queryast.Node) (<-chan string, error)

	DeleteByQuery(ctx context.Context, q queryast.Node) error
	DeleteByPaths(ctx context.Context, paths []string) error

	AddTags(ctx context.Context, q queryast.Node, tags []string) error
	RemoveTags(ctx context.Context, q queryast.Node, tags []string) error
	SetProperties(ctx context.Context, q queryast.Node, props map[string]string) error
	RemoveProperties(ctx context.Context, q queryast.Node, keys []string) error
	GetPropertyValues(ctx context.Context, q queryast.Node, key string) (<-chan string, error)
	GetAttributeValues(ctx context.Context, q queryast.Node, key string) (<-chan string, error)

	GetCollections(ctx context.Context) (<-chan string, error)
	AddCollection(ctx context.Context, name string) error
	ExistsCollection(ctx context.Context, name string) (bool, error)
	DeleteCollection(ctx context.Context, name string) error
}

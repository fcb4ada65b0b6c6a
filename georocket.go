// Package georocket wires the splitter, indexer, storage, index and
// retriever packages into a single ingest/query engine, the way
// search.go exposes InsertWithPool/Search over its lower level pieces.
package georocket

import (
	"context"
	"io"
	"time"

	"github.com/oarkflow/log"

	"github.com/oarkflow/georocket/importer"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/index/coordinator"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/query"
	"github.com/oarkflow/georocket/retriever"
	"github.com/oarkflow/georocket/storage"
)

// Config holds the pipeline's tunables, defaulted the way Config/GetConfig
// (config.go) is: a plain struct with a defaulting helper, no
// reflection-based config framework.
type Config struct {
	MaxBulkSize          int
	Debounce             time.Duration
	RetrieverParallelism int
	DefaultLayer         string
}

// DefaultConfig returns the pipeline's default tunables.
func DefaultConfig() Config {
	return Config{
		MaxBulkSize:          importer.DefaultMaxBulkSize,
		Debounce:             importer.DefaultDebounce,
		RetrieverParallelism: retriever.DefaultParallelism,
		DefaultLayer:         "default",
	}
}

// Engine is the assembled pipeline: a Store and an Index composed through
// an IndexCoordinator, an indexer Registry/Framework, and the importer and
// retriever built on top of them.
type Engine struct {
	Config      Config
	Coordinator *coordinator.Coordinator
	Registry    *indexer.Registry
	Framework   *indexer.Framework
	Importer    *importer.Importer
	Retriever   *retriever.Retriever
}

// New assembles an Engine over the given Store/Index backends, registering
// every built-in indexer factory unless registerBuiltins is
// false — a caller wiring a custom factory set can start from an empty
// Registry and register its own.
func New(store storage.Store, idx index.Index, cfg Config, registerBuiltins bool) *Engine {
	reg := indexer.NewRegistry()
	if registerBuiltins {
		reg.Register(indexer.BoundingBoxIndexerFactory{})
		reg.Register(indexer.GmlIdIndexerFactory{})
		reg.Register(indexer.GeoJsonIdIndexerFactory{})
		reg.Register(indexer.GenericAttributeIndexerFactory{})
		reg.Register(indexer.XalAddressIndexerFactory{})
		reg.RegisterMeta(indexer.ImportMetaIndexer{})
	}
	fw := indexer.NewFramework(reg)
	coord := coordinator.New(store, idx)

	imp := importer.New(coord.Store, fw, coord.Index)
	imp.MaxBulkSize = cfg.MaxBulkSize
	imp.Debounce = cfg.Debounce

	ret := retriever.New(coord.Index, coord.Store, reg)
	ret.Parallelism = cfg.RetrieverParallelism

	return &Engine{
		Config:      cfg,
		Coordinator: coord,
		Registry:    reg,
		Framework:   fw,
		Importer:    imp,
		Retriever:   ret,
	}
}

// Import ingests r as mimeType, using the engine's configured default
// layer, and logs a summary of the result.
func (e *Engine) Import(ctx context.Context, r io.Reader, mimeType string, im indexmeta.Meta) (importer.Result, error) {
	res, err := e.Importer.Import(ctx, r, mimeType, im, e.Config.DefaultLayer)
	if err != nil {
		log.Error().Err(err).Str("mimeType", mimeType).Msg("import failed")
		return res, err
	}
	log.Info().Int("chunkCount", res.ChunkCount).Int64("elapsedMs", res.Elapsed.Milliseconds()).Msg("import complete")
	return res, nil
}

// Query compiles and runs q, streaming the merged, reassembled document to
// w.
func (e *Engine) Query(ctx context.Context, w io.Writer, q string) error {
	start := time.Now()
	if err := e.Retriever.Retrieve(ctx, w, q); err != nil {
		log.Error().Err(err).Str("query", q).Msg("query failed")
		return err
	}
	log.Debug().Str("query", q).Int64("elapsedMs", time.Since(start).Milliseconds()).Msg("query complete")
	return nil
}

// Delete removes every chunk matching q from both the index and the store.
func (e *Engine) Delete(ctx context.Context, q string) error {
	node, err := query.Compile(q, e.Registry)
	if err != nil {
		return err
	}
	return e.Coordinator.DeleteByQuery(ctx, node)
}

// Close releases the engine's underlying store resources.
func (e *Engine) Close() error {
	return e.Coordinator.Close()
}

// Package importer drives one ingest request end to end:
// split, persist each chunk, then batch it through the indexer framework
// on a size- or time-triggered debounce.
package importer

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/oarkflow/gopool"
	"github.com/oarkflow/gopool/spinlock"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/splitter"
	"github.com/oarkflow/georocket/storage"
)

// DefaultMaxBulkSize and DefaultDebounce are the batch-flush defaults.
const (
	DefaultMaxBulkSize = 100
	DefaultDebounce    = 100 * time.Millisecond
	// DefaultIndexWorkers bounds the batch-flush worker pool's concurrency.
	DefaultIndexWorkers = 8
)

// Result reports the outcome of one import.
type Result struct {
	ChunkCount int
	Elapsed    time.Duration
}

// Importer wires a Store and an indexer Framework/Index pair into the
// chunk pipeline: split, persist, batch-index.
type Importer struct {
	Store        storage.Store
	Framework    *indexer.Framework
	Index        index.Index
	MaxBulkSize  int
	Debounce     time.Duration
	IndexWorkers int
}

// New returns an Importer with defaults for batching.
func New(store storage.Store, fw *indexer.Framework, idx index.Index) *Importer {
	return &Importer{
		Store:        store,
		Framework:    fw,
		Index:        idx,
		MaxBulkSize:  DefaultMaxBulkSize,
		Debounce:     DefaultDebounce,
		IndexWorkers: DefaultIndexWorkers,
	}
}

type queued struct {
	path  string
	chunk chunk.Chunk
	im    indexmeta.Meta
}

// Import consumes r as mimeType (application/xml or application/json),
// splitting it into chunks and driving them through Store.Add and the
// indexer framework in source order.
func (imp *Importer) Import(ctx context.Context, r io.Reader, mimeType string, im indexmeta.Meta, layer string) (Result, error) {
	start := time.Now()
	chunks := make(chan chunk.Chunk, imp.MaxBulkSize)
	splitErrCh := make(chan error, 1)

	go func() {
		defer close(chunks)
		var err error
		switch mimeType {
		case chunk.MimeXML, "text/xml":
			err = splitter.SplitXML(ctx, r, chunks)
		case chunk.MimeJSON:
			err = splitter.SplitGeoJSON(ctx, r, chunks)
		default:
			err = &errkind.UnsupportedMimeType{MimeType: mimeType}
		}
		splitErrCh <- err
	}()

	count, err := imp.drain(ctx, chunks, im, layer)
	if err != nil {
		return Result{}, err
	}
	if splitErr := <-splitErrCh; splitErr != nil {
		return Result{}, splitErr
	}
	return Result{ChunkCount: count, Elapsed: time.Since(start)}, nil
}

// drain persists each chunk as it arrives and batches indexing on
// max_bulk_size or the trailing-edge debounce timer.
func (imp *Importer) drain(ctx context.Context, chunks <-chan chunk.Chunk, im indexmeta.Meta, layer string) (int, error) {
	var batch []queued
	total := 0
	timer := time.NewTimer(imp.Debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := imp.indexBatch(ctx, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, &errkind.Cancelled{Stage: "import"}
		case <-timer.C:
			if err := flush(); err != nil {
				return total, err
			}
		case c, ok := <-chunks:
			if !ok {
				if err := flush(); err != nil {
					return total, err
				}
				return total, nil
			}
			path, err := imp.Store.Add(ctx, c.Bytes, c.Meta, im, layer)
			if err != nil {
				return total, &errkind.UpstreamFailure{Op: "importer.store_add", Cause: err}
			}
			batch = append(batch, queued{path: path, chunk: c, im: im})
			total++
			if len(batch) >= imp.MaxBulkSize {
				timer.Stop()
				if err := flush(); err != nil {
					return total, err
				}
				continue
			}
			timer.Reset(imp.Debounce)
		}
	}
}

// indexBatch runs the indexer framework over every queued chunk in the
// batch on a worker pool, since IndexChunk is CPU-bound and independent
// per chunk, then flushes the resulting documents in one AddMany call.
func (imp *Importer) indexBatch(ctx context.Context, batch []queued) error {
	workers := imp.IndexWorkers
	if workers <= 0 {
		workers = DefaultIndexWorkers
	}
	if workers > len(batch) {
		workers = len(batch)
	}

	var (
		mu      sync.Mutex
		entries = make([]index.Entry, len(batch))
		firstErr error
	)
	pool := gopool.NewGoPool(workers,
		gopool.WithLock(new(spinlock.SpinLock)),
		gopool.WithErrorCallback(func(err error) {
			mu.Lock()
			if firstErr == nil {
				firstErr = &errkind.UpstreamFailure{Op: "importer.index_chunk", Cause: err}
			}
			mu.Unlock()
		}),
	)
	for i, q := range batch {
		i, q := i, q
		pool.AddTask(func() (interface{}, error) {
			doc, err := imp.Framework.IndexChunk(q.path, q.chunk, q.im)
			if err != nil {
				return nil, err
			}
			// Each task owns its own slot, so entries keep batch (source) order.
			entries[i] = index.Entry{Path: q.path, Doc: doc, Meta: q.chunk.Meta}
			return nil, nil
		})
	}
	pool.Wait()
	pool.Release()
	if firstErr != nil {
		return firstErr
	}

	if err := imp.Index.AddMany(ctx, entries); err != nil {
		return &errkind.UpstreamFailure{Op: "importer.add_many", Cause: err}
	}
	return nil
}

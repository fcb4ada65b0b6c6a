// Package retriever drives query→index→store→merger: compile
// the query, ask the index for matching chunk metadata, fetch chunk bytes
// in bounded parallelism, and stream the reassembled document.
package retriever

import (
	"context"
	"io"
	"sort"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/merger"
	"github.com/oarkflow/georocket/query"
	"github.com/oarkflow/georocket/storage"
)

// DefaultParallelism is the default fetch fan-out.
const DefaultParallelism = 32

// Retriever wires an Index, a Store and a query Registry into the
// query→fetch→merge retrieval pipeline.
type Retriever struct {
	Index       index.Index
	Store       storage.Store
	Registry    *indexer.Registry
	Parallelism int
}

// New returns a Retriever with default fetch parallelism.
func New(idx index.Index, store storage.Store, reg *indexer.Registry) *Retriever {
	return &Retriever{Index: idx, Store: store, Registry: reg, Parallelism: DefaultParallelism}
}

// Retrieve compiles q, resolves matching chunk metadata, fetches the
// underlying bytes in bounded parallelism, and streams the merged result
// to w. Output preserves the source order of the original import, sorting
// get_meta results by path since the Index interface does not itself
// guarantee order.
func (r *Retriever) Retrieve(ctx context.Context, w io.Writer, q string) error {
	node, err := query.Compile(q, r.Registry)
	if err != nil {
		return err
	}

	metaCh, err := r.Index.GetMeta(ctx, node)
	if err != nil {
		return &errkind.UpstreamFailure{Op: "retriever.get_meta", Cause: err}
	}
	var results []index.MetaResult
	for m := range metaCh {
		results = append(results, m)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	if len(results) == 0 {
		return nil
	}

	paths := make([]string, len(results))
	metaByPath := make(map[string]chunk.Meta, len(results))
	for i, m := range results {
		paths[i] = m.Path
		metaByPath[m.Path] = m.Meta
	}

	parallelism := r.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	fetched := r.Store.GetManyParallel(ctx, paths, parallelism)

	items := make(chan merger.Item, len(paths))
	for f := range fetched {
		if f.Err != nil {
			close(items)
			return &errkind.UpstreamFailure{Op: "retriever.get_many_parallel", Cause: f.Err}
		}
		items <- merger.Item{Bytes: f.Bytes, Meta: metaByPath[f.Path]}
	}
	close(items)

	mimeType := results[0].Meta.MimeType()
	switch mimeType {
	case chunk.MimeJSON:
		return merger.MergeGeoJSON(ctx, w, items)
	default:
		return merger.MergeXML(ctx, w, items)
	}
}

package merger

import (
	"bufio"
	"context"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
)

// MergeGeoJSON consumes items in order and writes a single GeoJSON document
// to w, streaming each chunk's bytes out as it arrives rather than holding
// the whole result in memory. Only the bare-object-vs-collection decision
// needs lookahead, and that needs at most one item of it: once a second
// item arrives we know it's a collection, and the FeatureCollection vs
// GeometryCollection classification is decided from those first two items
// rather than the full stream (a query's results are homogeneous in
// practice, so the earliest classifiable item is representative).
func MergeGeoJSON(ctx context.Context, w io.Writer, items <-chan Item) error {
	bw := bufio.NewWriter(w)

	first, ok, err := recvItem(ctx, items)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	second, ok, err := recvItem(ctx, items)
	if err != nil {
		return err
	}
	if !ok {
		bw.Write(first.Bytes)
		return bw.Flush()
	}

	kind, key := classifyCollection(first, second)
	bw.WriteString(`{"type":"`)
	bw.WriteString(kind)
	bw.WriteString(`","`)
	bw.WriteString(key)
	bw.WriteString(`":[`)
	bw.Write(first.Bytes)
	bw.WriteByte(',')
	bw.Write(second.Bytes)

	for {
		select {
		case <-ctx.Done():
			return &errkind.Cancelled{Stage: "merge"}
		case item, ok := <-items:
			if !ok {
				bw.WriteString("]}")
				return bw.Flush()
			}
			bw.WriteByte(',')
			bw.Write(item.Bytes)
		}
	}
}

func recvItem(ctx context.Context, items <-chan Item) (Item, bool, error) {
	select {
	case <-ctx.Done():
		return Item{}, false, &errkind.Cancelled{Stage: "merge"}
	case item, ok := <-items:
		return item, ok, nil
	}
}

// classifyCollection decides FeatureCollection vs GeometryCollection: any
// chunk typed Feature, or any chunk whose parent field name was "features",
// tips the document to FeatureCollection.
func classifyCollection(items ...Item) (kind, arrayField string) {
	for _, item := range items {
		g := item.Meta.GeoJSON
		if g == nil {
			continue
		}
		if g.Type == chunk.TypeFeature {
			return "FeatureCollection", "features"
		}
		if g.ParentFieldName != nil && *g.ParentFieldName == "features" {
			return "FeatureCollection", "features"
		}
	}
	return "GeometryCollection", "geometries"
}

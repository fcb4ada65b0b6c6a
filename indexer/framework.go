package indexer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/indexmeta"
)

// Framework runs the registered indexers over one chunk at a time and
// aggregates their outputs.
type Framework struct {
	reg *Registry
}

// NewFramework returns a Framework backed by reg.
func NewFramework(reg *Registry) *Framework {
	return &Framework{reg: reg}
}

// IndexChunk runs every MetaIndexer and every event-compatible Factory's
// indexer over c, and returns the merged index document.
func (f *Framework) IndexChunk(path string, c chunk.Chunk, im indexmeta.Meta) (Doc, error) {
	mime := c.Meta.MimeType()
	var eventDoc Doc
	var err error
	switch mime {
	case chunk.MimeXML, "text/xml":
		eventDoc, err = f.runXML(c, im)
	case chunk.MimeJSON:
		eventDoc, err = f.runJSON(c, im)
	default:
		return nil, &errkind.UnsupportedMimeType{MimeType: mime}
	}
	if err != nil {
		return nil, err
	}

	// MetaIndexer fields win on conflict: merge event results first, then
	// overlay every MetaIndexer's output on top.
	merged := make(Doc)
	mergeInto(merged, eventDoc)
	for _, mi := range f.reg.metas {
		for k, v := range mi.OnChunk(path, c.Meta, im) {
			if existing, ok := merged[k]; ok && aggregateFields[k] {
				merged[k] = mergeAggregate(existing, v)
				continue
			}
			merged[k] = v
		}
	}
	return merged, nil
}

func (f *Framework) runXML(c chunk.Chunk, im indexmeta.Meta) (Doc, error) {
	var indexers []XMLIndexer
	for _, factory := range f.reg.factories {
		ix := factory.CreateXMLIndexer()
		if ix == nil {
			continue
		}
		if aware, ok := ix.(CRSAware); ok && im.HasFallbackCRS() {
			aware.SetFallbackCRS(im.FallbackCRS)
		}
		indexers = append(indexers, ix)
	}

	src := event.NewXMLSource(bytes.NewReader(c.Bytes), event.RawBytes(c.Bytes))
	for {
		ev, err := src.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		for _, ix := range indexers {
			ix.OnXMLEvent(ev)
		}
	}

	doc := make(Doc)
	for _, ix := range indexers {
		mergeInto(doc, ix.MakeResult())
	}
	return doc, nil
}

func (f *Framework) runJSON(c chunk.Chunk, im indexmeta.Meta) (Doc, error) {
	var indexers []JSONIndexer
	for _, factory := range f.reg.factories {
		ix := factory.CreateJSONIndexer()
		if ix == nil {
			continue
		}
		if aware, ok := ix.(CRSAware); ok && im.HasFallbackCRS() {
			aware.SetFallbackCRS(im.FallbackCRS)
		}
		indexers = append(indexers, ix)
	}

	src := event.NewJSONSource(bytes.NewReader(c.Bytes))
	for {
		ev, err := src.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		for _, ix := range indexers {
			ix.OnJSONEvent(ev)
		}
	}

	doc := make(Doc)
	for _, ix := range indexers {
		mergeInto(doc, ix.MakeResult())
	}
	return doc, nil
}

// aggregateFields may legally be contributed to by more than one indexer.
var aggregateFields = map[string]bool{
	FieldGenAttrs: true,
	FieldProps:    true,
	FieldTags:     true,
}

func mergeInto(dst Doc, src Doc) {
	for k, v := range src {
		existing, ok := dst[k]
		if !ok {
			dst[k] = v
			continue
		}
		if aggregateFields[k] {
			dst[k] = mergeAggregate(existing, v)
			continue
		}
		panic(fmt.Sprintf("indexer framework: two indexers both produced field %q; distinct indexers must name disjoint top-level fields", k))
	}
}

func mergeAggregate(a, b any) any {
	switch av := a.(type) {
	case map[string]string:
		if bv, ok := b.(map[string]string); ok {
			out := make(map[string]string, len(av)+len(bv))
			for k, v := range av {
				out[k] = v
			}
			for k, v := range bv {
				out[k] = v
			}
			return out
		}
	case []string:
		if bv, ok := b.([]string); ok {
			seen := make(map[string]struct{}, len(av)+len(bv))
			out := make([]string, 0, len(av)+len(bv))
			for _, s := range av {
				if _, dup := seen[s]; !dup {
					seen[s] = struct{}{}
					out = append(out, s)
				}
			}
			for _, s := range bv {
				if _, dup := seen[s]; !dup {
					seen[s] = struct{}{}
					out = append(out, s)
				}
			}
			return out
		}
	}
	return b
}

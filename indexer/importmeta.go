package indexer

import (
	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexmeta"
)

// ImportMetaIndexer is the built-in MetaIndexer: it carries the inbound
// IndexMeta supplied at import time into the index document, since nothing
// else in the framework ever looks at it beyond FallbackCRS. Tags and
// properties are copied per chunk rather than aliased, since the same
// indexmeta.Meta value is shared by every chunk in one import and
// AddTags/SetProperties mutate a document's map in place.
type ImportMetaIndexer struct{}

func (ImportMetaIndexer) Name() string { return "importMeta" }

func (ImportMetaIndexer) OnChunk(_ string, _ chunk.Meta, im indexmeta.Meta) Doc {
	doc := Doc{}
	if len(im.Tags) > 0 {
		tags := make(map[string]struct{}, len(im.Tags))
		for t := range im.Tags {
			tags[t] = struct{}{}
		}
		doc[FieldTags] = tags
	}
	if len(im.Properties) > 0 {
		props := make(map[string]string, len(im.Properties))
		for k, v := range im.Properties {
			props[k] = v
		}
		doc[FieldProps] = props
	}
	if im.CorrelationID != "" {
		doc["correlationId"] = im.CorrelationID
	}
	if im.Filename != "" {
		doc["filename"] = im.Filename
	}
	if !im.Timestamp.IsZero() {
		doc["timestamp"] = im.Timestamp
	}
	return doc
}

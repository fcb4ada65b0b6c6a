// Package indexer implements the indexer framework: running a
// set of registered indexers over one chunk's event stream and aggregating
// their outputs into a single index document, plus the built-in indexers.
package indexer

import (
	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/queryast"
)

// SourceKind identifies which event stream an indexer wants.
type SourceKind int

const (
	SourceXML SourceKind = iota
	SourceJSON
)

// Doc is an index document: an unordered mapping from field name to a
// primitive, list, or nested mapping.
type Doc map[string]any

// Well-known aggregate field names that multiple indexers may legally both
// contribute to.
const (
	FieldGenAttrs = "genAttrs"
	FieldProps    = "props"
	FieldTags     = "tags"
)

// XMLIndexer processes one chunk's XML event stream.
type XMLIndexer interface {
	OnXMLEvent(ev event.XMLEvent)
	MakeResult() Doc
}

// JSONIndexer processes one chunk's JSON event stream.
type JSONIndexer interface {
	OnJSONEvent(ev event.JSONEvent)
	MakeResult() Doc
}

// CRSAware is implemented by indexers that need a fallback coordinate
// reference system when a chunk's own metadata omits one.
type CRSAware interface {
	SetFallbackCRS(crs string)
}

// MetaIndexer is a stateless indexer running once per chunk over the
// chunk's own metadata rather than its event stream.
type MetaIndexer interface {
	Name() string
	OnChunk(path string, meta chunk.Meta, im indexmeta.Meta) Doc
}

// Factory resolves indexer instances and compiles query terms. Implementations that cannot produce an XML or JSON indexer return
// nil from the corresponding Create method.
type Factory interface {
	Name() string
	CreateXMLIndexer() XMLIndexer
	CreateJSONIndexer() JSONIndexer
	QueryPriority(term queryast.Term) queryast.Priority
	CompileQuery(term queryast.Term) (queryast.Node, bool)
}

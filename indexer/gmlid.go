package indexer

import (
	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/queryast"
)

// GmlIdIndexerFactory produces indexers that collect every gml:id
// attribute value found in an XML chunk.
type GmlIdIndexerFactory struct{}

func (GmlIdIndexerFactory) Name() string { return "gmlIds" }

func (GmlIdIndexerFactory) CreateXMLIndexer() XMLIndexer {
	return &gmlIDIndexer{}
}

func (GmlIdIndexerFactory) CreateJSONIndexer() JSONIndexer { return nil }

func (GmlIdIndexerFactory) QueryPriority(term queryast.Term) queryast.Priority {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if t.Key == "gmlIds" {
			return queryast.PriorityMust
		}
	case queryast.StringTerm:
		return queryast.PriorityShould
	}
	return queryast.PriorityNone
}

func (GmlIdIndexerFactory) CompileQuery(term queryast.Term) (queryast.Node, bool) {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if t.Key == "gmlIds" {
			return queryast.Contains{Field: "gmlIds", Value: t.Value, Weight: 1.0}, true
		}
	case queryast.StringTerm:
		return queryast.Contains{Field: "gmlIds", Value: t.Value, Weight: 0.5}, true
	}
	return nil, false
}

type gmlIDIndexer struct {
	ids []string
}

func (ix *gmlIDIndexer) OnXMLEvent(ev event.XMLEvent) {
	if ev.Kind != event.StartElement {
		return
	}
	for _, a := range ev.Attrs {
		if a.Prefix == "gml" && a.Local == "id" {
			ix.ids = append(ix.ids, a.Value)
		}
	}
}

func (ix *gmlIDIndexer) MakeResult() Doc {
	if len(ix.ids) == 0 {
		return Doc{}
	}
	return Doc{"gmlIds": ix.ids}
}

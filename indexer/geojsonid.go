package indexer

import (
	"strconv"

	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/queryast"
)

// GeoJsonIdIndexerFactory produces indexers that collect the top-level
// "id" field of a GeoJSON Feature chunk.
type GeoJsonIdIndexerFactory struct{}

func (GeoJsonIdIndexerFactory) Name() string { return "geoJsonFeatureIds" }

func (GeoJsonIdIndexerFactory) CreateXMLIndexer() XMLIndexer { return nil }

func (GeoJsonIdIndexerFactory) CreateJSONIndexer() JSONIndexer {
	return &geoJSONIDIndexer{}
}

func (GeoJsonIdIndexerFactory) QueryPriority(term queryast.Term) queryast.Priority {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if t.Key == "geoJsonFeatureIds" {
			return queryast.PriorityMust
		}
	case queryast.StringTerm:
		return queryast.PriorityShould
	}
	return queryast.PriorityNone
}

func (GeoJsonIdIndexerFactory) CompileQuery(term queryast.Term) (queryast.Node, bool) {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if t.Key == "geoJsonFeatureIds" {
			return queryast.Contains{Field: "geoJsonFeatureIds", Value: t.Value, Weight: 1.0}, true
		}
	case queryast.StringTerm:
		return queryast.Contains{Field: "geoJsonFeatureIds", Value: t.Value, Weight: 0.5}, true
	}
	return nil, false
}

type geoJSONIDIndexer struct {
	depth     int
	pendingID bool
	ids       []string
}

func (ix *geoJSONIDIndexer) OnJSONEvent(ev event.JSONEvent) {
	switch ev.Kind {
	case event.StartObject, event.StartArray:
		ix.depth++
	case event.EndObject, event.EndArray:
		ix.depth--
	case event.FieldName:
		if ix.depth == 1 && ev.Text == "id" {
			ix.pendingID = true
		}
	case event.ValueString:
		if ix.pendingID {
			ix.ids = append(ix.ids, ev.Text)
			ix.pendingID = false
		}
	case event.ValueNumber:
		if ix.pendingID {
			ix.ids = append(ix.ids, strconv.FormatFloat(ev.Number, 'g', -1, 64))
			ix.pendingID = false
		}
	default:
		ix.pendingID = false
	}
}

func (ix *geoJSONIDIndexer) MakeResult() Doc {
	if len(ix.ids) == 0 {
		return Doc{}
	}
	return Doc{"geoJsonFeatureIds": ix.ids}
}

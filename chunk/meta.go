// Package chunk defines the Chunk and ChunkMeta data model and its
// bit-exact JSON encoding, so a stored chunk round-trips through disk or
// a wire format without losing any metadata.
package chunk

import (
	json "github.com/oarkflow/json"
)

// MimeType constants recognized by the indexer framework.
const (
	MimeXML  = "application/xml"
	MimeJSON = "application/json"
)

// GeoJSONType enumerates the GeoJSON object kinds a chunk may carry.
type GeoJSONType string

const (
	TypeFeature            GeoJSONType = "Feature"
	TypePolygon            GeoJSONType = "Polygon"
	TypeLineString         GeoJSONType = "LineString"
	TypePoint              GeoJSONType = "Point"
	TypeMultiPolygon       GeoJSONType = "MultiPolygon"
	TypeMultiLineString    GeoJSONType = "MultiLineString"
	TypeMultiPoint         GeoJSONType = "MultiPoint"
	TypeGeometryCollection GeoJSONType = "GeometryCollection"
	TypeUnknown            GeoJSONType = "Unknown"
)

// StartElement is one link of an XmlMeta's ancestor chain: the enclosing
// XML start tag, its namespace declarations and its non-namespace
// attributes.
type StartElement struct {
	Prefix            string            `json:"prefix"`
	LocalName         string            `json:"localName"`
	NamespacePrefixes map[string]string `json:"namespacePrefixes,omitempty"`
	Attributes        map[string]string `json:"attributes,omitempty"`
}

// Meta is the tagged ChunkMeta variant. Exactly one of XML or
// GeoJSON is non-nil.
type Meta struct {
	XML     *XMLMeta
	GeoJSON *GeoJSONMeta
}

// XMLMeta is the XmlChunkMeta variant.
type XMLMeta struct {
	MimeType string         `json:"mimeType"`
	Parents  []StartElement `json:"parents"`
	Start    int64          `json:"start"`
	End      int64          `json:"end"`
	// Extra preserves unknown fields verbatim across a decode/encode
	// round trip.
	Extra map[string]any `json:"-"`
}

// GeoJSONMeta is the GeoJsonChunkMeta variant.
type GeoJSONMeta struct {
	MimeType        string         `json:"mimeType"`
	Type            GeoJSONType    `json:"type"`
	ParentFieldName *string        `json:"parentFieldName,omitempty"`
	Extra           map[string]any `json:"-"`
}

// MimeType returns the mime type of whichever variant is populated.
func (m Meta) MimeType() string {
	if m.XML != nil {
		return m.XML.MimeType
	}
	if m.GeoJSON != nil {
		return m.GeoJSON.MimeType
	}
	return ""
}

// Parents returns the XML ancestor chain, or nil for a GeoJSON chunk.
func (m Meta) Parents() []StartElement {
	if m.XML == nil {
		return nil
	}
	return m.XML.Parents
}

func (m Meta) MarshalJSON() ([]byte, error) {
	switch {
	case m.XML != nil:
		return marshalWithExtra(m.XML, m.XML.Extra)
	case m.GeoJSON != nil:
		return marshalWithExtra(m.GeoJSON, m.GeoJSON.Extra)
	default:
		return []byte("null"), nil
	}
}

func (m *Meta) UnmarshalJSON(data []byte) error {
	var probe struct {
		MimeType string `json:"mimeType"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.MimeType {
	case MimeJSON:
		var g GeoJSONMeta
		extra, err := unmarshalWithExtra(data, &g)
		if err != nil {
			return err
		}
		g.Extra = extra
		m.GeoJSON = &g
	default:
		var x XMLMeta
		extra, err := unmarshalWithExtra(data, &x)
		if err != nil {
			return err
		}
		x.Extra = extra
		m.XML = &x
	}
	return nil
}

// marshalWithExtra encodes v (a struct with its own json tags) merged with
// any captured unknown top-level fields in extra.
func marshalWithExtra(v any, extra map[string]any) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(base, &m); err != nil {
		return nil, err
	}
	for k, v := range extra {
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		if _, known := m[k]; !known {
			m[k] = enc
		}
	}
	return json.Marshal(m)
}

// unmarshalWithExtra decodes data into v, then returns whatever top-level
// keys v's own json tags did not consume.
func unmarshalWithExtra(data []byte, v any) (map[string]any, error) {
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	known, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var knownFields map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownFields); err != nil {
		return nil, err
	}
	var extra map[string]any
	for k, v := range raw {
		if _, ok := knownFields[k]; ok {
			continue
		}
		if extra == nil {
			extra = map[string]any{}
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		extra[k] = val
	}
	return extra, nil
}

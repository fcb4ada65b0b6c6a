package merger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/splitter"
)

// TestMergeGeoJSONSingleFeature mirrors S3: a single Feature chunk merges
// back to the bare object, unwrapped.
func TestMergeGeoJSONSingleFeature(t *testing.T) {
	raw := `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`
	items := make(chan Item, 1)
	items <- Item{
		Bytes: []byte(raw),
		Meta:  chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: chunk.TypeFeature}},
	}
	close(items)

	var out bytes.Buffer
	if err := MergeGeoJSON(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeGeoJSON: %v", err)
	}
	if out.String() != raw {
		t.Fatalf("merged = %q, want %q", out.String(), raw)
	}
}

func TestMergeGeoJSONFeatureCollection(t *testing.T) {
	f1 := `{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}}`
	f2 := `{"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]},"properties":{}}`

	items := make(chan Item, 2)
	items <- Item{Bytes: []byte(f1), Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: chunk.TypeFeature}}}
	items <- Item{Bytes: []byte(f2), Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: chunk.TypeFeature}}}
	close(items)

	var out bytes.Buffer
	if err := MergeGeoJSON(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeGeoJSON: %v", err)
	}
	want := `{"type":"FeatureCollection","features":[` + f1 + `,` + f2 + `]}`
	if out.String() != want {
		t.Fatalf("merged = %q, want %q", out.String(), want)
	}
}

func TestMergeGeoJSONGeometryCollection(t *testing.T) {
	g1 := `{"type":"Point","coordinates":[1,2]}`
	g2 := `{"type":"Point","coordinates":[3,4]}`

	items := make(chan Item, 2)
	items <- Item{Bytes: []byte(g1), Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: chunk.TypePoint}}}
	items <- Item{Bytes: []byte(g2), Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: chunk.TypePoint}}}
	close(items)

	var out bytes.Buffer
	if err := MergeGeoJSON(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeGeoJSON: %v", err)
	}
	want := `{"type":"GeometryCollection","geometries":[` + g1 + `,` + g2 + `]}`
	if out.String() != want {
		t.Fatalf("merged = %q, want %q", out.String(), want)
	}
}

// TestSplitMergeGeoJSONRoundTrip feeds a three-feature FeatureCollection
// through SplitGeoJSON and back through MergeGeoJSON, checking every
// non-first chunk is a syntactically complete object (no leading comma)
// and that the merged output reproduces the input byte-for-byte.
func TestSplitMergeGeoJSONRoundTrip(t *testing.T) {
	input := `{"type":"FeatureCollection","features":[` +
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]},"properties":{}},` +
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[3,4]},"properties":{}},` +
		`{"type":"Feature","geometry":{"type":"Point","coordinates":[5,6]},"properties":{}}` +
		`]}`

	chunks := make(chan chunk.Chunk, 8)
	go func() {
		if err := splitter.SplitGeoJSON(context.Background(), strings.NewReader(input), chunks); err != nil {
			t.Errorf("SplitGeoJSON: %v", err)
		}
		close(chunks)
	}()

	var collected []chunk.Chunk
	for c := range chunks {
		collected = append(collected, c)
	}
	if len(collected) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(collected))
	}
	for i, c := range collected {
		s := string(c.Bytes)
		if strings.HasPrefix(s, ",") {
			t.Fatalf("chunk %d starts with a leading comma: %q", i, s)
		}
		if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
			t.Fatalf("chunk %d is not a complete object: %q", i, s)
		}
	}

	items := make(chan Item, 8)
	go func() {
		for _, c := range collected {
			items <- Item{Bytes: c.Bytes, Meta: c.Meta}
		}
		close(items)
	}()

	var out bytes.Buffer
	if err := MergeGeoJSON(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeGeoJSON: %v", err)
	}
	if out.String() != input {
		t.Fatalf("merged = %q, want %q", out.String(), input)
	}
}

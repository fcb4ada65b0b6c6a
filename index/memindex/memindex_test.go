package memindex

import (
	"context"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

func meta(t chunk.GeoJSONType) chunk.Meta {
	return chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{MimeType: chunk.MimeJSON, Type: t}}
}

func TestAddManyAndAll(t *testing.T) {
	idx := New()
	err := idx.AddMany(context.Background(), []index.Entry{
		{Path: "p1", Doc: indexer.Doc{"gmlIds": []string{"a"}}, Meta: meta(chunk.TypeFeature)},
		{Path: "p2", Doc: indexer.Doc{"gmlIds": []string{"b"}}, Meta: meta(chunk.TypePoint)},
	})
	if err != nil {
		t.Fatalf("AddMany: %v", err)
	}
	paths, err := idx.GetPaths(context.Background(), queryast.All{})
	if err != nil {
		t.Fatalf("GetPaths: %v", err)
	}
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 paths, got %d: %v", len(got), got)
	}
}

func TestContainsQueryUsesTrieCandidate(t *testing.T) {
	idx := New()
	idx.AddMany(context.Background(), []index.Entry{
		{Path: "p1", Doc: indexer.Doc{"gmlIds": []string{"berlin-1"}}, Meta: meta(chunk.TypeFeature)},
		{Path: "p2", Doc: indexer.Doc{"gmlIds": []string{"munich-1"}}, Meta: meta(chunk.TypeFeature)},
	})
	paths, _ := idx.GetPaths(context.Background(), queryast.Contains{Field: "gmlIds", Value: "berlin-1"})
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 1 || got[0] != "p1" {
		t.Fatalf("expected [p1], got %v", got)
	}
}

func TestDeleteByQueryRemovesTriePostings(t *testing.T) {
	idx := New()
	idx.AddMany(context.Background(), []index.Entry{
		{Path: "p1", Doc: indexer.Doc{"gmlIds": []string{"x"}}, Meta: meta(chunk.TypeFeature)},
	})
	if err := idx.DeleteByQuery(context.Background(), queryast.All{}); err != nil {
		t.Fatalf("DeleteByQuery: %v", err)
	}
	// Idempotent: deleting again over an empty index must not error.
	if err := idx.DeleteByQuery(context.Background(), queryast.All{}); err != nil {
		t.Fatalf("second DeleteByQuery: %v", err)
	}
	paths, _ := idx.GetPaths(context.Background(), queryast.Contains{Field: "gmlIds", Value: "x"})
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 0 {
		t.Fatalf("expected no matches after delete, got %v", got)
	}
}

func TestTagsAndProperties(t *testing.T) {
	idx := New()
	idx.AddMany(context.Background(), []index.Entry{
		{Path: "p1", Doc: indexer.Doc{}, Meta: meta(chunk.TypeFeature)},
	})
	if err := idx.AddTags(context.Background(), queryast.All{}, []string{"urgent"}); err != nil {
		t.Fatalf("AddTags: %v", err)
	}
	paths, _ := idx.GetPaths(context.Background(), queryast.Contains{Field: "tags", Value: "urgent"})
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 1 {
		t.Fatalf("expected tag-matched path, got %v", got)
	}

	if err := idx.SetProperties(context.Background(), queryast.All{}, map[string]string{"owner": "alice"}); err != nil {
		t.Fatalf("SetProperties: %v", err)
	}
	vals, _ := idx.GetPropertyValues(context.Background(), queryast.All{}, "owner")
	var got2 []string
	for v := range vals {
		got2 = append(got2, v)
	}
	if len(got2) != 1 || got2[0] != "alice" {
		t.Fatalf("expected [alice], got %v", got2)
	}

	if err := idx.RemoveTags(context.Background(), queryast.All{}, []string{"urgent"}); err != nil {
		t.Fatalf("RemoveTags: %v", err)
	}
	paths, _ = idx.GetPaths(context.Background(), queryast.Contains{Field: "tags", Value: "urgent"})
	got = nil
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 0 {
		t.Fatalf("expected tag removed, got %v", got)
	}
}

func TestBboxQueries(t *testing.T) {
	idx := New()
	idx.AddMany(context.Background(), []index.Entry{
		{Path: "p1", Doc: indexer.Doc{"bbox": []float64{0, 0, 10, 10}}, Meta: meta(chunk.TypePolygon)},
		{Path: "p2", Doc: indexer.Doc{"bbox": []float64{100, 100, 110, 110}}, Meta: meta(chunk.TypePolygon)},
	})
	paths, _ := idx.GetPaths(context.Background(), queryast.ElementsWithin{BBox: queryast.BBox{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5}})
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if len(got) != 1 || got[0] != "p1" {
		t.Fatalf("expected [p1], got %v", got)
	}
}

func TestCollections(t *testing.T) {
	idx := New()
	if err := idx.AddCollection(context.Background(), "roads"); err != nil {
		t.Fatalf("AddCollection: %v", err)
	}
	ok, err := idx.ExistsCollection(context.Background(), "roads")
	if err != nil || !ok {
		t.Fatalf("expected roads to exist, ok=%v err=%v", ok, err)
	}
	if err := idx.DeleteCollection(context.Background(), "roads"); err != nil {
		t.Fatalf("DeleteCollection: %v", err)
	}
	ok, _ = idx.ExistsCollection(context.Background(), "roads")
	if ok {
		t.Fatal("expected roads to no longer exist")
	}
}

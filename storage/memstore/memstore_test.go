package memstore

import (
	"context"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexmeta"
)

func TestAddGetOne(t *testing.T) {
	s := New()
	defer s.Close()

	path, err := s.Add(context.Background(), []byte("hello"), chunk.Meta{}, indexmeta.Meta{}, "layer1")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	got, err := s.GetOne(context.Background(), path)
	if err != nil {
		t.Fatalf("GetOne: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestGetManyParallelPreservesOrder(t *testing.T) {
	s := New()
	defer s.Close()

	var paths []string
	for i := 0; i < 20; i++ {
		p, err := s.Add(context.Background(), []byte{byte(i)}, chunk.Meta{}, indexmeta.Meta{}, "l")
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		paths = append(paths, p)
	}

	i := 0
	for f := range s.GetManyParallel(context.Background(), paths, 4) {
		if f.Err != nil {
			t.Fatalf("fetch %d: %v", i, f.Err)
		}
		if f.Path != paths[i] {
			t.Fatalf("result %d out of order: got path %q, want %q", i, f.Path, paths[i])
		}
		if len(f.Bytes) != 1 || f.Bytes[0] != byte(i) {
			t.Fatalf("result %d bytes = %v, want [%d]", i, f.Bytes, i)
		}
		i++
	}
	if i != len(paths) {
		t.Fatalf("got %d results, want %d", i, len(paths))
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New()
	defer s.Close()

	path, _ := s.Add(context.Background(), []byte("x"), chunk.Meta{}, indexmeta.Meta{}, "l")
	if err := s.Delete(context.Background(), []string{path}); err != nil {
		t.Fatalf("first Delete: %v", err)
	}
	if err := s.Delete(context.Background(), []string{path, "never-existed"}); err != nil {
		t.Fatalf("second Delete on unknown paths should be a silent success: %v", err)
	}
	if _, err := s.GetOne(context.Background(), path); err == nil {
		t.Fatal("expected GetOne to fail after delete")
	}
}

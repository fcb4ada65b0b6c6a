package fsstore

import (
	"context"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexmeta"
)

func TestAddGetOneDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	path, err := s.Add(context.Background(), []byte("hello"), chunk.Meta{}, indexmeta.Meta{}, "docs")
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

	if err := s.Delete(context.Background(), []string{path}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), []string{path}); err != nil {
		t.Fatalf("second Delete should be a silent success: %v", err)
	}
	if _, err := s.GetOne(context.Background(), path); err == nil {
		t.Fatal("expected GetOne to fail after delete")
	}
}

func TestGetManyParallel(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.Close()

	var paths []string
	for i := 0; i < 10; i++ {
		p, err := s.Add(context.Background(), []byte{byte(i)}, chunk.Meta{}, indexmeta.Meta{}, "l")
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		paths = append(paths, p)
	}
	i := 0
	for f := range s.GetManyParallel(context.Background(), paths, 3) {
		if f.Err != nil {
			t.Fatalf("fetch %d: %v", i, f.Err)
		}
		if f.Path != paths[i] {
			t.Fatalf("result %d out of order", i)
		}
		i++
	}
	if i != len(paths) {
		t.Fatalf("got %d results, want %d", i, len(paths))
	}
}

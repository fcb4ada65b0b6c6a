package georocket

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oarkflow/georocket/index/memindex"
	"github.com/oarkflow/georocket/indexmeta"
	"github.com/oarkflow/georocket/storage/memstore"
)

func TestEngineImportQueryDelete(t *testing.T) {
	store := memstore.New()
	idx := memindex.New()
	e := New(store, idx, DefaultConfig(), true)

	xmlDoc := `<c xmlns="u:a"><f id="1"/><f id="2"/></c>`
	res, err := e.Import(context.Background(), strings.NewReader(xmlDoc), "application/xml", indexmeta.Meta{})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.ChunkCount != 2 {
		t.Fatalf("expected 2 chunks, got %d", res.ChunkCount)
	}

	var buf bytes.Buffer
	if err := e.Query(context.Background(), &buf, ""); err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(buf.String(), `<f id="1"`) {
		t.Fatalf("expected merged output to contain chunk 1, got %s", buf.String())
	}

	if err := e.Delete(context.Background(), ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	buf.Reset()
	if err := e.Query(context.Background(), &buf, ""); err != nil {
		t.Fatalf("Query after delete: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected empty output after delete, got %s", buf.String())
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

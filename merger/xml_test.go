package merger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/splitter"
)

// TestMergeXMLScenario mirrors S1/S2: splitting
// `<c xmlns="u:a"><f id="1"/><f id="2"/></c>` and merging the resulting
// chunks reproduces the original document byte-for-byte apart from the XML
// declaration, which the merger always writes with encoding="UTF-8" (no
// inter-chunk whitespace was present to lose).
func TestMergeXMLScenario(t *testing.T) {
	input := `<?xml version="1.0"?><c xmlns="u:a"><f id="1"/><f id="2"/></c>`

	chunks := make(chan chunk.Chunk, 8)
	go func() {
		if err := splitter.SplitXML(context.Background(), strings.NewReader(input), chunks); err != nil {
			t.Errorf("SplitXML: %v", err)
		}
		close(chunks)
	}()

	var collected []chunk.Chunk
	for c := range chunks {
		collected = append(collected, c)
	}
	if len(collected) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(collected))
	}

	items := make(chan Item, 8)
	go func() {
		for _, c := range collected {
			items <- Item{Bytes: c.Bytes, Meta: c.Meta}
		}
		close(items)
	}()

	var out bytes.Buffer
	if err := MergeXML(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeXML: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?><c xmlns="u:a"><f id="1"/><f id="2"/></c>`
	if out.String() != want {
		t.Fatalf("merged = %q, want %q", out.String(), want)
	}
}

func TestMergeXMLClosesDifferingSuffix(t *testing.T) {
	a := chunk.StartElement{LocalName: "root"}
	b1 := chunk.StartElement{LocalName: "group", Attributes: map[string]string{"id": "1"}}
	b2 := chunk.StartElement{LocalName: "group", Attributes: map[string]string{"id": "2"}}

	items := make(chan Item, 2)
	items <- Item{
		Bytes: []byte(`<leaf1/>`),
		Meta:  chunk.Meta{XML: &chunk.XMLMeta{MimeType: chunk.MimeXML, Parents: []chunk.StartElement{a, b1}}},
	}
	items <- Item{
		Bytes: []byte(`<leaf2/>`),
		Meta:  chunk.Meta{XML: &chunk.XMLMeta{MimeType: chunk.MimeXML, Parents: []chunk.StartElement{a, b2}}},
	}
	close(items)

	var out bytes.Buffer
	if err := MergeXML(context.Background(), &out, items); err != nil {
		t.Fatalf("MergeXML: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?><root><group id="1"><leaf1/></group><group id="2"><leaf2/></group></root>`
	if out.String() != want {
		t.Fatalf("merged = %q, want %q", out.String(), want)
	}
}

package splitter_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/splitter"
)

func genXML(n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><collection xmlns="urn:g">`)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<member id="%d"><name>item-%d</name><value>%d</value></member>`, i, i, i)
	}
	b.WriteString(`</collection>`)
	return b.String()
}

func genGeoJSON(n int) string {
	var b strings.Builder
	b.WriteString(`{"type":"FeatureCollection","features":[`)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `{"type":"Feature","properties":{"id":%d},"geometry":{"type":"Point","coordinates":[%d,%d]}}`, i, i, i)
	}
	b.WriteString(`]}`)
	return b.String()
}

func BenchmarkSplitXML(b *testing.B) {
	input := genXML(2000)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chunks := make(chan chunk.Chunk, 64)
		done := make(chan error, 1)
		go func() {
			done <- splitter.SplitXML(context.Background(), strings.NewReader(input), chunks)
			close(chunks)
		}()
		for range chunks {
		}
		if err := <-done; err != nil {
			b.Fatalf("SplitXML: %v", err)
		}
	}
}

func BenchmarkSplitGeoJSON(b *testing.B) {
	input := genGeoJSON(2000)
	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		chunks := make(chan chunk.Chunk, 64)
		done := make(chan error, 1)
		go func() {
			done <- splitter.SplitGeoJSON(context.Background(), strings.NewReader(input), chunks)
			close(chunks)
		}()
		for range chunks {
		}
		if err := <-done; err != nil {
			b.Fatalf("SplitGeoJSON: %v", err)
		}
	}
}

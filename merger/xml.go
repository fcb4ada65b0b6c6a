// Package merger reassembles an ordered sequence of chunk bytes and their
// metadata back into a single well-formed document. It never
// re-parses chunk bytes; it trusts the invariant the splitter established.
package merger

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
)

// Item is one chunk to be merged, in source order.
type Item struct {
	Bytes []byte
	Meta  chunk.Meta
}

type xmlFrame struct {
	se         chunk.StartElement
	declaredNS []string // prefixes this frame newly declared, to retire on close
}

// MergeXML consumes items in order and writes a single well-formed XML
// document to w. Each chunk's parent chain is diffed against
// the currently open chain: the differing suffix is closed and the new
// suffix opened, so a shared prefix of ancestors stays open across chunks.
func MergeXML(ctx context.Context, w io.Writer, items <-chan Item) error {
	bw := bufio.NewWriter(w)
	var open []xmlFrame
	inScope := map[string]string{}
	first := true

	for {
		select {
		case <-ctx.Done():
			return &errkind.Cancelled{Stage: "merge"}
		case item, ok := <-items:
			if !ok {
				closeFrames(bw, &open, inScope, 0)
				return bw.Flush()
			}
			if first {
				fmt.Fprint(bw, `<?xml version="1.0" encoding="UTF-8"?>`)
				first = false
			}
			parents := item.Meta.Parents()
			common := commonPrefixLen(open, parents)
			closeFrames(bw, &open, inScope, common)
			for _, se := range parents[common:] {
				openFrame(bw, &open, inScope, se)
			}
			bw.Write(item.Bytes)
		}
	}
}

func commonPrefixLen(open []xmlFrame, parents []chunk.StartElement) int {
	n := len(open)
	if len(parents) < n {
		n = len(parents)
	}
	i := 0
	for i < n && sameStartElement(open[i].se, parents[i]) {
		i++
	}
	return i
}

func sameStartElement(a, b chunk.StartElement) bool {
	if a.Prefix != b.Prefix || a.LocalName != b.LocalName {
		return false
	}
	if len(a.Attributes) != len(b.Attributes) {
		return false
	}
	for k, v := range a.Attributes {
		if b.Attributes[k] != v {
			return false
		}
	}
	return true
}

func closeFrames(bw *bufio.Writer, open *[]xmlFrame, inScope map[string]string, keep int) {
	for len(*open) > keep {
		top := (*open)[len(*open)-1]
		*open = (*open)[:len(*open)-1]
		writeEndTag(bw, top.se)
		for _, p := range top.declaredNS {
			delete(inScope, p)
		}
	}
}

func openFrame(bw *bufio.Writer, open *[]xmlFrame, inScope map[string]string, se chunk.StartElement) {
	var declaredHere []string
	nsDecls := make(map[string]string, len(se.NamespacePrefixes))
	for p, uri := range se.NamespacePrefixes {
		if existing, ok := inScope[p]; ok && existing == uri {
			continue
		}
		nsDecls[p] = uri
		inScope[p] = uri
		declaredHere = append(declaredHere, p)
	}

	writeStartTag(bw, se, nsDecls)
	*open = append(*open, xmlFrame{se: se, declaredNS: declaredHere})
}

func writeStartTag(bw *bufio.Writer, se chunk.StartElement, nsDecls map[string]string) {
	bw.WriteByte('<')
	writeQName(bw, se.Prefix, se.LocalName)
	for p, uri := range nsDecls {
		if p == "" {
			fmt.Fprintf(bw, ` xmlns="%s"`, uri)
			continue
		}
		fmt.Fprintf(bw, ` xmlns:%s="%s"`, p, uri)
	}
	for k, v := range se.Attributes {
		fmt.Fprintf(bw, ` %s="%s"`, k, v)
	}
	bw.WriteByte('>')
}

func writeEndTag(bw *bufio.Writer, se chunk.StartElement) {
	bw.WriteString("</")
	writeQName(bw, se.Prefix, se.LocalName)
	bw.WriteByte('>')
}

func writeQName(bw *bufio.Writer, prefix, local string) {
	if prefix != "" {
		bw.WriteString(prefix)
		bw.WriteByte(':')
	}
	bw.WriteString(local)
}

package splitter

import (
	"context"
	"fmt"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/window"
)

// SplitXML consumes r as an XML document and emits one chunk per direct
// child of the document root onto out, in source order, blocking on
// backpressure. It returns *errkind.MalformedInput on
// unbalanced tags, and nil with zero chunks emitted for empty input.
func SplitXML(ctx context.Context, r io.Reader, out chan<- chunk.Chunk) error {
	win := window.New()
	src := event.NewXMLSource(teeWindow(r, win), win)

	var ancestors []chunk.StartElement
	depth := 0
	inChunk := false
	chunkDepth := 0
	var chunkStart int64

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ev, err := src.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}

		switch ev.Kind {
		case event.StartDocument:
			continue
		case event.EndDocument:
			if depth != 0 {
				return &errkind.MalformedInput{Offset: ev.BytePos, Message: "unbalanced XML: document ended with open elements"}
			}
			goto done
		case event.StartElement:
			if !inChunk && depth == len(ancestors) {
				if depth == 0 {
					ancestors = append(ancestors, toStartElement(ev))
					depth++
					continue
				}
				inChunk = true
				chunkDepth = 1
				chunkStart = ev.BytePos
				ancestors = append(ancestors, toStartElement(ev))
				depth++
				continue
			}
			depth++
			if inChunk {
				chunkDepth++
			}
			continue
		case event.EndElement:
			if depth == 0 {
				return &errkind.MalformedInput{Offset: ev.BytePos, Message: "unbalanced XML: unmatched end element"}
			}
			depth--
			if inChunk {
				chunkDepth--
				if chunkDepth == 0 {
					chunkEnd := src.Pos()
					parents := append([]chunk.StartElement(nil), ancestors[:len(ancestors)-1]...)
					data := win.Substring(chunkStart, chunkEnd)
					c := chunk.Chunk{
						Bytes: data,
						Meta: chunk.Meta{XML: &chunk.XMLMeta{
							MimeType: chunk.MimeXML,
							Parents:  parents,
							Start:    chunkStart,
							End:      chunkEnd,
						}},
					}
					if err := Emit(ctx, out, c); err != nil {
						return err
					}
					ancestors = ancestors[:len(ancestors)-1]
					win.AdvanceTo(chunkEnd)
					inChunk = false
				}
				continue
			}
			if len(ancestors) > 0 && depth == len(ancestors)-1 {
				ancestors = ancestors[:len(ancestors)-1]
			}
			continue
		case event.Characters:
			continue
		default:
			return &errkind.MalformedInput{Offset: ev.BytePos, Message: fmt.Sprintf("unexpected event kind %d", ev.Kind)}
		}
	}
done:
	return nil
}

func toStartElement(ev event.XMLEvent) chunk.StartElement {
	se := chunk.StartElement{
		Prefix:            ev.Prefix,
		LocalName:         ev.Local,
		NamespacePrefixes: ev.Namespaces,
	}
	if len(ev.Attrs) > 0 {
		se.Attributes = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			key := a.Local
			if a.Prefix != "" {
				key = a.Prefix + ":" + a.Local
			}
			se.Attributes[key] = a.Value
		}
	}
	return se
}

package splitter

import (
	"context"
	"io"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/window"
)

type gjFrameKind int

const (
	gjObject gjFrameKind = iota
	gjArray
)

type gjFrame struct {
	kind gjFrameKind

	// array frames only
	fieldName string // the field this array/object is the value of, "" if none

	// object frames only
	isChunkCandidate       bool
	chunkStart             int64
	nextFieldName          string
	awaitingTypeValue      bool
	typeVal                string
	typeCaptured           bool
	rootHasCollectionChild bool
}

// SplitGeoJSON consumes r as a GeoJSON document and emits one chunk per
// direct child of a top-level features/geometries array, or the whole
// top-level value when it is a lone Feature/Geometry. Only the
// chunked object's own top-level "type" field is ever consulted for
// classification — a nested object's "type" field never leaks into the
// parent's classification.
func SplitGeoJSON(ctx context.Context, r io.Reader, out chan<- chunk.Chunk) error {
	win := window.New()
	src := event.NewJSONSource(teeWindow(r, win))

	var stack []gjFrame

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
		case event.StartObject:
			candidate := false
			if len(stack) == 0 {
				candidate = true
			} else {
				top := &stack[len(stack)-1]
				if len(stack) == 2 && top.kind == gjArray && (top.fieldName == "features" || top.fieldName == "geometries") {
					candidate = true
				} else if top.kind == gjObject {
					top.nextFieldName = ""
				}
			}
			stack = append(stack, gjFrame{kind: gjObject, isChunkCandidate: candidate, chunkStart: ev.BytePos})

		case event.EndObject:
			if len(stack) == 0 {
				return &errkind.MalformedInput{Offset: ev.BytePos, Message: "unbalanced JSON: unmatched '}'"}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			chunkEnd := src.Pos()

			typ := chunk.TypeUnknown
			if top.typeCaptured {
				typ = chunk.GeoJSONType(top.typeVal)
			}

			if top.isChunkCandidate {
				if len(stack) == 0 {
					if !top.rootHasCollectionChild {
						data := win.Substring(top.chunkStart, chunkEnd)
						c := chunk.Chunk{Bytes: data, Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{
							MimeType: chunk.MimeJSON,
							Type:     typ,
						}}}
						if err := Emit(ctx, out, c); err != nil {
							return err
						}
					}
					win.AdvanceTo(chunkEnd)
				} else {
					parent := stack[len(stack)-1].fieldName
					data := win.Substring(top.chunkStart, chunkEnd)
					c := chunk.Chunk{Bytes: data, Meta: chunk.Meta{GeoJSON: &chunk.GeoJSONMeta{
						MimeType:        chunk.MimeJSON,
						Type:            typ,
						ParentFieldName: &parent,
					}}}
					if err := Emit(ctx, out, c); err != nil {
						return err
					}
					win.AdvanceTo(chunkEnd)
				}
			}

		case event.StartArray:
			fieldName := ""
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == gjObject {
					fieldName = top.nextFieldName
					top.nextFieldName = ""
					if fieldName == "features" || fieldName == "geometries" {
						top.rootHasCollectionChild = true
					}
				}
			}
			stack = append(stack, gjFrame{kind: gjArray, fieldName: fieldName})

		case event.EndArray:
			if len(stack) == 0 {
				return &errkind.MalformedInput{Offset: ev.BytePos, Message: "unbalanced JSON: unmatched ']'"}
			}
			stack = stack[:len(stack)-1]

		case event.FieldName:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == gjObject {
					top.nextFieldName = ev.Text
					if !top.typeCaptured && ev.Text == "type" {
						top.awaitingTypeValue = true
					}
				}
			}

		case event.ValueString:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == gjObject {
					if top.awaitingTypeValue {
						top.typeVal = ev.Text
						top.typeCaptured = true
						top.awaitingTypeValue = false
					}
					top.nextFieldName = ""
				}
			}

		case event.ValueNumber, event.ValueBool, event.ValueNull:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == gjObject {
					top.awaitingTypeValue = false
					top.nextFieldName = ""
				}
			}
		}
	}

	if len(stack) != 0 {
		return &errkind.MalformedInput{Offset: win.Total(), Message: "unbalanced JSON: input ended with open containers"}
	}
	return nil
}

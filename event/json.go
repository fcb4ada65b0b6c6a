package event

import (
	"errors"
	"io"

	json "github.com/oarkflow/json"

	"github.com/oarkflow/georocket/errkind"
)

// JSONSource pulls JSONEvents from an io.Reader using
// github.com/oarkflow/json instead of the stdlib encoding/json package —
// it is API-compatible with encoding/json.Decoder, including the
// InputOffset() method this source depends on for byte-position tracking.
type JSONSource struct {
	dec   *json.Decoder
	stack []frame
}

type frameKind int

const (
	frameObject frameKind = iota
	frameArray
)

type frame struct {
	kind       frameKind
	expectKey  bool // frameObject only: true when the next token must be a field name
	sawElement bool // frameArray only: true once at least one element has been read (comma bookkeeping is handled by the decoder)
}

// NewJSONSource returns a source reading from r.
func NewJSONSource(r io.Reader) *JSONSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &JSONSource{dec: dec}
}

// Pos reports the decoder's current byte offset.
func (s *JSONSource) Pos() int64 {
	return s.dec.InputOffset()
}

// Next returns the next JSONEvent, or io.EOF once input is exhausted.
func (s *JSONSource) Next() (JSONEvent, error) {
	pos := s.dec.InputOffset()
	tok, err := s.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return JSONEvent{}, io.EOF
		}
		return JSONEvent{}, &errkind.MalformedInput{Offset: pos, Message: err.Error()}
	}

	// A field name is any string token read while the top frame is an
	// object expecting a key.
	if len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.kind == frameObject && top.expectKey {
			if str, ok := tok.(string); ok {
				top.expectKey = false
				return JSONEvent{Kind: FieldName, Text: str, BytePos: pos}, nil
			}
		}
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			s.stack = append(s.stack, frame{kind: frameObject, expectKey: true})
			// pos is the end of the previous token, so it can still point at a
			// separating comma or whitespace skipped while reading this one.
			// InputOffset() after Token() lands just past the single-byte '{',
			// so subtracting 1 gives its true position.
			return JSONEvent{Kind: StartObject, BytePos: s.dec.InputOffset() - 1}, nil
		case '}':
			s.popFrame()
			return JSONEvent{Kind: EndObject, BytePos: pos}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: frameArray})
			return JSONEvent{Kind: StartArray, BytePos: s.dec.InputOffset() - 1}, nil
		case ']':
			s.popFrame()
			return JSONEvent{Kind: EndArray, BytePos: pos}, nil
		}
		return JSONEvent{}, &errkind.MalformedInput{Offset: pos, Message: "unexpected delimiter"}
	case string:
		s.afterValue()
		return JSONEvent{Kind: ValueString, Text: t, BytePos: pos}, nil
	case json.Number:
		s.afterValue()
		f, ferr := t.Float64()
		if ferr != nil {
			return JSONEvent{}, &errkind.MalformedInput{Offset: pos, Message: ferr.Error()}
		}
		return JSONEvent{Kind: ValueNumber, Number: f, BytePos: pos}, nil
	case bool:
		s.afterValue()
		return JSONEvent{Kind: ValueBool, Bool: t, BytePos: pos}, nil
	case nil:
		s.afterValue()
		return JSONEvent{Kind: ValueNull, BytePos: pos}, nil
	default:
		return JSONEvent{}, &errkind.MalformedInput{Offset: pos, Message: "unrecognized token"}
	}
}

func (s *JSONSource) afterValue() {
	if len(s.stack) > 0 {
		top := &s.stack[len(s.stack)-1]
		if top.kind == frameObject {
			top.expectKey = true
		} else {
			top.sawElement = true
		}
	}
}

func (s *JSONSource) popFrame() {
	if len(s.stack) > 0 {
		s.stack = s.stack[:len(s.stack)-1]
	}
	s.afterValue()
}

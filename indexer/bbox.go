package indexer

import (
	"math"
	"strconv"
	"strings"

	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/queryast"
)

// BoundingBoxIndexerFactory produces BoundingBoxIndexer instances for both
// XML and JSON chunks.
type BoundingBoxIndexerFactory struct{}

func (BoundingBoxIndexerFactory) Name() string { return "bbox" }

func (BoundingBoxIndexerFactory) CreateXMLIndexer() XMLIndexer {
	return &boundingBoxXMLIndexer{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (BoundingBoxIndexerFactory) CreateJSONIndexer() JSONIndexer {
	return &boundingBoxJSONIndexer{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (BoundingBoxIndexerFactory) QueryPriority(term queryast.Term) queryast.Priority {
	if _, ok := term.(queryast.BboxTerm); ok {
		return queryast.PriorityOnly
	}
	return queryast.PriorityNone
}

func (BoundingBoxIndexerFactory) CompileQuery(term queryast.Term) (queryast.Node, bool) {
	bt, ok := term.(queryast.BboxTerm)
	if !ok {
		return nil, false
	}
	if bt.Mode == queryast.BboxContains {
		return queryast.ElementsContain{BBox: bt.BBox}, true
	}
	return queryast.ElementsWithin{BBox: bt.BBox}, true
}

// gmlCoordElements are the GML element local names carrying raw coordinate
// text.
var gmlCoordElements = map[string]bool{
	"pos":         true,
	"posList":     true,
	"coordinates": true,
}

type boundingBoxXMLIndexer struct {
	stack               []string
	minX, minY, maxX, maxY float64
	seen                bool
}

func (ix *boundingBoxXMLIndexer) OnXMLEvent(ev event.XMLEvent) {
	switch ev.Kind {
	case event.StartElement:
		ix.stack = append(ix.stack, ev.Local)
	case event.EndElement:
		if len(ix.stack) > 0 {
			ix.stack = ix.stack[:len(ix.stack)-1]
		}
	case event.Characters:
		if len(ix.stack) == 0 || !gmlCoordElements[ix.stack[len(ix.stack)-1]] {
			return
		}
		ix.consume(ev.Text)
	}
}

func (ix *boundingBoxXMLIndexer) consume(text string) {
	nums := parseNumbers(text)
	for i := 0; i+1 < len(nums); i += 2 {
		ix.update(nums[i], nums[i+1])
	}
}

func (ix *boundingBoxXMLIndexer) update(x, y float64) {
	ix.seen = true
	ix.minX = math.Min(ix.minX, x)
	ix.minY = math.Min(ix.minY, y)
	ix.maxX = math.Max(ix.maxX, x)
	ix.maxY = math.Max(ix.maxY, y)
}

func (ix *boundingBoxXMLIndexer) MakeResult() Doc {
	if !ix.seen {
		return Doc{}
	}
	return Doc{"bbox": []float64{ix.minX, ix.minY, ix.maxX, ix.maxY}}
}

func parseNumbers(text string) []float64 {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

type boundingBoxJSONIndexer struct {
	stack                  []jsonBBoxFrame
	pendingCoordinates     bool
	posBuf                 []float64
	minX, minY, maxX, maxY float64
	seen                   bool
}

type jsonBBoxFrame struct {
	isArray  bool
	coordCtx bool
}

func (ix *boundingBoxJSONIndexer) OnJSONEvent(ev event.JSONEvent) {
	switch ev.Kind {
	case event.StartObject:
		ix.stack = append(ix.stack, jsonBBoxFrame{isArray: false})
	case event.EndObject:
		ix.pop()
	case event.StartArray:
		coordCtx := ix.pendingCoordinates
		ix.pendingCoordinates = false
		if !coordCtx && len(ix.stack) > 0 {
			top := ix.stack[len(ix.stack)-1]
			coordCtx = top.isArray && top.coordCtx
		}
		ix.stack = append(ix.stack, jsonBBoxFrame{isArray: true, coordCtx: coordCtx})
		if coordCtx {
			ix.posBuf = ix.posBuf[:0]
		}
	case event.EndArray:
		top := ix.pop()
		if top.coordCtx {
			if len(ix.posBuf) >= 2 {
				ix.update(ix.posBuf[0], ix.posBuf[1])
			}
			ix.posBuf = ix.posBuf[:0]
		}
	case event.FieldName:
		ix.pendingCoordinates = ev.Text == "coordinates"
	case event.ValueNumber:
		if len(ix.stack) > 0 {
			top := ix.stack[len(ix.stack)-1]
			if top.isArray && top.coordCtx {
				ix.posBuf = append(ix.posBuf, ev.Number)
			}
		}
	case event.ValueString, event.ValueBool, event.ValueNull:
		ix.pendingCoordinates = false
	}
}

func (ix *boundingBoxJSONIndexer) pop() jsonBBoxFrame {
	if len(ix.stack) == 0 {
		return jsonBBoxFrame{}
	}
	top := ix.stack[len(ix.stack)-1]
	ix.stack = ix.stack[:len(ix.stack)-1]
	return top
}

func (ix *boundingBoxJSONIndexer) update(x, y float64) {
	ix.seen = true
	ix.minX = math.Min(ix.minX, x)
	ix.minY = math.Min(ix.minY, y)
	ix.maxX = math.Max(ix.maxX, x)
	ix.maxY = math.Max(ix.maxY, y)
}

func (ix *boundingBoxJSONIndexer) MakeResult() Doc {
	if !ix.seen {
		return Doc{}
	}
	return Doc{"bbox": []float64{ix.minX, ix.minY, ix.maxX, ix.maxY}}
}

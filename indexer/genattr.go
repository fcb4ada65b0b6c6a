package indexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/queryast"
)

// GenericAttributeIndexerFactory produces indexers that pull CityGML/GML
// `gen:*` generic attributes out of XML chunks, and direct scalar
// `properties.*` fields out of GeoJSON chunks.
type GenericAttributeIndexerFactory struct{}

func (GenericAttributeIndexerFactory) Name() string { return "genAttrs" }

func (GenericAttributeIndexerFactory) CreateXMLIndexer() XMLIndexer {
	return &genericAttributeXMLIndexer{}
}

func (GenericAttributeIndexerFactory) CreateJSONIndexer() JSONIndexer {
	return &genericAttributeJSONIndexer{}
}

func (GenericAttributeIndexerFactory) QueryPriority(term queryast.Term) queryast.Priority {
	if kv, ok := term.(queryast.KeyValueTerm); ok && strings.HasPrefix(kv.Key, "genAttrs.") {
		return queryast.PriorityMust
	}
	return queryast.PriorityNone
}

func (GenericAttributeIndexerFactory) CompileQuery(term queryast.Term) (queryast.Node, bool) {
	kv, ok := term.(queryast.KeyValueTerm)
	if !ok || !strings.HasPrefix(kv.Key, "genAttrs.") {
		return nil, false
	}
	return queryast.Compare{Field: kv.Key, Value: kv.Value, Op: kv.Op, Weight: 1.0}, true
}

type genAttrXMLFrame struct {
	key string
	buf strings.Builder
}

type genericAttributeXMLIndexer struct {
	stack []genAttrXMLFrame
	attrs map[string]string
}

func (ix *genericAttributeXMLIndexer) OnXMLEvent(ev event.XMLEvent) {
	switch ev.Kind {
	case event.StartElement:
		key := ""
		if ev.Prefix == "gen" {
			for _, a := range ev.Attrs {
				if a.Local == "name" {
					key = a.Value
					break
				}
			}
		}
		ix.stack = append(ix.stack, genAttrXMLFrame{key: key})
	case event.Characters:
		if len(ix.stack) > 0 {
			ix.stack[len(ix.stack)-1].buf.WriteString(ev.Text)
		}
	case event.EndElement:
		if len(ix.stack) == 0 {
			return
		}
		top := ix.stack[len(ix.stack)-1]
		ix.stack = ix.stack[:len(ix.stack)-1]
		text := strings.TrimSpace(top.buf.String())
		if top.key != "" && text != "" {
			if ix.attrs == nil {
				ix.attrs = make(map[string]string)
			}
			ix.attrs[top.key] = text
		}
		if len(ix.stack) > 0 && text != "" {
			ix.stack[len(ix.stack)-1].buf.WriteString(text)
		}
	}
}

func (ix *genericAttributeXMLIndexer) MakeResult() Doc {
	if len(ix.attrs) == 0 {
		return Doc{}
	}
	return Doc{FieldGenAttrs: ix.attrs}
}

type genAttrJSONFrame struct {
	isArray    bool
	propsCtx   bool
	pendingKey string
}

type genericAttributeJSONIndexer struct {
	stack []genAttrJSONFrame
	attrs map[string]string
}

func (ix *genericAttributeJSONIndexer) OnJSONEvent(ev event.JSONEvent) {
	switch ev.Kind {
	case event.StartObject:
		propsCtx := false
		if len(ix.stack) > 0 {
			top := ix.stack[len(ix.stack)-1]
			if !top.isArray && top.pendingKey == "properties" {
				propsCtx = true
			}
		}
		ix.stack = append(ix.stack, genAttrJSONFrame{propsCtx: propsCtx})
	case event.EndObject:
		ix.pop()
	case event.StartArray:
		ix.consumePendingKey()
		ix.stack = append(ix.stack, genAttrJSONFrame{isArray: true})
	case event.EndArray:
		ix.pop()
	case event.FieldName:
		if len(ix.stack) > 0 {
			ix.stack[len(ix.stack)-1].pendingKey = ev.Text
		}
	case event.ValueString:
		ix.captureScalar(ev.Text)
	case event.ValueNumber:
		ix.captureScalar(strconv.FormatFloat(ev.Number, 'g', -1, 64))
	case event.ValueBool:
		ix.captureScalar(fmt.Sprintf("%t", ev.Bool))
	case event.ValueNull:
		ix.consumePendingKey()
	}
}

func (ix *genericAttributeJSONIndexer) captureScalar(s string) {
	if len(ix.stack) == 0 {
		return
	}
	top := &ix.stack[len(ix.stack)-1]
	if !top.isArray && top.propsCtx && top.pendingKey != "" {
		if ix.attrs == nil {
			ix.attrs = make(map[string]string)
		}
		ix.attrs[top.pendingKey] = s
	}
	top.pendingKey = ""
}

func (ix *genericAttributeJSONIndexer) consumePendingKey() {
	if len(ix.stack) > 0 {
		ix.stack[len(ix.stack)-1].pendingKey = ""
	}
}

func (ix *genericAttributeJSONIndexer) pop() {
	if len(ix.stack) > 0 {
		ix.stack = ix.stack[:len(ix.stack)-1]
	}
	ix.consumePendingKey()
}

func (ix *genericAttributeJSONIndexer) MakeResult() Doc {
	if len(ix.attrs) == 0 {
		return Doc{}
	}
	return Doc{FieldGenAttrs: ix.attrs}
}

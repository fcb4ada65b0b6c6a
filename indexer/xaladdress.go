package indexer

import (
	"strings"

	"github.com/oarkflow/georocket/event"
	"github.com/oarkflow/georocket/queryast"
)

// XalAddressIndexerFactory produces indexers that extract a flattened
// address mapping from XAL (xAL, "eXtensible Address Language") elements
// embedded in an XML chunk.
type XalAddressIndexerFactory struct{}

func (XalAddressIndexerFactory) Name() string { return "address" }

func (XalAddressIndexerFactory) CreateXMLIndexer() XMLIndexer {
	return &xalAddressIndexer{}
}

func (XalAddressIndexerFactory) CreateJSONIndexer() JSONIndexer { return nil }

// QueryPriority answers SHOULD for bareword terms (address text search
// across the addressKeys fields) and MUST for `address.<Key>:value` terms.
func (XalAddressIndexerFactory) QueryPriority(term queryast.Term) queryast.Priority {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if strings.HasPrefix(t.Key, "address.") {
			return queryast.PriorityMust
		}
	case queryast.StringTerm:
		return queryast.PriorityShould
	}
	return queryast.PriorityNone
}

// addressKeys enumerates the XAL fields compiled for bareword terms. The
// indexer captures every xal:*Name element; bareword terms search only
// these keys.
var addressKeys = []string{"Country", "Locality", "Thoroughfare"}

func (XalAddressIndexerFactory) CompileQuery(term queryast.Term) (queryast.Node, bool) {
	switch t := term.(type) {
	case queryast.KeyValueTerm:
		if !strings.HasPrefix(t.Key, "address.") {
			return nil, false
		}
		return queryast.Compare{Field: t.Key, Value: t.Value, Op: t.Op, Weight: 1.0}, true
	case queryast.StringTerm:
		var children []queryast.Node
		for _, key := range addressKeys {
			children = append(children, queryast.Compare{
				Field: "address." + key, Value: t.Value, Op: queryast.EQ, Weight: 0.5,
			})
		}
		return queryast.Or{Children: children}, true
	}
	return nil, false
}

type xalFrame struct {
	local string
	buf   strings.Builder
}

type xalAddressIndexer struct {
	stack   []xalFrame
	address map[string]string
}

func (ix *xalAddressIndexer) OnXMLEvent(ev event.XMLEvent) {
	switch ev.Kind {
	case event.StartElement:
		ix.stack = append(ix.stack, xalFrame{local: ev.Local})
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
		if ev.Prefix == "xal" && strings.HasSuffix(top.local, "Name") {
			key := strings.TrimSuffix(top.local, "Name")
			text := strings.TrimSpace(top.buf.String())
			if text != "" {
				if ix.address == nil {
					ix.address = make(map[string]string)
				}
				ix.address[key] = text
			}
		}
	}
}

func (ix *xalAddressIndexer) MakeResult() Doc {
	if len(ix.address) == 0 {
		return Doc{}
	}
	return Doc{"address": ix.address}
}

package memindex

import (
	"strconv"
	"strings"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

// evaluate is the ground truth for whether entry.doc matches node; the
// trie-backed candidate() path is purely an optimization checked against
// this same function before a result is ever returned.
func evaluate(node queryast.Node, doc indexer.Doc, meta chunk.Meta) bool {
	switch n := node.(type) {
	case queryast.All:
		return true
	case queryast.ElementsWithin:
		return bboxIntersects(doc, n.BBox)
	case queryast.ElementsContain:
		return bboxContains(doc, n.BBox)
	case queryast.Compare:
		for _, v := range fieldValues(doc, n.Field) {
			if compareOp(v, n.Value, n.Op) {
				return true
			}
		}
		return false
	case queryast.Contains:
		for _, v := range fieldValues(doc, n.Field) {
			if v == n.Value {
				return true
			}
		}
		return false
	case queryast.And:
		for _, c := range n.Children {
			if !evaluate(c, doc, meta) {
				return false
			}
		}
		return true
	case queryast.Or:
		for _, c := range n.Children {
			if evaluate(c, doc, meta) {
				return true
			}
		}
		return false
	case queryast.Not:
		return !evaluate(n.Child, doc, meta)
	default:
		return false
	}
}

// fieldValues resolves a dotted field reference ("props.city") or a plain
// one ("gmlIds", "tags") against a Doc's known shapes: string, []string,
// map[string]string and map[string]struct{} (tag sets).
func fieldValues(doc indexer.Doc, field string) []string {
	if i := strings.IndexByte(field, '.'); i > 0 {
		top, sub := field[:i], field[i+1:]
		m, ok := doc[top].(map[string]string)
		if !ok {
			return nil
		}
		if v, ok := m[sub]; ok {
			return []string{v}
		}
		return nil
	}
	switch v := doc[field].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case map[string]struct{}:
		out := make([]string, 0, len(v))
		for k := range v {
			out = append(out, k)
		}
		return out
	default:
		return nil
	}
}

// flattenDoc lists every (field, value) pair worth posting into a trie:
// the same shapes fieldValues understands, expanded to dotted field names
// for nested string maps.
func flattenDoc(doc indexer.Doc) map[string][]string {
	out := map[string][]string{}
	for key, val := range doc {
		switch v := val.(type) {
		case string:
			out[key] = append(out[key], v)
		case []string:
			out[key] = append(out[key], v...)
		case map[string]struct{}:
			for k := range v {
				out[key] = append(out[key], k)
			}
		case map[string]string:
			for k, s := range v {
				field := key + "." + k
				out[field] = append(out[field], s)
			}
		}
	}
	return out
}

func compareOp(a, b string, op queryast.Op) bool {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch op {
		case queryast.EQ:
			return af == bf
		case queryast.GT:
			return af > bf
		case queryast.GTE:
			return af >= bf
		case queryast.LT:
			return af < bf
		case queryast.LTE:
			return af <= bf
		}
		return false
	}
	switch op {
	case queryast.EQ:
		return a == b
	case queryast.GT:
		return a > b
	case queryast.GTE:
		return a >= b
	case queryast.LT:
		return a < b
	case queryast.LTE:
		return a <= b
	default:
		return false
	}
}

func bboxIntersects(doc indexer.Doc, q queryast.BBox) bool {
	box, ok := docBBox(doc)
	if !ok {
		return false
	}
	return !(box[2] < q.MinX || box[0] > q.MaxX || box[3] < q.MinY || box[1] > q.MaxY)
}

func bboxContains(doc indexer.Doc, q queryast.BBox) bool {
	box, ok := docBBox(doc)
	if !ok {
		return false
	}
	return box[0] <= q.MinX && box[1] <= q.MinY && box[2] >= q.MaxX && box[3] >= q.MaxY
}

func docBBox(doc indexer.Doc) ([4]float64, bool) {
	v, ok := doc["bbox"].([]float64)
	if !ok || len(v) != 4 {
		return [4]float64{}, false
	}
	return [4]float64{v[0], v[1], v[2], v[3]}, true
}

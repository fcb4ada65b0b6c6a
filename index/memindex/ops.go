package memindex

import (
	"context"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

func (idx *Index) GetMeta(_ context.Context, q queryast.Node) (<-chan index.MetaResult, error) {
	matches := idx.query(q)
	out := make(chan index.MetaResult, len(matches))
	for _, e := range matches {
		out <- index.MetaResult{Path: e.path, Meta: e.meta}
	}
	close(out)
	return out, nil
}

func (idx *Index) GetDistinctMeta(_ context.Context, q queryast.Node) (<-chan chunk.Meta, error) {
	matches := idx.query(q)
	out := make(chan chunk.Meta, len(matches))
	seen := map[string]bool{}
	for _, e := range matches {
		key := metaKey(e.meta)
		if seen[key] {
			continue
		}
		seen[key] = true
		out <- e.meta
	}
	close(out)
	return out, nil
}

func (idx *Index) GetPaths(_ context.Context, q queryast.Node) (<-chan string, error) {
	matches := idx.query(q)
	out := make(chan string, len(matches))
	for _, e := range matches {
		out <- e.path
	}
	close(out)
	return out, nil
}

func (idx *Index) DeleteByQuery(_ context.Context, q queryast.Node) error {
	for _, e := range idx.query(q) {
		idx.remove(e)
	}
	return nil
}

func (idx *Index) DeleteByPaths(_ context.Context, paths []string) error {
	for _, p := range paths {
		if e, ok := idx.docs.Get(p); ok {
			idx.remove(e)
		}
	}
	return nil
}

func (idx *Index) remove(e *docEntry) {
	idx.unpost(e)
	idx.docs.Del(e.path)
	idx.byID.Del(e.id)
}

func (idx *Index) AddTags(_ context.Context, q queryast.Node, tags []string) error {
	for _, e := range idx.query(q) {
		idx.unpost(e)
		set, _ := e.doc[indexer.FieldTags].(map[string]struct{})
		if set == nil {
			set = map[string]struct{}{}
		}
		for _, t := range tags {
			set[t] = struct{}{}
		}
		e.doc[indexer.FieldTags] = set
		idx.post(e)
	}
	return nil
}

func (idx *Index) RemoveTags(_ context.Context, q queryast.Node, tags []string) error {
	for _, e := range idx.query(q) {
		set, ok := e.doc[indexer.FieldTags].(map[string]struct{})
		if !ok {
			continue
		}
		idx.unpost(e)
		for _, t := range tags {
			delete(set, t)
		}
		e.doc[indexer.FieldTags] = set
		idx.post(e)
	}
	return nil
}

func (idx *Index) SetProperties(_ context.Context, q queryast.Node, props map[string]string) error {
	for _, e := range idx.query(q) {
		idx.unpost(e)
		m, _ := e.doc[indexer.FieldProps].(map[string]string)
		if m == nil {
			m = map[string]string{}
		}
		for k, v := range props {
			m[k] = v
		}
		e.doc[indexer.FieldProps] = m
		idx.post(e)
	}
	return nil
}

func (idx *Index) RemoveProperties(_ context.Context, q queryast.Node, keys []string) error {
	for _, e := range idx.query(q) {
		m, ok := e.doc[indexer.FieldProps].(map[string]string)
		if !ok {
			continue
		}
		idx.unpost(e)
		for _, k := range keys {
			delete(m, k)
		}
		e.doc[indexer.FieldProps] = m
		idx.post(e)
	}
	return nil
}

func (idx *Index) GetPropertyValues(_ context.Context, q queryast.Node, key string) (<-chan string, error) {
	return idx.distinctSubfieldValues(q, indexer.FieldProps, key), nil
}

func (idx *Index) GetAttributeValues(_ context.Context, q queryast.Node, key string) (<-chan string, error) {
	return idx.distinctSubfieldValues(q, indexer.FieldGenAttrs, key), nil
}

func (idx *Index) distinctSubfieldValues(q queryast.Node, topField, key string) <-chan string {
	matches := idx.query(q)
	out := make(chan string, len(matches))
	seen := map[string]bool{}
	for _, e := range matches {
		m, ok := e.doc[topField].(map[string]string)
		if !ok {
			continue
		}
		v, ok := m[key]
		if !ok || seen[v] {
			continue
		}
		seen[v] = true
		out <- v
	}
	close(out)
	return out
}

func (idx *Index) GetCollections(_ context.Context) (<-chan string, error) {
	idx.collMu.RLock()
	defer idx.collMu.RUnlock()
	out := make(chan string, len(idx.collections))
	for name := range idx.collections {
		out <- name
	}
	close(out)
	return out, nil
}

func (idx *Index) AddCollection(_ context.Context, name string) error {
	idx.collMu.Lock()
	defer idx.collMu.Unlock()
	idx.collections[name] = struct{}{}
	return nil
}

func (idx *Index) ExistsCollection(_ context.Context, name string) (bool, error) {
	idx.collMu.RLock()
	defer idx.collMu.RUnlock()
	_, ok := idx.collections[name]
	return ok, nil
}

func (idx *Index) DeleteCollection(_ context.Context, name string) error {
	idx.collMu.Lock()
	defer idx.collMu.Unlock()
	delete(idx.collections, name)
	return nil
}

// metaKey gives chunk.Meta a stable identity for GetDistinctMeta's dedup,
// good enough for the reference backend without round-tripping through
// JSON on every call.
func metaKey(m chunk.Meta) string {
	if m.XML != nil {
		key := m.XML.MimeType
		for _, p := range m.XML.Parents {
			key += "/" + p.Prefix + ":" + p.LocalName
		}
		return key
	}
	if m.GeoJSON != nil {
		key := string(m.GeoJSON.Type)
		if m.GeoJSON.ParentFieldName != nil {
			key += "/" + *m.GeoJSON.ParentFieldName
		}
		return key
	}
	return ""
}

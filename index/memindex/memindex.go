// Package memindex is an in-memory reference Index implementation.
// Doc field values are additionally posted into a radix.Trie per
// field (the original full-text structure, repurposed here for exact
// tag/property/attribute lookups instead of tokenized free text) so that
// Compare(EQ) and Contains terms narrow the scan to a candidate set before
// the real evaluator double-checks each candidate — the trie is a
// performance hint, never the source of truth (see DESIGN.md).
package memindex

import (
	"context"
	"sync"
	"sync/atomic"

	maps "github.com/oarkflow/xsync"

	"github.com/oarkflow/georocket/chunk"
	"github.com/oarkflow/georocket/index"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
	"github.com/oarkflow/georocket/radix"
)

type docEntry struct {
	id   int64
	path string
	doc  indexer.Doc
	meta chunk.Meta
}

type Index struct {
	docs   maps.IMap[string, *docEntry]
	byID   maps.IMap[int64, string]
	nextID atomic.Int64

	triesMu sync.Mutex
	tries   map[string]*radix.Trie

	collMu      sync.RWMutex
	collections map[string]struct{}
}

// New returns an empty in-memory Index.
func New() *Index {
	return &Index{
		docs:        maps.NewMap[string, *docEntry](),
		byID:        maps.NewMap[int64, string](),
		tries:       make(map[string]*radix.Trie),
		collections: make(map[string]struct{}),
	}
}

func (idx *Index) AddMany(_ context.Context, entries []index.Entry) error {
	for _, e := range entries {
		idx.upsert(e.Path, e.Doc, e.Meta)
	}
	return nil
}

func (idx *Index) upsert(path string, doc indexer.Doc, meta chunk.Meta) *docEntry {
	if old, ok := idx.docs.Get(path); ok {
		idx.unpost(old)
		old.doc, old.meta = doc, meta
		idx.post(old)
		return old
	}
	id := idx.nextID.Add(1)
	entry := &docEntry{id: id, path: path, doc: doc, meta: meta}
	idx.docs.Set(path, entry)
	idx.byID.Set(id, path)
	idx.post(entry)
	return entry
}

// post/unpost maintain each field's radix.Trie postings for entry.doc's
// current field values.
func (idx *Index) post(entry *docEntry) {
	idx.triesMu.Lock()
	defer idx.triesMu.Unlock()
	for field, values := range flattenDoc(entry.doc) {
		trie := idx.tries[field]
		if trie == nil {
			trie = radix.New()
			idx.tries[field] = trie
		}
		for _, v := range values {
			trie.Insert(&radix.InsertParams{Id: entry.id, Word: v, TermFrequency: 1})
		}
	}
}

func (idx *Index) unpost(entry *docEntry) {
	idx.triesMu.Lock()
	defer idx.triesMu.Unlock()
	for field, values := range flattenDoc(entry.doc) {
		trie := idx.tries[field]
		if trie == nil {
			continue
		}
		for _, v := range values {
			trie.Delete(&radix.DeleteParams{Id: entry.id, Word: v})
		}
	}
}

func (idx *Index) candidates(node queryast.Node) (map[int64]bool, bool) {
	switch n := node.(type) {
	case queryast.Compare:
		if n.Op != queryast.EQ {
			return nil, false
		}
		return idx.lookup(n.Field, n.Value), true
	case queryast.Contains:
		return idx.lookup(n.Field, n.Value), true
	case queryast.And:
		var out map[int64]bool
		for _, c := range n.Children {
			ids, ok := idx.candidates(c)
			if !ok {
				continue
			}
			if out == nil {
				out = ids
				continue
			}
			out = intersect(out, ids)
		}
		return out, out != nil
	case queryast.Or:
		var out map[int64]bool
		for _, c := range n.Children {
			ids, ok := idx.candidates(c)
			if !ok {
				return nil, false
			}
			if out == nil {
				out = map[int64]bool{}
			}
			for id := range ids {
				out[id] = true
			}
		}
		return out, out != nil
	default:
		return nil, false
	}
}

func (idx *Index) lookup(field, value string) map[int64]bool {
	idx.triesMu.Lock()
	trie := idx.tries[field]
	idx.triesMu.Unlock()
	if trie == nil {
		return map[int64]bool{}
	}
	out := map[int64]bool{}
	for _, rec := range trie.Find(&radix.FindParams{Term: value, Exact: true}) {
		out[rec.Id] = true
	}
	return out
}

func intersect(a, b map[int64]bool) map[int64]bool {
	out := map[int64]bool{}
	small, big := a, b
	if len(b) < len(a) {
		small, big = b, a
	}
	for id := range small {
		if big[id] {
			out[id] = true
		}
	}
	return out
}

// query returns every entry evaluate(node, ...) accepts, using the trie
// candidate set to narrow the scan when possible.
func (idx *Index) query(node queryast.Node) []*docEntry {
	var out []*docEntry
	if ids, ok := idx.candidates(node); ok {
		for id := range ids {
			path, exists := idx.byID.Get(id)
			if !exists {
				continue
			}
			entry, exists := idx.docs.Get(path)
			if !exists {
				continue
			}
			if evaluate(node, entry.doc, entry.meta) {
				out = append(out, entry)
			}
		}
		return out
	}
	idx.docs.ForEach(func(_ string, entry *docEntry) bool {
		if evaluate(node, entry.doc, entry.meta) {
			out = append(out, entry)
		}
		return true
	})
	return out
}

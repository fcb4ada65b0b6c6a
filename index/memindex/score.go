package memindex

import (
	"github.com/oarkflow/georocket/lib"
	"github.com/oarkflow/georocket/queryast"
)

// bm25Params mirrors the original defaults (k1=1.2, b=0.75), the usual
// starting point for BM25 tuning.
var bm25Params = lib.BM25Params{K: 1.2, B: 0.75}

// Score computes a reference relevance score for path against node,
// folding each matched leaf's Weight into a BM25V2 combination via
// lib.BM25V2. The merger never consults this: retrieval output stays in
// source order regardless of score. Score exists only for a caller that
// wants a reference ranking signal alongside a result set.
func (idx *Index) Score(node queryast.Node, path string) float64 {
	e, ok := idx.docs.Get(path)
	if !ok {
		return 0
	}
	total := int(idx.docs.Size())
	var sum float64
	idx.scoreNode(node, e, total, &sum)
	return sum
}

func (idx *Index) scoreNode(node queryast.Node, e *docEntry, total int, sum *float64) {
	switch n := node.(type) {
	case queryast.Compare:
		if !evaluate(n, e.doc, e.meta) {
			return
		}
		weight := n.Weight
		if weight == 0 {
			weight = 1
		}
		df := len(idx.lookup(n.Field, n.Value))
		if df == 0 {
			df = 1
		}
		*sum += weight * lib.BM25V2(1, 1, 1, total, df, bm25Params)
	case queryast.Contains:
		if !evaluate(n, e.doc, e.meta) {
			return
		}
		weight := n.Weight
		if weight == 0 {
			weight = 1
		}
		df := len(idx.lookup(n.Field, n.Value))
		if df == 0 {
			df = 1
		}
		*sum += weight * lib.BM25V2(1, 1, 1, total, df, bm25Params)
	case queryast.And:
		for _, c := range n.Children {
			idx.scoreNode(c, e, total, sum)
		}
	case queryast.Or:
		for _, c := range n.Children {
			idx.scoreNode(c, e, total, sum)
		}
	case queryast.Not:
		// A negated leaf contributes no positive relevance signal.
	}
}

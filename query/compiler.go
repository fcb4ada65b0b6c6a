package query

import (
	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

// Compile parses q and compiles it against the given registry's factories
// into an opaque queryast.Node. A term no factory claims
// surfaces as *errkind.UnmatchableTerm; a malformed query string surfaces
// as *errkind.MalformedQuery.
func Compile(q string, reg *indexer.Registry) (queryast.Node, error) {
	tree, err := Parse(q)
	if err != nil {
		return nil, &errkind.MalformedQuery{Query: q, Message: err.Error()}
	}
	return compileLogical(tree, reg)
}

func compileLogical(lq queryast.LogicalQuery, reg *indexer.Registry) (queryast.Node, error) {
	switch n := lq.(type) {
	case queryast.TermNode:
		return compileTerm(n.Term, reg)
	case queryast.AndNode:
		children, err := compileChildren(n.Children, reg)
		if err != nil {
			return nil, err
		}
		return queryast.And{Children: children}, nil
	case queryast.OrNode:
		children, err := compileChildren(n.Children, reg)
		if err != nil {
			return nil, err
		}
		return queryast.Or{Children: children}, nil
	case queryast.NotNode:
		child, err := compileLogical(n.Child, reg)
		if err != nil {
			return nil, err
		}
		return queryast.Not{Child: child}, nil
	default:
		return nil, &errkind.MalformedQuery{Message: "unrecognized query node"}
	}
}

func compileChildren(nodes []queryast.LogicalQuery, reg *indexer.Registry) ([]queryast.Node, error) {
	out := make([]queryast.Node, 0, len(nodes))
	for _, n := range nodes {
		c, err := compileLogical(n, reg)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// compileTerm implements priority-based term compilation. Priorities are
// polled from every factory in a first pass before any CompileQuery is
// called, so a factory that responds ONLY makes it the sole producer
// regardless of registration order: MUST/SHOULD factories registered
// earlier never get a chance to compile once an ONLY is found. Otherwise
// every MUST and SHOULD producer contributes: MUST results are ANDed
// together, SHOULD results ORed together, and the two groups ANDed when
// both are present.
func compileTerm(term queryast.Term, reg *indexer.Registry) (queryast.Node, error) {
	if s, ok := term.(queryast.StringTerm); ok && s.Value == "" {
		return queryast.All{}, nil
	}

	factories := reg.Factories()
	var only indexer.Factory
	var musts, shoulds []indexer.Factory

	for _, f := range factories {
		switch f.QueryPriority(term) {
		case queryast.PriorityOnly:
			only = f
		case queryast.PriorityMust:
			musts = append(musts, f)
		case queryast.PriorityShould:
			shoulds = append(shoulds, f)
		}
	}

	if only != nil {
		node, ok := only.CompileQuery(term)
		if !ok {
			return nil, &errkind.UnmatchableTerm{Term: describeTerm(term)}
		}
		return node, nil
	}

	var mustNodes, shouldNodes []queryast.Node
	for _, f := range musts {
		if node, ok := f.CompileQuery(term); ok {
			mustNodes = append(mustNodes, node)
		}
	}
	for _, f := range shoulds {
		if node, ok := f.CompileQuery(term); ok {
			shouldNodes = append(shouldNodes, node)
		}
	}

	var parts []queryast.Node
	if len(mustNodes) == 1 {
		parts = append(parts, mustNodes[0])
	} else if len(mustNodes) > 1 {
		parts = append(parts, queryast.And{Children: mustNodes})
	}
	if len(shouldNodes) == 1 {
		parts = append(parts, shouldNodes[0])
	} else if len(shouldNodes) > 1 {
		parts = append(parts, queryast.Or{Children: shouldNodes})
	}

	switch len(parts) {
	case 0:
		return nil, &errkind.UnmatchableTerm{Term: describeTerm(term)}
	case 1:
		return parts[0], nil
	default:
		return queryast.And{Children: parts}, nil
	}
}

func describeTerm(term queryast.Term) string {
	switch t := term.(type) {
	case queryast.StringTerm:
		return t.Value
	case queryast.KeyValueTerm:
		return t.Key + ":" + t.Value
	case queryast.BboxTerm:
		return "[bbox]"
	default:
		return "?"
	}
}

package query

import (
	"testing"

	"github.com/oarkflow/georocket/errkind"
	"github.com/oarkflow/georocket/indexer"
	"github.com/oarkflow/georocket/queryast"
)

// stubFactory is a minimal indexer.Factory for compiler tests, independent
// of any real built-in indexer.
type stubFactory struct {
	name     string
	priority queryast.Priority
	compile  func(queryast.Term) (queryast.Node, bool)
}

func (f stubFactory) Name() string                                { return f.name }
func (f stubFactory) CreateXMLIndexer() indexer.XMLIndexer         { return nil }
func (f stubFactory) CreateJSONIndexer() indexer.JSONIndexer       { return nil }
func (f stubFactory) QueryPriority(t queryast.Term) queryast.Priority { return f.priority }
func (f stubFactory) CompileQuery(t queryast.Term) (queryast.Node, bool) {
	if f.compile == nil {
		return nil, false
	}
	return f.compile(t)
}

func TestCompileUnmatchableTerm(t *testing.T) {
	reg := indexer.NewRegistry()
	_, err := Compile("nothingClaimsThis", reg)
	if err == nil {
		t.Fatal("expected UnmatchableTerm error")
	}
	if _, ok := err.(*errkind.UnmatchableTerm); !ok {
		t.Fatalf("expected *errkind.UnmatchableTerm, got %T (%v)", err, err)
	}
}

func TestCompileOnlyDominates(t *testing.T) {
	reg := indexer.NewRegistry()
	reg.Register(stubFactory{
		name:     "only",
		priority: queryast.PriorityOnly,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			return queryast.All{}, true
		},
	})
	reg.Register(stubFactory{
		name:     "should",
		priority: queryast.PriorityShould,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			return queryast.Contains{Field: "x", Value: "y"}, true
		},
	})
	got, err := Compile("anything", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, ok := got.(queryast.All); !ok {
		t.Fatalf("expected ONLY factory's node to win, got %#v", got)
	}
}

// TestCompileOnlyDominatesRegistrationOrder registers the MUST/SHOULD
// factory before the ONLY factory: ONLY dominance must not depend on
// registration order, and the earlier factory's CompileQuery must never
// be invoked once an ONLY response is seen.
func TestCompileOnlyDominatesRegistrationOrder(t *testing.T) {
	reg := indexer.NewRegistry()
	reg.Register(stubFactory{
		name:     "must",
		priority: queryast.PriorityMust,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			t.Fatal("MUST factory's CompileQuery must not be called when an ONLY factory claims the term")
			return nil, false
		},
	})
	reg.Register(stubFactory{
		name:     "only",
		priority: queryast.PriorityOnly,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			return queryast.All{}, true
		},
	})
	got, err := Compile("anything", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if _, ok := got.(queryast.All); !ok {
		t.Fatalf("expected ONLY factory's node to win, got %#v", got)
	}
}

// TestCompileBarewordShouldUnion mirrors the S4 scenario: a bareword term
// with two SHOULD producers compiles to an Or of their nodes.
func TestCompileBarewordShouldUnion(t *testing.T) {
	reg := indexer.NewRegistry()
	reg.Register(stubFactory{
		name:     "geoJsonFeatureIds",
		priority: queryast.PriorityShould,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			st := term.(queryast.StringTerm)
			return queryast.Contains{Field: "geoJsonFeatureIds", Value: st.Value, Weight: 0.5}, true
		},
	})
	reg.Register(stubFactory{
		name:     "address",
		priority: queryast.PriorityShould,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			st := term.(queryast.StringTerm)
			return queryast.Compare{Field: "address.Country", Value: st.Value, Op: queryast.EQ, Weight: 0.5}, true
		},
	})
	got, err := Compile("Berlin", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	or, ok := got.(queryast.Or)
	if !ok || len(or.Children) != 2 {
		t.Fatalf("expected Or with 2 children, got %#v", got)
	}
}

func TestCompileMustAndShouldCombine(t *testing.T) {
	reg := indexer.NewRegistry()
	reg.Register(stubFactory{
		name:     "must",
		priority: queryast.PriorityMust,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			return queryast.Compare{Field: "genAttrs.k", Value: "v", Op: queryast.EQ}, true
		},
	})
	reg.Register(stubFactory{
		name:     "should",
		priority: queryast.PriorityShould,
		compile: func(term queryast.Term) (queryast.Node, bool) {
			return queryast.Contains{Field: "gmlIds", Value: "v"}, true
		},
	})
	got, err := Compile("v", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	and, ok := got.(queryast.And)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("expected And of MUST and SHOULD, got %#v", got)
	}
}

// TestCompileBboxScenario mirrors S5: "[1,2,3,4]" compiles to
// ElementsWithin(bbox=[1,2,3,4]).
func TestCompileBboxScenario(t *testing.T) {
	reg := indexer.NewRegistry()
	reg.Register(indexer.BoundingBoxIndexerFactory{})
	got, err := Compile("[1,2,3,4]", reg)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	ew, ok := got.(queryast.ElementsWithin)
	if !ok {
		t.Fatalf("expected ElementsWithin, got %#v", got)
	}
	want := queryast.BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	if ew.BBox != want {
		t.Fatalf("bbox = %+v, want %+v", ew.BBox, want)
	}
}

package query

import (
	"testing"

	"github.com/oarkflow/georocket/queryast"
)

func TestParseBareword(t *testing.T) {
	got, err := Parse("Berlin")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tn, ok := got.(queryast.TermNode)
	if !ok {
		t.Fatalf("expected TermNode, got %T", got)
	}
	st, ok := tn.Term.(queryast.StringTerm)
	if !ok || st.Value != "Berlin" {
		t.Fatalf("expected StringTerm(Berlin), got %#v", tn.Term)
	}
}

func TestParseKeyValue(t *testing.T) {
	cases := []struct {
		q   string
		op  queryast.Op
		key string
		val string
	}{
		{"gmlIds:x1", queryast.EQ, "gmlIds", "x1"},
		{"age>18", queryast.GT, "age", "18"},
		{"age<18", queryast.LT, "age", "18"},
		{"age>=18", queryast.GTE, "age", "18"},
		{"age<=18", queryast.LTE, "age", "18"},
	}
	for _, c := range cases {
		got, err := Parse(c.q)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.q, err)
		}
		tn := got.(queryast.TermNode)
		kv, ok := tn.Term.(queryast.KeyValueTerm)
		if !ok {
			t.Fatalf("Parse(%q): expected KeyValueTerm, got %#v", c.q, tn.Term)
		}
		if kv.Key != c.key || kv.Value != c.val || kv.Op != c.op {
			t.Fatalf("Parse(%q) = %#v, want key=%s val=%s op=%s", c.q, kv, c.key, c.val, c.op)
		}
	}
}

func TestParseBbox(t *testing.T) {
	got, err := Parse("[1,2,3,4]")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tn := got.(queryast.TermNode)
	bt, ok := tn.Term.(queryast.BboxTerm)
	if !ok {
		t.Fatalf("expected BboxTerm, got %#v", tn.Term)
	}
	want := queryast.BBox{MinX: 1, MinY: 2, MaxX: 3, MaxY: 4}
	if bt.BBox != want {
		t.Fatalf("bbox = %+v, want %+v", bt.BBox, want)
	}
	if bt.Mode != queryast.BboxWithin {
		t.Fatalf("mode = %v, want BboxWithin", bt.Mode)
	}
}

func TestParseInvertedBboxRejected(t *testing.T) {
	if _, err := Parse("[3,4,1,2]"); err == nil {
		t.Fatal("expected error for inverted bbox")
	}
}

func TestParseLogical(t *testing.T) {
	got, err := Parse("Berlin AND NOT gmlIds:x1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := got.(queryast.AndNode)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("expected AndNode with 2 children, got %#v", got)
	}
	if _, ok := and.Children[1].(queryast.NotNode); !ok {
		t.Fatalf("expected second child to be NotNode, got %#v", and.Children[1])
	}
}

func TestParseParentheses(t *testing.T) {
	got, err := Parse("(Berlin OR Munich) AND gmlIds:x1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := got.(queryast.AndNode)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("expected AndNode with 2 children, got %#v", got)
	}
	if _, ok := and.Children[0].(queryast.OrNode); !ok {
		t.Fatalf("expected first child to be OrNode, got %#v", and.Children[0])
	}
}

func TestParseUnbalancedParenErrors(t *testing.T) {
	if _, err := Parse("(Berlin AND gmlIds:x1"); err == nil {
		t.Fatal("expected error for unbalanced parentheses")
	}
}

func TestParseImplicitAnd(t *testing.T) {
	got, err := Parse("Berlin Munich")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	and, ok := got.(queryast.AndNode)
	if !ok || len(and.Children) != 2 {
		t.Fatalf("expected implicit AndNode with 2 children, got %#v", got)
	}
}

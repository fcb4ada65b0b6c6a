// Package query implements the query string parser and compiler: turning a query string into a queryast.LogicalQuery tree, then
// polling the registered indexer factories to compile it into an opaque
// queryast.Node the index backend interprets.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oarkflow/georocket/queryast"
)

type tokenKind int

const (
	tokAnd tokenKind = iota
	tokOr
	tokNot
	tokLParen
	tokRParen
	tokTerm
)

type token struct {
	kind tokenKind
	text string // raw term text for tokTerm
}

// Parse lexes and parses a query string into a LogicalQuery tree.
// Malformed input (unbalanced parentheses, dangling operators, unterminated
// quotes, an inverted bbox) surfaces as *errkind.MalformedQuery from the
// caller; Parse itself returns a plain error the caller wraps, matching how
// the rest of the pipeline attaches offsets/messages at the boundary.
func Parse(q string) (queryast.LogicalQuery, error) {
	toks, err := lex(q)
	if err != nil {
		return nil, err
	}
	if len(toks) == 0 {
		return queryast.TermNode{Term: queryast.StringTerm{Value: ""}}, nil
	}
	p := &parser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("unexpected token %q", p.toks[p.pos].text)
	}
	return node, nil
}

func lex(q string) ([]token, error) {
	var toks []token
	i, n := 0, len(q)
	for i < n {
		c := q[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			toks = append(toks, token{kind: tokLParen})
			i++
		case c == ')':
			toks = append(toks, token{kind: tokRParen})
			i++
		case c == '"':
			j := i + 1
			for j < n && q[j] != '"' {
				j++
			}
			if j >= n {
				return nil, fmt.Errorf("unterminated quoted string starting at %d", i)
			}
			toks = append(toks, token{kind: tokTerm, text: q[i : j+1]})
			i = j + 1
		case c == '[':
			j := strings.IndexByte(q[i:], ']')
			if j < 0 {
				return nil, fmt.Errorf("unterminated bbox literal starting at %d", i)
			}
			toks = append(toks, token{kind: tokTerm, text: q[i : i+j+1]})
			i += j + 1
		default:
			j := i
			for j < n && !isBoundary(q[j]) {
				j++
			}
			word := q[i:j]
			switch strings.ToUpper(word) {
			case "AND":
				toks = append(toks, token{kind: tokAnd})
			case "OR":
				toks = append(toks, token{kind: tokOr})
			case "NOT":
				toks = append(toks, token{kind: tokNot})
			default:
				// A bareword may run right up against a following "(" (e.g.
				// NOT(x)); isBoundary already stops before whitespace/parens
				// so word is never empty here.
				toks = append(toks, token{kind: tokTerm, text: word})
			}
			i = j
		}
	}
	return toks, nil
}

func isBoundary(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')'
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) parseOr() (queryast.LogicalQuery, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []queryast.LogicalQuery{left}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokOr {
			break
		}
		p.pos++
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return queryast.OrNode{Children: children}, nil
}

func (p *parser) parseAnd() (queryast.LogicalQuery, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []queryast.LogicalQuery{left}
	for {
		t, ok := p.peek()
		if !ok {
			break
		}
		if t.kind == tokAnd {
			p.pos++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			children = append(children, right)
			continue
		}
		// Implicit AND: two adjacent terms/groups with no operator between
		// them.
		if t.kind == tokTerm || t.kind == tokLParen || t.kind == tokNot {
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			children = append(children, right)
			continue
		}
		break
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return queryast.AndNode{Children: children}, nil
}

func (p *parser) parseUnary() (queryast.LogicalQuery, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("unexpected end of query")
	}
	if t.kind == tokNot {
		p.pos++
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return queryast.NotNode{Child: child}, nil
	}
	if t.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		close, ok := p.peek()
		if !ok || close.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	}
	if t.kind != tokTerm {
		return nil, fmt.Errorf("unexpected token in query")
	}
	p.pos++
	term, err := parseTerm(t.text)
	if err != nil {
		return nil, err
	}
	return queryast.TermNode{Term: term}, nil
}

// parseTerm classifies a single lexeme into a StringTerm, KeyValueTerm or
// BboxTerm.
func parseTerm(raw string) (queryast.Term, error) {
	if strings.HasPrefix(raw, "[") {
		return parseBbox("", raw)
	}
	if strings.HasPrefix(raw, "\"") {
		return queryast.StringTerm{Value: strings.Trim(raw, "\"")}, nil
	}

	if op, key, val, ok := splitKeyOp(raw); ok {
		if strings.HasPrefix(val, "[") {
			return parseBbox(key, val)
		}
		return queryast.KeyValueTerm{Key: key, Value: val, Op: op}, nil
	}
	return queryast.StringTerm{Value: raw}, nil
}

// splitKeyOp splits `key<op>value` on the first occurrence of >=, <=, >, <
// or :, in that precedence order so `>=`/`<=` are not mistaken for `>`/`<`.
func splitKeyOp(raw string) (op queryast.Op, key, val string, ok bool) {
	type pat struct {
		sep string
		op  queryast.Op
	}
	for _, p := range []pat{{">=", queryast.GTE}, {"<=", queryast.LTE}, {">", queryast.GT}, {"<", queryast.LT}, {":", queryast.EQ}} {
		if i := strings.Index(raw, p.sep); i > 0 {
			return p.op, raw[:i], raw[i+len(p.sep):], true
		}
	}
	return 0, "", "", false
}

// parseBbox parses `[minX,minY,maxX,maxY]`, optionally with a `contains`
// key selecting ElementsContain over the default ElementsWithin.
func parseBbox(key, raw string) (queryast.Term, error) {
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	parts := strings.Split(inner, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox literal %q must have exactly 4 components", raw)
	}
	var nums [4]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bbox literal %q: %w", raw, err)
		}
		nums[i] = v
	}
	box := queryast.BBox{MinX: nums[0], MinY: nums[1], MaxX: nums[2], MaxY: nums[3]}
	if !box.Valid() {
		return nil, fmt.Errorf("bbox literal %q is inverted", raw)
	}
	mode := queryast.BboxWithin
	if strings.EqualFold(key, "contains") {
		mode = queryast.BboxContains
	}
	return queryast.BboxTerm{BBox: box, Mode: mode}, nil
}

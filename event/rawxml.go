package event

import "strings"

// ByteRange gives access to the exact bytes the underlying stream produced
// for an already-consumed range. XMLSource uses it to recover the literal
// element/attribute prefixes a producer wrote — encoding/xml resolves
// Name.Space to the namespace URI, which is exactly right for well-
// formedness checking but throws away the prefix text persisted chunk
// metadata (and the merger's reconstruction) need preserved verbatim.
type ByteRange interface {
	Substring(start, end int64) []byte
}

// RawBytes adapts an already fully-buffered byte slice (e.g. one chunk's
// bytes, re-decoded by the indexer framework) to ByteRange with 0-based
// offsets.
type RawBytes []byte

func (b RawBytes) Substring(start, end int64) []byte {
	return b[start:end]
}

type rawTag struct {
	prefix     string
	local      string
	namespaces map[string]string
	attrs      []Attr
}

// parseRawStartTag parses the literal bytes of a start tag, e.g.
// `<gml:name xmlns:gml="..." gml:id="x">` or a self-closing
// `<f id="1"/>`, recovering the exact prefixes the producer wrote.
func parseRawStartTag(raw []byte) rawTag {
	s := string(raw)
	s = strings.TrimPrefix(s, "<")
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimSuffix(s, "/")
	name, rest := splitQName(s)
	tag := rawTag{namespaces: map[string]string{}}
	tag.prefix, tag.local = splitPrefix(name)

	for _, raw := range scanAttrs(rest) {
		qname, val := raw.name, unescapeXML(raw.value)
		if qname == "xmlns" {
			tag.namespaces[""] = val
			continue
		}
		if p, ok := strings.CutPrefix(qname, "xmlns:"); ok {
			tag.namespaces[p] = val
			continue
		}
		prefix, local := splitPrefix(qname)
		tag.attrs = append(tag.attrs, Attr{Prefix: prefix, Local: local, Value: val})
	}
	return tag
}

// parseRawEndTag parses `</prefix:local>` and returns prefix, local.
func parseRawEndTag(raw []byte) (string, string) {
	s := string(raw)
	s = strings.TrimPrefix(s, "</")
	s = strings.TrimSuffix(s, ">")
	s = strings.TrimSpace(s)
	return splitPrefix(s)
}

func splitPrefix(qname string) (prefix, local string) {
	if i := strings.IndexByte(qname, ':'); i >= 0 {
		return qname[:i], qname[i+1:]
	}
	return "", qname
}

// splitQName splits off the element name from the remaining attribute text
// on the first run of whitespace.
func splitQName(s string) (name, rest string) {
	i := strings.IndexAny(s, " \t\r\n")
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

type rawAttr struct {
	name  string
	value string
}

// scanAttrs is a small hand-written scanner for `name="value"` /
// `name='value'` pairs separated by whitespace, tolerant of whitespace
// around '='.
func scanAttrs(s string) []rawAttr {
	var out []rawAttr
	i, n := 0, len(s)
	for i < n {
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n {
			break
		}
		start := i
		for i < n && s[i] != '=' && !isSpace(s[i]) {
			i++
		}
		name := s[start:i]
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n || s[i] != '=' {
			continue
		}
		i++ // '='
		for i < n && isSpace(s[i]) {
			i++
		}
		if i >= n || (s[i] != '"' && s[i] != '\'') {
			continue
		}
		quote := s[i]
		i++
		valStart := i
		for i < n && s[i] != quote {
			i++
		}
		value := s[valStart:i]
		if i < n {
			i++ // closing quote
		}
		if name != "" {
			out = append(out, rawAttr{name: name, value: value})
		}
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

func unescapeXML(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	replacer := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&apos;", "'",
		"&quot;", `"`,
	)
	return replacer.Replace(s)
}

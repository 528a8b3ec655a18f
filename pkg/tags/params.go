// Package tags finds bracketed commands in narrator prose and splits their
// parameter strings into key/value pairs.
package tags

import (
	"strings"
	"unicode"
)

// Param is one key/value pair from a tag body.
type Param struct {
	Key   string
	Value string
}

// Params keeps parameters in the order they were written.
type Params []Param

// Get returns the last value written for key. Keys compare
// case-insensitively.
func (p Params) Get(key string) (string, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if strings.EqualFold(p[i].Key, key) {
			return p[i].Value, true
		}
	}
	return "", false
}

// Map flattens the parameters. Later duplicates win.
func (p Params) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, kv := range p {
		m[kv.Key] = kv.Value
	}
	return m
}

// scanner tracks quoting and nesting while walking a tag body. A quote
// only opens or closes when it is not preceded by a backslash, and "\\"
// is an escaped backslash; brackets inside quotes do not count toward depth.
type scanner struct {
	quote rune
	depth int
	prev  rune
}

// step consumes r and reports whether r sits at the top level: outside
// quotes and at depth zero, after accounting for r itself.
func (s *scanner) step(r rune) bool {
	escaped := s.prev == '\\'
	s.prev = r
	if escaped && (r == '"' || r == '\'' || r == '\\') {
		// a backslash only escapes once
		s.prev = 0
		return false
	}
	switch {
	case s.quote != 0:
		if r == s.quote {
			s.quote = 0
		}
		return false
	case r == '"' || r == '\'':
		s.quote = r
		return false
	case r == '{' || r == '[':
		s.depth++
		return false
	case r == '}' || r == ']':
		s.depth--
		return false
	}
	return s.depth == 0
}

// ParseParams splits a tag body such as
//
//	name="A, B", quantity=2, meta={"a":[1,2]}
//
// into ordered pairs. It never fails: chunks without '=' are returned in
// dropped so the caller can log them, and everything else is kept.
func ParseParams(body string) (params Params, dropped []string) {
	var chunks []string
	var sc scanner
	start := 0
	for i, r := range body {
		if top := sc.step(r); top && r == ',' {
			chunks = append(chunks, body[start:i])
			start = i + 1
		}
	}
	chunks = append(chunks, body[start:])

	for _, chunk := range chunks {
		if strings.TrimSpace(chunk) == "" {
			continue
		}
		eq := strings.IndexByte(chunk, '=')
		if eq < 0 {
			dropped = append(dropped, strings.TrimSpace(chunk))
			continue
		}
		key := stripSpace(chunk[:eq])
		if key == "" {
			dropped = append(dropped, strings.TrimSpace(chunk))
			continue
		}
		params = append(params, Param{Key: key, Value: unquote(chunk[eq+1:])})
	}
	return params, dropped
}

// stripSpace removes all whitespace, so "sinh Luc" becomes "sinhLuc".
func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// unquote trims v, strips one pair of matching surrounding quotes and
// un-escapes \\, \" and \'.
func unquote(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 {
		first, last := v[0], v[len(v)-1]
		if (first == '"' || first == '\'') && first == last {
			v = v[1 : len(v)-1]
		}
	}
	if strings.Contains(v, `\`) {
		v = strings.NewReplacer(`\\`, `\`, `\"`, `"`, `\'`, `'`).Replace(v)
	}
	return v
}

// FormatParams renders params back into tag-body syntax. Every value is
// double quoted, so ParseParams(FormatParams(p)) returns p.
func FormatParams(p Params) string {
	parts := make([]string, 0, len(p))
	for _, kv := range p {
		parts = append(parts, kv.Key+`="`+escape(kv.Value)+`"`)
	}
	return strings.Join(parts, ", ")
}

func escape(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, `'`, `\'`).Replace(v)
}
